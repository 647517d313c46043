// Package model defines the persisted entities of the contest search
// storage layer.
//
// Contest, Problem, User and Difficulty carry created_at/updated_at
// timestamps maintained by the store's conditional-touch pipeline.
// Submission is an append-only fact log and carries no timestamps.
package model

import "time"

// Contest is a programming contest. A contest owns zero or more problems;
// deleting a contest cascades to its problems.
type Contest struct {
	ContestID        string    `db:"contest_id"`
	StartEpochSecond int64     `db:"start_epoch_second"`
	DurationSecond   int64     `db:"duration_second"`
	Title            string    `db:"title"`
	RateChange       string    `db:"rate_change"`
	Category         string    `db:"category"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// Problem is a single task in a contest.
//
// Difficulty is a denormalized snapshot of the estimated difficulty; the
// richer per-problem IRT parameters live in Difficulty. The two are allowed
// to drift between imports.
type Problem struct {
	ProblemID    string    `db:"problem_id"`
	ContestID    string    `db:"contest_id"`
	ProblemIndex string    `db:"problem_index"`
	Name         string    `db:"name"`
	Title        string    `db:"title"`
	URL          string    `db:"url"`
	HTML         string    `db:"html"`
	Difficulty   *int32    `db:"difficulty"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Difficulty holds the fitted IRT model parameters for one problem (1:1 by
// problem_id). The numeric fields are opaque to this layer.
type Difficulty struct {
	ProblemID        string    `db:"problem_id"`
	Slope            *float64  `db:"slope"`
	Intercept        *float64  `db:"intercept"`
	Variance         *float64  `db:"variance"`
	Difficulty       *int32    `db:"difficulty"`
	Discrimination   *float64  `db:"discrimination"`
	IRTLoglikelihood *float64  `db:"irt_loglikelihood"`
	IRTUsers         *float64  `db:"irt_users"`
	IsExperimental   *bool     `db:"is_experimental"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// User is a contest participant, keyed by user name. Submissions reference
// users by name without an enforced foreign key.
type User struct {
	UserName      string    `db:"user_name"`
	Rating        int32     `db:"rating"`
	HighestRating int32     `db:"highest_rating"`
	Affiliation   *string   `db:"affiliation"`
	BirthYear     *int32    `db:"birth_year"`
	Country       *string   `db:"country"`
	Crown         *string   `db:"crown"`
	JoinCount     int32     `db:"join_count"`
	Rank          int32     `db:"rank"`
	Wins          int32     `db:"wins"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Submission is one judged submission. Rows are inserted once and never
// updated; re-inserting an existing id is a no-op.
type Submission struct {
	ID            int64    `db:"id"`
	EpochSecond   int64    `db:"epoch_second"`
	ProblemID     string   `db:"problem_id"`
	ContestID     *string  `db:"contest_id"`
	UserID        *string  `db:"user_id"`
	Language      *string  `db:"language"`
	Point         *float64 `db:"point"`
	Length        *int32   `db:"length"`
	Result        *string  `db:"result"`
	ExecutionTime *int32   `db:"execution_time"`
}

// Record is the denormalized problem/contest/difficulty join read by the
// indexer to build search documents.
type Record struct {
	ProblemID      string  `db:"problem_id"`
	ProblemTitle   string  `db:"problem_title"`
	ProblemURL     string  `db:"problem_url"`
	ContestID      string  `db:"contest_id"`
	ContestTitle   string  `db:"contest_title"`
	Difficulty     *int32  `db:"difficulty"`
	StartAt        int64   `db:"start_at"`
	Duration       int64   `db:"duration"`
	RateChange     string  `db:"rate_change"`
	Category       string  `db:"category"`
	HTML           string  `db:"html"`
	IsExperimental *bool   `db:"is_experimental"`
}

// ImportRun records one pass of the external import pipeline. FinishedAt is
// nil while the run is still in flight.
type ImportRun struct {
	ID         string     `db:"id"`
	Kind       string     `db:"kind"`
	StartedAt  time.Time  `db:"started_at"`
	FinishedAt *time.Time `db:"finished_at"`
}
