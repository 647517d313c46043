package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/probelab/contestdb/internal/model"
)

// PutProblem upserts a single problem. Inserting a problem whose contest
// does not exist fails with the driver's foreign-key violation and nothing
// persists.
func (s *Store) PutProblem(ctx context.Context, p *model.Problem) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return s.putProblemTx(ctx, tx, p)
	})
}

// PutProblems upserts a problem snapshot in one transaction.
func (s *Store) PutProblems(ctx context.Context, problems []model.Problem) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for i := range problems {
			if err := s.putProblemTx(ctx, tx, &problems[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Debug("problems saved", "count", len(problems))
	return nil
}

func (s *Store) putProblemTx(ctx context.Context, tx *sqlx.Tx, p *model.Problem) error {
	var prev rowTimes
	err := tx.GetContext(ctx, &prev,
		`SELECT created_at, updated_at FROM problems WHERE problem_id = ?`, p.ProblemID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created, updated := s.insertTimes(p.UpdatedAt)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO problems
			(problem_id, contest_id, problem_index, name, title, url, html, difficulty, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ProblemID, p.ContestID, p.ProblemIndex, p.Name, p.Title, p.URL, p.HTML, p.Difficulty, created, updated)
		if err != nil {
			return fmt.Errorf("insert problem %q: %w", p.ProblemID, err)
		}
		p.CreatedAt, p.UpdatedAt = created, updated
	case err != nil:
		return fmt.Errorf("look up problem %q: %w", p.ProblemID, err)
	default:
		updated := utc(s.touch.Resolve(prev.UpdatedAt, updatedCandidate(p.UpdatedAt)))
		_, err := tx.ExecContext(ctx, `
			UPDATE problems
			SET contest_id = ?, problem_index = ?, name = ?, title = ?, url = ?, html = ?, difficulty = ?, updated_at = ?
			WHERE problem_id = ?
		`, p.ContestID, p.ProblemIndex, p.Name, p.Title, p.URL, p.HTML, p.Difficulty, updated, p.ProblemID)
		if err != nil {
			return fmt.Errorf("update problem %q: %w", p.ProblemID, err)
		}
		p.CreatedAt, p.UpdatedAt = prev.CreatedAt, updated
	}
	return nil
}

// GetProblem returns one problem by id, or ErrNotFound.
func (s *Store) GetProblem(ctx context.Context, problemID string) (*model.Problem, error) {
	var p model.Problem
	err := s.db.GetContext(ctx, &p, `
		SELECT problem_id, contest_id, problem_index, name, title, url, html, difficulty, created_at, updated_at
		FROM problems WHERE problem_id = ?
	`, problemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("problem %q: %w", problemID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get problem %q: %w", problemID, err)
	}
	return &p, nil
}

// ListProblems returns all problems ordered by id.
func (s *Store) ListProblems(ctx context.Context) ([]model.Problem, error) {
	var problems []model.Problem
	err := s.db.SelectContext(ctx, &problems, `
		SELECT problem_id, contest_id, problem_index, name, title, url, html, difficulty, created_at, updated_at
		FROM problems
		ORDER BY problem_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	if problems == nil {
		problems = []model.Problem{}
	}
	return problems, nil
}

// ListProblemsByContest returns a contest's problems ordered by index label.
func (s *Store) ListProblemsByContest(ctx context.Context, contestID string) ([]model.Problem, error) {
	var problems []model.Problem
	err := s.db.SelectContext(ctx, &problems, `
		SELECT problem_id, contest_id, problem_index, name, title, url, html, difficulty, created_at, updated_at
		FROM problems
		WHERE contest_id = ?
		ORDER BY problem_index ASC, problem_id ASC
	`, contestID)
	if err != nil {
		return nil, fmt.Errorf("list problems of contest %q: %w", contestID, err)
	}
	if problems == nil {
		problems = []model.Problem{}
	}
	return problems, nil
}

// ProblemsUpdatedSince returns problems whose updated_at is strictly after
// the cursor, oldest change first.
func (s *Store) ProblemsUpdatedSince(ctx context.Context, cursor time.Time) ([]model.Problem, error) {
	var problems []model.Problem
	err := s.db.SelectContext(ctx, &problems, `
		SELECT problem_id, contest_id, problem_index, name, title, url, html, difficulty, created_at, updated_at
		FROM problems
		WHERE updated_at > ?
		ORDER BY updated_at ASC, problem_id ASC
	`, utc(cursor))
	if err != nil {
		return nil, fmt.Errorf("problems updated since %s: %w", cursor, err)
	}
	if problems == nil {
		problems = []model.Problem{}
	}
	return problems, nil
}
