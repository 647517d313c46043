package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/probelab/contestdb/internal/model"
)

// InsertSubmission appends one submission to the fact log.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - re-inserting an id that
// already exists is silently ignored and the stored row is untouched.
// Submissions carry no updated_at and are never updated by this layer.
func (s *Store) InsertSubmission(ctx context.Context, sub *model.Submission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions
		(id, epoch_second, problem_id, contest_id, user_id, language, point, length, result, execution_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sub.ID, sub.EpochSecond, sub.ProblemID, sub.ContestID, sub.UserID,
		sub.Language, sub.Point, sub.Length, sub.Result, sub.ExecutionTime)
	if err != nil {
		return fmt.Errorf("insert submission %d: %w", sub.ID, err)
	}
	return nil
}

// InsertSubmissions appends a batch of submissions in one transaction.
func (s *Store) InsertSubmissions(ctx context.Context, subs []model.Submission) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for i := range subs {
			sub := &subs[i]
			_, err := tx.ExecContext(ctx, `
				INSERT INTO submissions
				(id, epoch_second, problem_id, contest_id, user_id, language, point, length, result, execution_time)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO NOTHING
			`, sub.ID, sub.EpochSecond, sub.ProblemID, sub.ContestID, sub.UserID,
				sub.Language, sub.Point, sub.Length, sub.Result, sub.ExecutionTime)
			if err != nil {
				return fmt.Errorf("insert submission %d: %w", sub.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Debug("submissions saved", "count", len(subs))
	return nil
}

// GetSubmission returns one submission by id, or ErrNotFound.
func (s *Store) GetSubmission(ctx context.Context, id int64) (*model.Submission, error) {
	var sub model.Submission
	err := s.db.GetContext(ctx, &sub, `
		SELECT id, epoch_second, problem_id, contest_id, user_id, language, point, length, result, execution_time
		FROM submissions WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get submission %d: %w", id, err)
	}
	return &sub, nil
}

// ListSubmissionsByUser returns a user's submissions, newest first.
// limit <= 0 means a default page of 100.
func (s *Store) ListSubmissionsByUser(ctx context.Context, userID string, limit int) ([]model.Submission, error) {
	return s.listSubmissions(ctx, "user_id = ?", userID, limit)
}

// ListSubmissionsByProblem returns a problem's submissions, newest first.
func (s *Store) ListSubmissionsByProblem(ctx context.Context, problemID string, limit int) ([]model.Submission, error) {
	return s.listSubmissions(ctx, "problem_id = ?", problemID, limit)
}

// ListSubmissionsByContest returns a contest's submissions, newest first.
func (s *Store) ListSubmissionsByContest(ctx context.Context, contestID string, limit int) ([]model.Submission, error) {
	return s.listSubmissions(ctx, "contest_id = ?", contestID, limit)
}

// ListSubmissionsSince returns submissions at or after the given epoch
// second, oldest first. The epoch_second index serves the crawler's resume
// point.
func (s *Store) ListSubmissionsSince(ctx context.Context, epochSecond int64, limit int) ([]model.Submission, error) {
	if limit <= 0 {
		limit = 100
	}
	var subs []model.Submission
	err := s.db.SelectContext(ctx, &subs, `
		SELECT id, epoch_second, problem_id, contest_id, user_id, language, point, length, result, execution_time
		FROM submissions
		WHERE epoch_second >= ?
		ORDER BY epoch_second ASC, id ASC
		LIMIT ?
	`, epochSecond, limit)
	if err != nil {
		return nil, fmt.Errorf("submissions since %d: %w", epochSecond, err)
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	return subs, nil
}

func (s *Store) listSubmissions(ctx context.Context, where string, arg any, limit int) ([]model.Submission, error) {
	if limit <= 0 {
		limit = 100
	}
	var subs []model.Submission
	err := s.db.SelectContext(ctx, &subs, `
		SELECT id, epoch_second, problem_id, contest_id, user_id, language, point, length, result, execution_time
		FROM submissions
		WHERE `+where+`
		ORDER BY epoch_second DESC, id DESC
		LIMIT ?
	`, arg, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions (%s): %w", where, err)
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	return subs, nil
}
