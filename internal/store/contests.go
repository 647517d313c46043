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

// PutContest upserts a single contest. On the update path the touch
// pipeline decides the final updated_at inside the same transaction;
// created_at is never rewritten. The entity's timestamp fields are filled
// in with the stored values on return.
func (s *Store) PutContest(ctx context.Context, c *model.Contest) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return s.putContestTx(ctx, tx, c)
	})
}

// PutContests upserts a full contest snapshot in one transaction, the unit
// the import pipeline works in. Any failure rolls back the whole batch.
func (s *Store) PutContests(ctx context.Context, contests []model.Contest) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for i := range contests {
			if err := s.putContestTx(ctx, tx, &contests[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Debug("contests saved", "count", len(contests))
	return nil
}

func (s *Store) putContestTx(ctx context.Context, tx *sqlx.Tx, c *model.Contest) error {
	var prev rowTimes
	err := tx.GetContext(ctx, &prev,
		`SELECT created_at, updated_at FROM contests WHERE contest_id = ?`, c.ContestID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created, updated := s.insertTimes(c.UpdatedAt)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contests
			(contest_id, start_epoch_second, duration_second, title, rate_change, category, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ContestID, c.StartEpochSecond, c.DurationSecond, c.Title, c.RateChange, c.Category, created, updated)
		if err != nil {
			return fmt.Errorf("insert contest %q: %w", c.ContestID, err)
		}
		c.CreatedAt, c.UpdatedAt = created, updated
	case err != nil:
		return fmt.Errorf("look up contest %q: %w", c.ContestID, err)
	default:
		updated := utc(s.touch.Resolve(prev.UpdatedAt, updatedCandidate(c.UpdatedAt)))
		_, err := tx.ExecContext(ctx, `
			UPDATE contests
			SET start_epoch_second = ?, duration_second = ?, title = ?, rate_change = ?, category = ?, updated_at = ?
			WHERE contest_id = ?
		`, c.StartEpochSecond, c.DurationSecond, c.Title, c.RateChange, c.Category, updated, c.ContestID)
		if err != nil {
			return fmt.Errorf("update contest %q: %w", c.ContestID, err)
		}
		c.CreatedAt, c.UpdatedAt = prev.CreatedAt, updated
	}
	return nil
}

// GetContest returns one contest by id, or ErrNotFound.
func (s *Store) GetContest(ctx context.Context, contestID string) (*model.Contest, error) {
	var c model.Contest
	err := s.db.GetContext(ctx, &c, `
		SELECT contest_id, start_epoch_second, duration_second, title, rate_change, category, created_at, updated_at
		FROM contests WHERE contest_id = ?
	`, contestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contest %q: %w", contestID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contest %q: %w", contestID, err)
	}
	return &c, nil
}

// ListContests returns all contests ordered by start time, newest first.
func (s *Store) ListContests(ctx context.Context) ([]model.Contest, error) {
	var contests []model.Contest
	err := s.db.SelectContext(ctx, &contests, `
		SELECT contest_id, start_epoch_second, duration_second, title, rate_change, category, created_at, updated_at
		FROM contests
		ORDER BY start_epoch_second DESC, contest_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}
	if contests == nil {
		contests = []model.Contest{}
	}
	return contests, nil
}

// DeleteContest removes a contest; the foreign key cascade removes its
// problems in the same statement. Deleting an unknown id is a no-op.
func (s *Store) DeleteContest(ctx context.Context, contestID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM contests WHERE contest_id = ?`, contestID)
	if err != nil {
		return fmt.Errorf("delete contest %q: %w", contestID, err)
	}
	return nil
}

// ContestsUpdatedSince returns contests whose updated_at is strictly after
// the cursor, oldest change first. The indexer feeds its last pass time
// here to pick up exactly the rows that changed.
func (s *Store) ContestsUpdatedSince(ctx context.Context, cursor time.Time) ([]model.Contest, error) {
	var contests []model.Contest
	err := s.db.SelectContext(ctx, &contests, `
		SELECT contest_id, start_epoch_second, duration_second, title, rate_change, category, created_at, updated_at
		FROM contests
		WHERE updated_at > ?
		ORDER BY updated_at ASC, contest_id ASC
	`, utc(cursor))
	if err != nil {
		return nil, fmt.Errorf("contests updated since %s: %w", cursor, err)
	}
	if contests == nil {
		contests = []model.Contest{}
	}
	return contests, nil
}

// inTx runs fn in a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
