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

// PutDifficulty upserts the IRT parameters for one problem. The table is
// keyed by problem_id (1:1 with problems) but carries no enforced foreign
// key: difficulty estimates may arrive before their problem's statement.
func (s *Store) PutDifficulty(ctx context.Context, d *model.Difficulty) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return s.putDifficultyTx(ctx, tx, d)
	})
}

// PutDifficulties upserts a difficulty snapshot in one transaction.
func (s *Store) PutDifficulties(ctx context.Context, difficulties []model.Difficulty) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for i := range difficulties {
			if err := s.putDifficultyTx(ctx, tx, &difficulties[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Debug("difficulties saved", "count", len(difficulties))
	return nil
}

func (s *Store) putDifficultyTx(ctx context.Context, tx *sqlx.Tx, d *model.Difficulty) error {
	var prev rowTimes
	err := tx.GetContext(ctx, &prev,
		`SELECT created_at, updated_at FROM difficulties WHERE problem_id = ?`, d.ProblemID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created, updated := s.insertTimes(d.UpdatedAt)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO difficulties
			(problem_id, slope, intercept, variance, difficulty, discrimination, irt_loglikelihood, irt_users, is_experimental, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, d.ProblemID, d.Slope, d.Intercept, d.Variance, d.Difficulty, d.Discrimination,
			d.IRTLoglikelihood, d.IRTUsers, d.IsExperimental, created, updated)
		if err != nil {
			return fmt.Errorf("insert difficulty %q: %w", d.ProblemID, err)
		}
		d.CreatedAt, d.UpdatedAt = created, updated
	case err != nil:
		return fmt.Errorf("look up difficulty %q: %w", d.ProblemID, err)
	default:
		updated := utc(s.touch.Resolve(prev.UpdatedAt, updatedCandidate(d.UpdatedAt)))
		_, err := tx.ExecContext(ctx, `
			UPDATE difficulties
			SET slope = ?, intercept = ?, variance = ?, difficulty = ?, discrimination = ?,
			    irt_loglikelihood = ?, irt_users = ?, is_experimental = ?, updated_at = ?
			WHERE problem_id = ?
		`, d.Slope, d.Intercept, d.Variance, d.Difficulty, d.Discrimination,
			d.IRTLoglikelihood, d.IRTUsers, d.IsExperimental, updated, d.ProblemID)
		if err != nil {
			return fmt.Errorf("update difficulty %q: %w", d.ProblemID, err)
		}
		d.CreatedAt, d.UpdatedAt = prev.CreatedAt, updated
	}
	return nil
}

// GetDifficulty returns the IRT parameters for one problem, or ErrNotFound.
func (s *Store) GetDifficulty(ctx context.Context, problemID string) (*model.Difficulty, error) {
	var d model.Difficulty
	err := s.db.GetContext(ctx, &d, `
		SELECT problem_id, slope, intercept, variance, difficulty, discrimination, irt_loglikelihood, irt_users, is_experimental, created_at, updated_at
		FROM difficulties WHERE problem_id = ?
	`, problemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("difficulty %q: %w", problemID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get difficulty %q: %w", problemID, err)
	}
	return &d, nil
}

// ListDifficulties returns all difficulty rows ordered by problem id.
func (s *Store) ListDifficulties(ctx context.Context) ([]model.Difficulty, error) {
	var difficulties []model.Difficulty
	err := s.db.SelectContext(ctx, &difficulties, `
		SELECT problem_id, slope, intercept, variance, difficulty, discrimination, irt_loglikelihood, irt_users, is_experimental, created_at, updated_at
		FROM difficulties
		ORDER BY problem_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list difficulties: %w", err)
	}
	if difficulties == nil {
		difficulties = []model.Difficulty{}
	}
	return difficulties, nil
}

// DifficultiesUpdatedSince returns difficulties whose updated_at is
// strictly after the cursor, oldest change first.
func (s *Store) DifficultiesUpdatedSince(ctx context.Context, cursor time.Time) ([]model.Difficulty, error) {
	var difficulties []model.Difficulty
	err := s.db.SelectContext(ctx, &difficulties, `
		SELECT problem_id, slope, intercept, variance, difficulty, discrimination, irt_loglikelihood, irt_users, is_experimental, created_at, updated_at
		FROM difficulties
		WHERE updated_at > ?
		ORDER BY updated_at ASC, problem_id ASC
	`, utc(cursor))
	if err != nil {
		return nil, fmt.Errorf("difficulties updated since %s: %w", cursor, err)
	}
	if difficulties == nil {
		difficulties = []model.Difficulty{}
	}
	return difficulties, nil
}
