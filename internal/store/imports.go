package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/probelab/contestdb/internal/model"
)

// BeginImportRun records the start of an import-pipeline pass and returns
// its run. kind names the pass ("contests", "problems", "users", ...).
func (s *Store) BeginImportRun(ctx context.Context, kind string) (*model.ImportRun, error) {
	run := &model.ImportRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: utc(s.now()),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (id, kind, started_at, finished_at)
		VALUES (?, ?, ?, NULL)
	`, run.ID, run.Kind, run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("begin import run (%s): %w", kind, err)
	}
	return run, nil
}

// FinishImportRun marks a run as finished. Finishing an unknown or already
// finished run returns ErrNotFound.
func (s *Store) FinishImportRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE import_runs SET finished_at = ? WHERE id = ? AND finished_at IS NULL
	`, utc(s.now()), id)
	if err != nil {
		return fmt.Errorf("finish import run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish import run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("import run %s: %w", id, ErrNotFound)
	}
	return nil
}

// LastFinishedImportRun returns the most recently finished run of a kind,
// or ErrNotFound. The importer uses its started_at as the change-detection
// cursor for the next pass.
func (s *Store) LastFinishedImportRun(ctx context.Context, kind string) (*model.ImportRun, error) {
	var run model.ImportRun
	err := s.db.GetContext(ctx, &run, `
		SELECT id, kind, started_at, finished_at
		FROM import_runs
		WHERE kind = ? AND finished_at IS NOT NULL
		ORDER BY finished_at DESC, id ASC
		LIMIT 1
	`, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import run (%s): %w", kind, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("last finished import run (%s): %w", kind, err)
	}
	return &run, nil
}
