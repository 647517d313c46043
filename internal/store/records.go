package store

import (
	"context"
	"fmt"
	"time"

	"github.com/probelab/contestdb/internal/model"
)

// ListRecords returns the denormalized problem/contest/difficulty rows the
// indexer turns into search documents. A zero cursor returns everything;
// otherwise only rows whose problem, contest or difficulty changed after
// the cursor are returned, so a pass over the result re-indexes exactly
// what moved.
//
// The difficulty join is LEFT: problems without a fitted IRT model still
// produce a record, and problems.difficulty stays the authoritative
// denormalized snapshot either way.
func (s *Store) ListRecords(ctx context.Context, cursor time.Time) ([]model.Record, error) {
	query := `
		SELECT
			p.problem_id,
			p.title AS problem_title,
			p.url AS problem_url,
			c.contest_id,
			c.title AS contest_title,
			p.difficulty,
			c.start_epoch_second AS start_at,
			c.duration_second AS duration,
			c.rate_change,
			c.category,
			p.html,
			d.is_experimental
		FROM problems p
		JOIN contests c ON p.contest_id = c.contest_id
		LEFT JOIN difficulties d ON p.problem_id = d.problem_id
	`

	var (
		records []model.Record
		err     error
	)
	if cursor.IsZero() {
		err = s.db.SelectContext(ctx, &records, query+` ORDER BY p.problem_id ASC`)
	} else {
		t := utc(cursor)
		err = s.db.SelectContext(ctx, &records,
			query+` WHERE p.updated_at > ? OR c.updated_at > ? OR d.updated_at > ? ORDER BY p.problem_id ASC`, t, t, t)
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}
