package store

import (
	"time"

	"github.com/probelab/contestdb/internal/touch"
)

// rowTimes is the timestamp pair of a tracked row, read inside the upsert
// transaction so the touch pipeline sees the committed row image.
type rowTimes struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// updatedCandidate maps an entity's UpdatedAt field onto the pipeline's
// explicit presence marker: the zero time means the caller omitted the
// column from the write.
func updatedCandidate(t time.Time) touch.Candidate {
	if t.IsZero() {
		return touch.Candidate{}
	}
	return touch.Candidate{Time: utc(t), Set: true}
}

// insertTimes picks the initial created_at/updated_at for a first insert.
// created_at is always the current clock; updated_at honors an explicit
// caller value so imported snapshots keep their original stamps.
func (s *Store) insertTimes(updatedAt time.Time) (created, updated time.Time) {
	now := utc(s.now())
	if updatedAt.IsZero() {
		return now, now
	}
	return now, utc(updatedAt)
}
