// Package touch implements conditional last-modified tracking for the
// entity tables that carry an updated_at column.
//
// The import pipeline re-upserts full snapshots on every run, so stamping
// updated_at on every write would make every row look freshly changed and
// break incremental re-indexing. The pipeline here guarantees that
// updated_at moves only when a write is semantically meaningful:
//
//   - a candidate equal to the stored value keeps the stored value
//     (idempotent re-import, no bump)
//   - an omitted candidate is stamped with the current clock
//   - a distinct explicit candidate passes through unchanged
//
// Resolution runs as an ordered chain of stages (pre-check, propagate,
// finalize) over a single mutable state. The ordering is part of the
// contract: pre-check may demote an echoed value to the unset sentinel,
// propagate may veto the demotion, and finalize stamps whatever is still
// unset. Callers run Resolve inside the same transaction as the UPDATE so
// the previous value is the committed row image, never a stale snapshot.
package touch

import "time"

// Candidate is the updated_at value carried by an incoming UPDATE.
//
// Set reports whether the statement assigns the column at all. A zero Time
// with Set=true means the caller explicitly assigned the unset sentinel;
// Set=false means the column is absent from the statement.
type Candidate struct {
	Time time.Time
	Set  bool
}

// state is the per-resolution row image threaded through the stages.
type state struct {
	prev    time.Time // committed updated_at of the row
	value   time.Time
	present bool // value holds a real timestamp, not the unset sentinel
	inSet   bool // the statement assigns the updated_at column
}

type stage func(p *Pipeline, st *state)

// Pipeline resolves the final updated_at for a row UPDATE. It is stateless
// across calls and safe for concurrent use.
type Pipeline struct {
	now    func() time.Time
	stages []stage
}

// New returns a pipeline stamping with now. A nil now uses time.Now.
func New(now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		now:    now,
		stages: []stage{preCheck, propagate, finalize},
	}
}

// Resolve runs the stage chain and returns the updated_at value the row
// must be written with. prev is the currently stored value.
func (p *Pipeline) Resolve(prev time.Time, cand Candidate) time.Time {
	st := &state{
		prev:    prev,
		value:   cand.Time,
		present: cand.Set && !cand.Time.IsZero(),
		inSet:   cand.Set,
	}
	for _, s := range p.stages {
		s(p, st)
	}
	return st.value
}

// preCheck demotes a candidate that merely echoes the stored value to the
// unset sentinel. This distinguishes "caller did not request a change" from
// "caller wants a new explicit value".
func preCheck(_ *Pipeline, st *state) {
	if st.inSet && st.present && st.value.Equal(st.prev) {
		st.present = false
	}
}

// propagate fires only when the statement assigns the column: a sentinel at
// this point means the caller echoed the old value, so the change is vetoed
// by restoring it.
func propagate(_ *Pipeline, st *state) {
	if st.inSet && !st.present {
		st.value = st.prev
		st.present = true
	}
}

// finalize stamps the clock on anything still unset, i.e. the column was
// absent from the statement and no earlier stage produced a value.
func finalize(p *Pipeline, st *state) {
	if !st.present {
		st.value = p.now()
		st.present = true
	}
}
