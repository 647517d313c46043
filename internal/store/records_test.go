package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRecords_JoinsContestAndDifficulty(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutContest(ctx, testContest("abc001")))
	require.NoError(t, s.PutProblem(ctx, testProblem("abc001_a", "abc001")))
	require.NoError(t, s.PutDifficulty(ctx, testDifficulty("abc001_a")))

	records, err := s.ListRecords(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "abc001_a", r.ProblemID)
	assert.Equal(t, "A. Product", r.ProblemTitle)
	assert.Equal(t, "abc001", r.ContestID)
	assert.Equal(t, "Contest abc001", r.ContestTitle)
	assert.Equal(t, int64(1468670400), r.StartAt)
	assert.Equal(t, int64(6000), r.Duration)
	assert.Equal(t, "ABC", r.Category)
	require.NotNil(t, r.Difficulty)
	assert.Equal(t, int32(800), *r.Difficulty)
	require.NotNil(t, r.IsExperimental)
	assert.False(t, *r.IsExperimental)
}

func TestListRecords_MissingDifficultyStillListed(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutContest(ctx, testContest("abc001")))
	p := testProblem("abc001_a", "abc001")
	p.Difficulty = nil
	require.NoError(t, s.PutProblem(ctx, p))

	records, err := s.ListRecords(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Difficulty)
	assert.Nil(t, records[0].IsExperimental)
}

func TestListRecords_CursorFiltersUnchanged(t *testing.T) {
	s, clk := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutContest(ctx, testContest("abc001")))
	require.NoError(t, s.PutProblem(ctx, testProblem("abc001_a", "abc001")))
	require.NoError(t, s.PutProblem(ctx, testProblem("abc001_b", "abc001")))
	t0 := clk.Now()

	clk.Advance(time.Hour)
	update := testProblem("abc001_b", "abc001")
	update.Title = "B. Placing Marbles"
	require.NoError(t, s.PutProblem(ctx, update))

	records, err := s.ListRecords(ctx, t0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "abc001_b", records[0].ProblemID)
}

func TestListRecords_DifficultyChangeReindexesItsProblem(t *testing.T) {
	s, clk := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutContest(ctx, testContest("abc001")))
	require.NoError(t, s.PutProblem(ctx, testProblem("abc001_a", "abc001")))
	require.NoError(t, s.PutProblem(ctx, testProblem("abc001_b", "abc001")))
	require.NoError(t, s.PutDifficulty(ctx, testDifficulty("abc001_a")))
	t0 := clk.Now()

	// Only the fitted model moves; the record exposes is_experimental, so
	// the problem must be re-listed.
	clk.Advance(time.Hour)
	refit := testDifficulty("abc001_a")
	refit.IsExperimental = ptr(true)
	require.NoError(t, s.PutDifficulty(ctx, refit))

	records, err := s.ListRecords(ctx, t0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "abc001_a", records[0].ProblemID)
	require.NotNil(t, records[0].IsExperimental)
	assert.True(t, *records[0].IsExperimental)
}

func TestListRecords_ContestChangeReindexesItsProblems(t *testing.T) {
	s, clk := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutContest(ctx, testContest("abc001")))
	require.NoError(t, s.PutContest(ctx, testContest("abc002")))
	require.NoError(t, s.PutProblem(ctx, testProblem("abc001_a", "abc001")))
	require.NoError(t, s.PutProblem(ctx, testProblem("abc002_a", "abc002")))
	t0 := clk.Now()

	// Touch only the contest; its problems must be re-listed so the index
	// picks up the new contest metadata.
	clk.Advance(time.Hour)
	update := testContest("abc001")
	update.Title = "AtCoder Beginner Contest 001"
	require.NoError(t, s.PutContest(ctx, update))

	records, err := s.ListRecords(ctx, t0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "abc001_a", records[0].ProblemID)
	assert.Equal(t, "AtCoder Beginner Contest 001", records[0].ContestTitle)
}

func TestListRecords_IdleCursorEmpty(t *testing.T) {
	s, clk := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutContest(ctx, testContest("abc001")))
	require.NoError(t, s.PutProblem(ctx, testProblem("abc001_a", "abc001")))

	records, err := s.ListRecords(ctx, clk.Now())
	require.NoError(t, err)
	assert.Empty(t, records)
}
