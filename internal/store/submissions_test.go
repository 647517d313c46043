package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/contestdb/internal/model"
)

func testSubmission(id int64) *model.Submission {
	return &model.Submission{
		ID:            id,
		EpochSecond:   1468670400 + id,
		ProblemID:     "abc001_a",
		ContestID:     ptr("abc001"),
		UserID:        ptr("tourist"),
		Language:      ptr("Go (1.22)"),
		Point:         ptr(100.0),
		Length:        ptr(int32(512)),
		Result:        ptr("AC"),
		ExecutionTime: ptr(int32(12)),
	}
}

func TestInsertSubmission_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertSubmission(ctx, testSubmission(1)))

	got, err := s.GetSubmission(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "abc001_a", got.ProblemID)
	require.NotNil(t, got.Result)
	assert.Equal(t, "AC", *got.Result)
	require.NotNil(t, got.ExecutionTime)
	assert.Equal(t, int32(12), *got.ExecutionTime)
}

func TestInsertSubmission_AppendOnly(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertSubmission(ctx, testSubmission(1)))

	// Re-inserting the same id with different data is a silent no-op;
	// the original row wins.
	dup := testSubmission(1)
	dup.Result = ptr("WA")
	dup.Point = ptr(0.0)
	require.NoError(t, s.InsertSubmission(ctx, dup))

	got, err := s.GetSubmission(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got.Result)
	assert.Equal(t, "AC", *got.Result)
	require.NotNil(t, got.Point)
	assert.Equal(t, 100.0, *got.Point)
}

func TestInsertSubmissions_Batch(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	batch := []model.Submission{*testSubmission(1), *testSubmission(2), *testSubmission(3)}
	require.NoError(t, s.InsertSubmissions(ctx, batch))

	for _, id := range []int64{1, 2, 3} {
		_, err := s.GetSubmission(ctx, id)
		assert.NoError(t, err, "submission %d", id)
	}
}

func TestInsertSubmission_NullableFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sub := &model.Submission{ID: 9, EpochSecond: 1468670400, ProblemID: "abc001_a"}
	require.NoError(t, s.InsertSubmission(ctx, sub))

	got, err := s.GetSubmission(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, got.ContestID)
	assert.Nil(t, got.UserID)
	assert.Nil(t, got.Language)
	assert.Nil(t, got.Point)
	assert.Nil(t, got.Result)
}

func TestGetSubmission_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.GetSubmission(context.Background(), 404)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListSubmissionsByUser(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a := testSubmission(1)
	b := testSubmission(2)
	c := testSubmission(3)
	c.UserID = ptr("rng_58")
	require.NoError(t, s.InsertSubmissions(ctx, []model.Submission{*a, *b, *c}))

	subs, err := s.ListSubmissionsByUser(ctx, "tourist", 0)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, int64(2), subs[0].ID, "newest first")
	assert.Equal(t, int64(1), subs[1].ID)
}

func TestListSubmissionsByProblem_Limit(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for id := int64(1); id <= 5; id++ {
		require.NoError(t, s.InsertSubmission(ctx, testSubmission(id)))
	}

	subs, err := s.ListSubmissionsByProblem(ctx, "abc001_a", 3)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, int64(5), subs[0].ID)
}

func TestListSubmissionsByContest(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a := testSubmission(1)
	b := testSubmission(2)
	b.ContestID = ptr("abc002")
	require.NoError(t, s.InsertSubmissions(ctx, []model.Submission{*a, *b}))

	subs, err := s.ListSubmissionsByContest(ctx, "abc001", 0)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, int64(1), subs[0].ID)
}

func TestListSubmissionsSince(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for id := int64(1); id <= 4; id++ {
		require.NoError(t, s.InsertSubmission(ctx, testSubmission(id)))
	}

	// testSubmission(id) submits at epoch+id, so >= epoch+3 picks ids 3, 4.
	subs, err := s.ListSubmissionsSince(ctx, 1468670400+3, 0)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, int64(3), subs[0].ID, "oldest first for crawl resume")
	assert.Equal(t, int64(4), subs[1].ID)
}
