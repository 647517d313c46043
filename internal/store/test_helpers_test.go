package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/probelab/contestdb/internal/model"
	"github.com/probelab/contestdb/internal/testutil"
)

// testEpoch is the frozen start time of every test clock.
var testEpoch = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// newTestStore opens a fresh store in a temp dir with a manual clock so
// timestamp assertions are exact.
func newTestStore(t *testing.T) (*Store, *testutil.ManualClock) {
	t.Helper()

	clk := testutil.NewManualClock(testEpoch)
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(clk.Now))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, clk
}

func testContest(id string) *model.Contest {
	return &model.Contest{
		ContestID:        id,
		StartEpochSecond: 1468670400,
		DurationSecond:   6000,
		Title:            "Contest " + id,
		RateChange:       " ~ 1199",
		Category:         "ABC",
	}
}

func testProblem(id, contestID string) *model.Problem {
	diff := int32(800)
	return &model.Problem{
		ProblemID:    id,
		ContestID:    contestID,
		ProblemIndex: "A",
		Name:         "Product",
		Title:        "A. Product",
		URL:          "https://example.com/contests/" + contestID + "/tasks/" + id,
		HTML:         "<p>statement</p>",
		Difficulty:   &diff,
	}
}

func testUser(name string) *model.User {
	return &model.User{
		UserName:      name,
		Rating:        2400,
		HighestRating: 2450,
		JoinCount:     120,
		Rank:          512,
		Wins:          3,
	}
}

func ptr[T any](v T) *T { return &v }
