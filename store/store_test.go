package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/store"
	"github.com/stretchr/testify/require"
)

var (
	aMinor1 = chord.Key{Root: pitch.A, Quality: chord.Minor, Inversion: 1}
	aMinor0 = chord.Key{Root: pitch.A, Quality: chord.Minor}
	g7      = chord.Key{Root: pitch.G, Quality: chord.DominantSeventh, Inversion: 3}
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func answer(expected, given chord.Key, elapsed time.Duration) quiz.Feedback {
	return quiz.Feedback{
		Correct:       expected == given,
		Answer:        given,
		Expected:      expected,
		PitchSetMatch: expected != given && expected.Root == given.Root && expected.Quality == given.Quality,
		Elapsed:       elapsed,
	}
}

func TestRecordAndReadBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	session := uuid.New()
	start := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)

	first, err := s.RecordAnswer(ctx, session, answer(aMinor1, aMinor0, 3*time.Second), start)
	require.NoError(t, err)
	_, err = s.RecordAnswer(ctx, session, answer(g7, g7, 1500*time.Millisecond), start.Add(time.Minute))
	require.NoError(t, err)

	recent, err := s.RecentAnswers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	require.Equal(t, g7, recent[0].Expected)
	require.True(t, recent[0].Correct)
	require.Equal(t, 1500*time.Millisecond, recent[0].Elapsed)

	got := recent[1]
	require.Equal(t, first.ID, got.ID)
	require.Equal(t, session, got.SessionID)
	require.Equal(t, aMinor1, got.Expected)
	require.Equal(t, aMinor0, got.Answer)
	require.False(t, got.Correct)
	require.True(t, got.PitchSetMatch)
	require.WithinDuration(t, start, got.AnsweredAt, time.Millisecond)

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	require.Equal(t, store.Totals{Answered: 2, Correct: 1, Sessions: 1}, totals)
}

func TestWeakestChords(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	session := uuid.New()
	at := time.Unix(1700000000, 0)

	record := func(expected, given chord.Key, elapsed time.Duration) {
		t.Helper()
		at = at.Add(time.Second)
		_, err := s.RecordAnswer(ctx, session, answer(expected, given, elapsed), at)
		require.NoError(t, err)
	}

	// A minor 1st inversion: 1 of 3.
	record(aMinor1, aMinor0, 4*time.Second)
	record(aMinor1, aMinor0, 2*time.Second)
	record(aMinor1, aMinor1, 3*time.Second)
	// G7 3rd inversion: 2 of 2.
	record(g7, g7, time.Second)
	record(g7, g7, time.Second)
	// A minor root: 0 of 1, below the attempt threshold.
	record(aMinor0, aMinor1, time.Second)

	weakest, err := s.WeakestChords(ctx, 5, 2)
	require.NoError(t, err)
	require.Len(t, weakest, 2)

	require.Equal(t, aMinor1, weakest[0].Key)
	require.Equal(t, 3, weakest[0].Attempts)
	require.Equal(t, 1, weakest[0].Correct)
	require.InDelta(t, 1.0/3.0, weakest[0].Accuracy(), 1e-9)
	require.Equal(t, 3*time.Second, weakest[0].AvgElapsed)

	require.Equal(t, g7, weakest[1].Key)
	require.Equal(t, 1.0, weakest[1].Accuracy())

	limited, err := s.WeakestChords(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, aMinor0, limited[0].Key)
}

func TestEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	require.Zero(t, totals)

	weakest, err := s.WeakestChords(ctx, 5, 1)
	require.NoError(t, err)
	require.Empty(t, weakest)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.sqlite")
	s, err := store.Open(path)
	require.NoError(t, err)
	_, err = s.RecordAnswer(context.Background(), uuid.New(), answer(g7, g7, time.Second), time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := store.Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	totals, err := reopened.Totals(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, totals.Answered)
}
