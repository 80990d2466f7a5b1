package score_test

import (
	"testing"
	"time"

	"github.com/rapidmidiex/rmxchords/score"
	"github.com/stretchr/testify/require"
)

func TestCalc(t *testing.T) {
	prevAnswers := []time.Duration{
		time.Millisecond * 1900,
		time.Millisecond * 10000,
		time.Millisecond * 1290,
		time.Millisecond * 3400,
		time.Millisecond * 3600,
		time.Millisecond * 4900,
		time.Millisecond * 2341,
	}

	gotCmd := score.CalcStats(time.Millisecond*3000, prevAnswers)
	want := score.CalcMsg{
		Min:    time.Millisecond * 1290,
		Max:    time.Millisecond * 10000,
		Avg:    time.Millisecond * 3919, // 3918.714285... rounded to nearest ms
		Latest: time.Millisecond * 3000,
	}
	require.Equal(t, want, gotCmd())
}

func TestEmptyStats(t *testing.T) {
	require.Equal(t, score.CalcMsg{Latest: time.Second}, score.CalcStats(time.Second, nil)())
	require.Zero(t, score.Min([]int{}))
	require.Equal(t, 3, score.Avg([]int{2, 4}))
}

func TestTally(t *testing.T) {
	var tally score.Tally
	require.Zero(t, tally.Accuracy())

	for _, correct := range []bool{true, true, false, true, true, true} {
		tally.Record(correct)
	}

	require.Equal(t, score.Tally{Answered: 6, Correct: 5, Streak: 3, BestStreak: 3}, tally)
	require.InDelta(t, 5.0/6.0, tally.Accuracy(), 1e-9)
	require.Equal(t, "5/6 (83%)", tally.String())
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "2 s 500 ms", score.FormatDuration(2500*time.Millisecond))
	require.Equal(t, "1 m 5 s", score.FormatDuration(65*time.Second+300*time.Millisecond))
	require.Equal(t, "-", score.FormatDuration(0))
}
