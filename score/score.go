// Package score keeps the running tally of a quiz and statistics on answer times.
package score

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hako/durafmt"
	"golang.org/x/exp/constraints"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

type (
	// Tally counts answers for one session.
	Tally struct {
		Answered   int
		Correct    int
		Streak     int
		BestStreak int
	}

	// CalcMsg carries answer-time statistics to the view.
	CalcMsg struct {
		Latest time.Duration
		Avg    time.Duration
		Min    time.Duration
		Max    time.Duration
	}
)

// Record counts one answer.
func (t *Tally) Record(correct bool) {
	t.Answered++
	if !correct {
		t.Streak = 0
		return
	}
	t.Correct++
	t.Streak++
	if t.Streak > t.BestStreak {
		t.BestStreak = t.Streak
	}
}

// Accuracy is the fraction of correct answers, 0 before the first answer.
func (t Tally) Accuracy() float64 {
	if t.Answered == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Answered)
}

func (t Tally) String() string {
	return fmt.Sprintf("%d/%d (%.0f%%)", t.Correct, t.Answered, t.Accuracy()*100)
}

// FormatDuration renders d as at most two short units, ie. "2 s 500 ms".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

// CalcStats returns a command yielding the statistics of prev, averaged to the
// nearest millisecond.
func CalcStats(latest time.Duration, prev []time.Duration) tea.Cmd {
	roundedAvg := math.Round(float64(Avg(prev))/float64(time.Millisecond)) * float64(time.Millisecond)
	return func() tea.Msg {
		return CalcMsg{
			Latest: latest,
			Avg:    time.Duration(roundedAvg),
			Max:    Max(prev),
			Min:    Min(prev),
		}
	}
}

// Min returns the smallest value, or zero for an empty slice.
func Min[T constraints.Integer](xs []T) T {
	var min T
	for i, x := range xs {
		if i == 0 || x < min {
			min = x
		}
	}
	return min
}

// Max returns the largest value, or zero for an empty slice.
func Max[T constraints.Integer](xs []T) T {
	var max T
	for i, x := range xs {
		if i == 0 || x > max {
			max = x
		}
	}
	return max
}

func Avg[T constraints.Integer](xs []T) T {
	if len(xs) == 0 {
		return 0
	}
	var sum T
	for _, x := range xs {
		sum += x
	}
	return sum / T(len(xs))
}
