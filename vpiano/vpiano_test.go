package vpiano_test

import (
	"strings"
	"testing"

	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/vpiano"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	l := vpiano.Layout(vpiano.DefaultWindow)

	require.Equal(t, 15, l.WhiteCount)
	require.Len(t, l.Whites, 15)
	require.Len(t, l.Blacks, 10)

	ordinals := make(map[int]bool)
	for p, ord := range l.Whites {
		require.False(t, p.Class().IsAccidental(), p.String())
		ordinals[ord] = true
	}
	for i := 0; i < 15; i++ {
		require.True(t, ordinals[i], "missing ordinal %d", i)
	}

	whiteByOrdinal := make(map[int]pitch.Pitch)
	for p, ord := range l.Whites {
		whiteByOrdinal[ord] = p
	}
	for p, after := range l.Blacks {
		prev, ok := whiteByOrdinal[after]
		require.True(t, ok, "%s sits after unknown ordinal %d", p, after)
		require.Equal(t, p-1, prev)
		require.Contains(t, []pitch.Class{pitch.C, pitch.D, pitch.F, pitch.G, pitch.A}, prev.Class())
	}

	c4 := pitch.PitchOf(pitch.C, 4)
	require.Equal(t, 7, l.Whites[c4])
	require.Equal(t, 7, l.Blacks[c4+1])
	require.Equal(t, 14, l.Whites[pitch.PitchOf(pitch.C, 5)])
}

func TestLayoutStartingOnBlackKey(t *testing.T) {
	w, err := vpiano.ParseWindow("C#3", "E3")
	require.NoError(t, err)
	l := vpiano.Layout(w)

	require.Equal(t, 2, l.WhiteCount)
	require.Equal(t, -1, l.Blacks[pitch.PitchOf(pitch.CSharp, 3)])
	require.Equal(t, 0, l.Blacks[pitch.PitchOf(pitch.DSharp, 3)])
	require.Equal(t, 0, l.Whites[pitch.PitchOf(pitch.D, 3)])

	x, ok := l.BlackX(pitch.PitchOf(pitch.CSharp, 3))
	require.True(t, ok)
	require.InDelta(t, -0.3, x, 1e-9)
}

func TestBlackX(t *testing.T) {
	l := vpiano.Layout(vpiano.DefaultWindow)

	x, ok := l.BlackX(pitch.PitchOf(pitch.CSharp, 3))
	require.True(t, ok)
	require.InDelta(t, 0.7, x, 1e-9)

	x, ok = l.BlackX(pitch.PitchOf(pitch.FSharp, 4))
	require.True(t, ok)
	require.InDelta(t, 10.7, x, 1e-9)

	_, ok = l.BlackX(pitch.PitchOf(pitch.E, 4))
	require.False(t, ok)
}

func TestWindow(t *testing.T) {
	_, err := vpiano.ParseWindow("C5", "C3")
	require.ErrorIs(t, err, vpiano.ErrInvalidWindow)

	_, err = vpiano.ParseWindow("C3", "X5")
	require.ErrorIs(t, err, pitch.ErrInvalidNoteName)

	w, err := vpiano.ParseWindow("C3", "C5")
	require.NoError(t, err)
	require.Equal(t, vpiano.DefaultWindow, w)
	require.Equal(t, "[C3, C5]", w.String())
	require.True(t, w.Contains(pitch.PitchOf(pitch.C, 5)))
	require.False(t, w.Contains(pitch.PitchOf(pitch.CSharp, 5)))
}

func TestWindowNotes(t *testing.T) {
	w, err := vpiano.ParseWindow("C4", "E4")
	require.NoError(t, err)

	want := vpiano.Notes{
		{Pitch: 48, MIDI: 60, Name: "C", IsAccidental: false},
		{Pitch: 49, MIDI: 61, Name: "C#/Db", IsAccidental: true},
		{Pitch: 50, MIDI: 62, Name: "D", IsAccidental: false},
		{Pitch: 51, MIDI: 63, Name: "D#/Eb", IsAccidental: true},
		{Pitch: 52, MIDI: 64, Name: "E", IsAccidental: false},
	}
	got := w.Notes()
	require.Equal(t, want, got)
}

func TestInRange(t *testing.T) {
	require.True(t, vpiano.InRange(21))
	require.True(t, vpiano.InRange(127))
	require.False(t, vpiano.InRange(20))
	require.False(t, vpiano.InRange(128))
}

func TestRender(t *testing.T) {
	l := vpiano.Layout(vpiano.DefaultWindow)
	chord := []pitch.Pitch{
		pitch.PitchOf(pitch.C, 4),
		pitch.PitchOf(pitch.DSharp, 4),
		pitch.PitchOf(pitch.G, 4),
		// Outside the window, ignored.
		pitch.PitchOf(pitch.C, 6),
	}
	out := vpiano.Render(l, chord)

	require.Equal(t, 3, strings.Count(out, vpiano.Marker))
	require.Contains(t, out, "C3")
	require.Contains(t, out, "C4")
	require.Contains(t, out, "C5")

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	require.True(t, strings.HasPrefix(lines[3], "└"))

	require.Empty(t, vpiano.Render(vpiano.KeyLayout{}, chord))
}
