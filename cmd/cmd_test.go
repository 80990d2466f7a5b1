package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/config"
	"github.com/rapidmidiex/rmxchords/midi"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/vpiano"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	sel := quiz.Selection{
		Roots:      []pitch.Class{pitch.C, pitch.G},
		Qualities:  []chord.Quality{chord.Major},
		Inversions: []int{0, 1, 2},
		BaseOctave: 4,
		Window:     vpiano.DefaultWindow,
	}
	var buf bytes.Buffer
	n, err := export(&buf, sel, 90)
	require.NoError(t, err)
	require.Equal(t, 6, n)

	chords, err := midi.ReadChords(&buf)
	require.NoError(t, err)
	require.Len(t, chords, 6)

	first, err := sel.Voicing(sel.Candidates()[0])
	require.NoError(t, err)
	require.Equal(t, first.Pitches, chords[0])
}

func TestExportRejects(t *testing.T) {
	_, err := export(&bytes.Buffer{}, quiz.Selection{}, 90)
	require.ErrorIs(t, err, quiz.ErrEmptySelection)

	sel, err := config.DefaultConfig().Quiz.Selection()
	require.NoError(t, err)
	_, err = export(&bytes.Buffer{}, sel, 0)
	require.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "drill.mid")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"export", "--config", filepath.Join(dir, "missing.yaml"), out})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())

	// Defaults: 12 roots, 3 triads, 3 positions each.
	require.Equal(t, "wrote 108 chords to "+out+"\n", stdout.String())
}

func TestTableCommand(t *testing.T) {
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"table"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 300)
	require.Equal(t, "C major root: C4 E4 G4", lines[0])
}
