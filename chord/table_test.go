package chord_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table := chord.DefaultTable()
	require.Equal(t, 84, table.Len())

	for _, root := range pitch.Classes() {
		for _, q := range chord.ListQualities() {
			offsets, ok := table.Offsets(root, q)
			require.True(t, ok)
			require.Equal(t, q.Offsets(), offsets)
		}
	}

	v, err := table.Voicing(chord.Key{Root: pitch.G, Quality: chord.MajorSeventh, Inversion: 2}, 4)
	require.NoError(t, err)
	require.Equal(t, []string{"D4", "F#4", "G4", "B4"}, v.Names())
}

func TestLoadTableRejectsBadSeeds(t *testing.T) {
	full := chord.SeedText()

	t.Run("wrong spelling", func(t *testing.T) {
		// The historical Eb diminished entry spelled a minor triad.
		bad := strings.Replace(full, "Eb diminished root: Eb4 Gb4 Bbb4", "Eb diminished root: Eb4 Gb4 Bb4", 1)
		_, err := chord.LoadTable(strings.NewReader(bad))
		require.ErrorIs(t, err, chord.ErrInvalidSeed)
	})

	t.Run("inversion disagrees with the generator", func(t *testing.T) {
		bad := strings.Replace(full, "C major 1st inversion: E3 G3 C4", "C major 1st inversion: E4 G4 C5", 1)
		_, err := chord.LoadTable(strings.NewReader(bad))
		require.ErrorIs(t, err, chord.ErrInvalidSeed)
	})

	t.Run("malformed note", func(t *testing.T) {
		bad := strings.Replace(full, "C major root: C4 E4 G4", "C major root: C4 H4 G4", 1)
		_, err := chord.LoadTable(strings.NewReader(bad))
		require.ErrorIs(t, err, chord.ErrInvalidSeed)
		require.ErrorIs(t, err, pitch.ErrInvalidNoteName)
	})

	t.Run("malformed root", func(t *testing.T) {
		bad := strings.Replace(full, "C major root: C4 E4 G4", "X major root: C4 E4 G4", 1)
		_, err := chord.LoadTable(strings.NewReader(bad))
		require.ErrorIs(t, err, chord.ErrInvalidSeed)
		require.ErrorIs(t, err, pitch.ErrInvalidNoteName)
	})

	t.Run("missing colon", func(t *testing.T) {
		bad := strings.Replace(full, "C major 1st inversion: E3 G3 C4", "C major 1st inversion E3 G3 C4", 1)
		_, err := chord.LoadTable(strings.NewReader(bad))
		require.ErrorIs(t, err, chord.ErrInvalidSeed)
		require.ErrorContains(t, err, "line 2")
	})

	t.Run("missing entry", func(t *testing.T) {
		bad := strings.Replace(full, "B minor root: B4 D5 F#5\n", "", 1)
		_, err := chord.LoadTable(strings.NewReader(bad))
		require.ErrorIs(t, err, chord.ErrInvalidSeed)
	})

	t.Run("unknown position", func(t *testing.T) {
		_, err := chord.ParseSeed(strings.NewReader("C major sideways: C4 E4 G4\n"))
		require.ErrorIs(t, err, chord.ErrInvalidSeed)
	})

	t.Run("wrong note count", func(t *testing.T) {
		_, err := chord.ParseSeed(strings.NewReader("C major root: C4 E4\n"))
		require.ErrorIs(t, err, chord.ErrInvalidSeed)
	})
}

func TestParseSeedSkipsBlankLines(t *testing.T) {
	seed := "\n  \nC# minor seventh flat five 3rd inversion: B3 C#4 E4 G4\n\n"
	entries, err := chord.ParseSeed(strings.NewReader(seed))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, chord.Key{Root: pitch.CSharp, Quality: chord.HalfDiminishedSeventh, Inversion: 3}, entries[0].Key)
	require.Equal(t, 3, entries[0].Line)
}

func TestFormatReloads(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, chord.DefaultTable().Format(&buf, 4))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 300)
	require.Equal(t, "C major root: C4 E4 G4", lines[0])
	require.Equal(t, "C major 1st inversion: E3 G3 C4", lines[1])

	reloaded, err := chord.LoadTable(&buf)
	require.NoError(t, err)
	require.Equal(t, 84, reloaded.Len())
}
