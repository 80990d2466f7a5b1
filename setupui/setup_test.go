package setupui_test

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/config"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/setupui"
	"github.com/rapidmidiex/rmxchords/store"
	"github.com/stretchr/testify/require"
)

func press(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m setupui.Model, msg tea.Msg) (setupui.Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	sm, ok := next.(setupui.Model)
	require.True(t, ok)
	return sm, cmd
}

func TestNewMirrorsConfig(t *testing.T) {
	m := setupui.New(config.DefaultConfig().Quiz, nil)

	sel, err := m.Selection()
	require.NoError(t, err)
	require.Equal(t, pitch.Classes(), sel.Roots)
	require.Equal(t, []chord.Quality{chord.Major, chord.Minor, chord.Diminished}, sel.Qualities)
	require.Equal(t, []int{0, 1, 2, 3}, sel.Inversions)
	require.Equal(t, quiz.ModeNotes, m.Mode())
	require.Nil(t, m.Init(), "nothing to load without history")
}

func TestToggleAndStart(t *testing.T) {
	m := setupui.New(config.DefaultConfig().Quiz, nil)

	// The cursor starts on the C row.
	m, _ = update(t, m, press('x'))
	sel, err := m.Selection()
	require.NoError(t, err)
	require.NotContains(t, sel.Roots, pitch.C)
	require.Len(t, sel.Roots, 11)

	m, _ = update(t, m, press('m'))
	require.Equal(t, quiz.ModeDiagram, m.Mode())

	m, cmd := update(t, m, press('s'))
	require.NotNil(t, cmd)
	start, ok := cmd().(setupui.StartQuizMsg)
	require.True(t, ok)
	require.Equal(t, sel, start.Selection)
	require.Equal(t, quiz.ModeDiagram, start.Mode)
	require.Equal(t, 4, start.Choices)
	require.Contains(t, m.View(), "diagram")
}

func TestStartRejectsEmptySelection(t *testing.T) {
	cfg := config.DefaultConfig().Quiz
	cfg.Roots = []string{"C"}
	m := setupui.New(cfg, nil)

	m, _ = update(t, m, press('x'))
	_, err := m.Selection()
	require.ErrorIs(t, err, quiz.ErrEmptySelection)

	m, cmd := update(t, m, press('s'))
	require.Nil(t, cmd)
	require.Contains(t, m.View(), "Error")
}

func TestShowHistory(t *testing.T) {
	m := setupui.New(config.DefaultConfig().Quiz, nil)
	_, cmd := update(t, m, press('h'))
	require.NotNil(t, cmd)
	require.IsType(t, setupui.ShowHistoryMsg{}, cmd())
}

func TestWeakestChords(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	session := uuid.New()
	weak := chord.Key{Root: pitch.DSharp, Quality: chord.Diminished, Inversion: 1}
	for i := 0; i < 3; i++ {
		_, err := s.RecordAnswer(ctx, session, quiz.Feedback{
			Correct:  i == 0,
			Expected: weak,
			Answer:   weak,
			Elapsed:  2 * time.Second,
		}, time.Now())
		require.NoError(t, err)
	}

	m := setupui.New(config.DefaultConfig().Quiz, s)
	cmd := m.Init()
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	view := m.View()
	require.Contains(t, view, "Weakest chords")
	require.Contains(t, view, weak.String())
	require.Contains(t, view, "1/3")
	require.Contains(t, view, "3 answers over 1 sessions")
}
