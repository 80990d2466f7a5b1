package rmxchords

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rapidmidiex/rmxchords/config"
	"github.com/rapidmidiex/rmxchords/historyui"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/quizui"
	"github.com/rapidmidiex/rmxchords/setupui"
	"github.com/rapidmidiex/rmxchords/store"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, m mainModel, msg tea.Msg) (mainModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(mainModel)
	require.True(t, ok)
	return mm, cmd
}

func TestScreens(t *testing.T) {
	cfg := config.DefaultConfig()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	m := NewModel(cfg, s, nil, nil)
	require.Equal(t, setupView, m.curView)
	require.Contains(t, m.View(), "Chord voicing drill")

	sel, err := cfg.Quiz.Selection()
	require.NoError(t, err)
	m, _ = send(t, m, setupui.StartQuizMsg{Selection: sel, Mode: quiz.ModeNotes, Choices: 4})
	require.Equal(t, quizView, m.curView)
	require.Contains(t, m.View(), "Which chord is")

	m, cmd := send(t, m, quizui.LeaveQuizMsg{})
	require.Equal(t, setupView, m.curView)
	require.Nil(t, m.quiz)
	require.NotNil(t, cmd, "setup reloads the history summary")

	m, cmd = send(t, m, setupui.ShowHistoryMsg{})
	require.Equal(t, historyView, m.curView)
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	require.Contains(t, m.View(), "No answers yet")

	m, _ = send(t, m, historyui.BackMsg{})
	require.Equal(t, setupView, m.curView)
}

func TestStartWithBadSelection(t *testing.T) {
	cfg := config.DefaultConfig()
	m := NewModel(cfg, nil, nil, nil)

	m, _ = send(t, m, setupui.StartQuizMsg{})
	require.Equal(t, setupView, m.curView)
	require.Contains(t, m.View(), "start quiz")
}

func TestHistoryDisabled(t *testing.T) {
	m := NewModel(config.DefaultConfig(), nil, nil, nil)
	require.Nil(t, m.Init())

	m, cmd := send(t, m, setupui.ShowHistoryMsg{})
	m, _ = send(t, m, cmd())
	require.Contains(t, m.View(), "History is disabled")

	opts := m.quizOptions()
	require.Nil(t, opts.History)
	require.Nil(t, opts.Player)
}

func TestQuit(t *testing.T) {
	m := NewModel(config.DefaultConfig(), nil, nil, nil)
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
}
