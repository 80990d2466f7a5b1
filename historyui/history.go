// Package historyui lists the most recent answers kept in the history store.
package historyui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rapidmidiex/rmxchords/keymap"
	"github.com/rapidmidiex/rmxchords/rmxerr"
	"github.com/rapidmidiex/rmxchords/score"
	"github.com/rapidmidiex/rmxchords/store"
	"github.com/rapidmidiex/rmxchords/styles"
)

// Answers loaded per visit.
const recentLimit = 100

type (
	// BackMsg returns to the setup screen.
	BackMsg struct{}

	loadedMsg struct {
		answers []store.Answer
	}

	// Lister reads recent answers, ie. *store.Store.
	Lister interface {
		RecentAnswers(ctx context.Context, limit int) ([]store.Answer, error)
	}

	Model struct {
		viewport viewport.Model
		help     help.Model
		history  Lister
		answers  []store.Answer
		err      error

		answerStyle lipgloss.Style
	}
)

// New builds the view. history may be nil when history is disabled.
func New(history Lister) Model {
	vp := viewport.New(styles.Width, 12)
	vp.SetContent("Loading...")

	return Model{
		viewport:    vp,
		help:        help.New(),
		history:     history,
		answerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Init reloads the answers.
func (m Model) Init() tea.Cmd {
	if m.history == nil {
		return func() tea.Msg { return loadedMsg{} }
	}
	history := m.history
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		answers, err := history.RecentAnswers(ctx, recentLimit)
		if err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("recent answers: %w", err)}
		}
		return loadedMsg{answers: answers}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 6
		m.viewport.Height = msg.Height - 8

	case loadedMsg:
		m.answers = msg.answers
		m.viewport.SetContent(m.content())
		m.viewport.GotoTop()

	case tea.KeyMsg:
		if key.Matches(msg, keymap.DefaultMapping.GoBack) {
			return m, func() tea.Msg { return BackMsg{} }
		}

	// We handle errors just like any other message
	case rmxerr.ErrMsg:
		m.err = msg
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	doc := strings.Builder{}
	doc.WriteString(styles.Prompt.Render("Recent answers") + "\n")
	doc.WriteString(styles.BaseStyle.Render(m.viewport.View()) + "\n")
	if m.err != nil {
		doc.WriteString(styles.RenderError(m.err.Error()) + "\n")
	}
	doc.WriteString(styles.HelpMenu.Render(m.help.View(keymap.HistoryHelp{Mapping: keymap.DefaultMapping})))
	return styles.DocStyle.Render(doc.String())
}

func (m Model) content() string {
	if m.history == nil {
		return "History is disabled."
	}
	if len(m.answers) == 0 {
		return "No answers yet. Start a quiz!"
	}
	lines := make([]string, 0, len(m.answers))
	for _, a := range m.answers {
		line := fmt.Sprintf("%s  %s (%s)",
			a.AnsweredAt.Local().Format("Jan 2 15:04"), a.Expected, score.FormatDuration(a.Elapsed))
		lines = append(lines, styles.RenderFeedback(a.Correct, line))
		if !a.Correct {
			lines = append(lines, m.answerStyle.Render("    answered "+a.Answer.String()))
		}
	}
	return strings.Join(lines, "\n")
}
