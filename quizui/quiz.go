// Package quizui shows one quiz question at a time and takes the answer.
package quizui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/keymap"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/rmxerr"
	"github.com/rapidmidiex/rmxchords/score"
	"github.com/rapidmidiex/rmxchords/store"
	"github.com/rapidmidiex/rmxchords/styles"
	"github.com/rapidmidiex/rmxchords/vpiano"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	docStyle = styles.DocStyle

	diagramStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Subtle).
			Padding(0, 1)
	selectedDiagramStyle = diagramStyle.Copy().
				BorderForeground(styles.Primary)
)

type (
	// LeaveQuizMsg returns to the setup screen.
	LeaveQuizMsg struct {
		Tally score.Tally
	}

	answerRecordedMsg struct {
		answer store.Answer
	}

	// Player sounds a voicing, ie. *midi.Speaker.
	Player interface {
		Trigger(v chord.Voicing)
	}

	// Recorder keeps answers, ie. *store.Store.
	Recorder interface {
		RecordAnswer(ctx context.Context, sessionID uuid.UUID, fb quiz.Feedback, at time.Time) (store.Answer, error)
	}

	Options struct {
		// Optional. Without it the play key does nothing.
		Player Player
		// Optional. Without it answers are not kept.
		History Recorder
		Logger  *zap.Logger
	}

	Model struct {
		session *quiz.Session
		layout  vpiano.KeyLayout
		cursor  int
		stats   score.CalcMsg
		help    help.Model

		player  Player
		history Recorder
		log     *zap.Logger
		err     error
	}
)

func New(s *quiz.Session, o Options) Model {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return Model{
		session: s,
		layout:  vpiano.Layout(s.Selection().Window),
		help:    help.New(),
		player:  o.Player,
		history: o.History,
		log:     o.Logger.With(zap.Stringer("session", s.ID)),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keymap.DefaultMapping.GoBack):
			return m, m.leaveQuiz()

		case key.Matches(msg, keymap.DefaultMapping.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keymap.DefaultMapping.Down):
			if m.cursor < len(m.session.Question().Choices)-1 {
				m.cursor++
			}

		case key.Matches(msg, keymap.DefaultMapping.Submit):
			if m.session.State() != quiz.AwaitingAnswer {
				break
			}
			fb, err := m.session.Submit(m.session.Question().Choices[m.cursor].Key)
			if err != nil {
				cmds = append(cmds, rmxerr.Cmd(err))
				break
			}
			m.err = nil
			m.log.Debug("answer",
				zap.Stringer("expected", fb.Expected),
				zap.Stringer("answer", fb.Answer),
				zap.Bool("correct", fb.Correct),
				zap.Duration("elapsed", fb.Elapsed),
			)
			cmds = append(cmds,
				m.record(fb),
				score.CalcStats(fb.Elapsed, m.session.AnswerTimes()),
			)

		case key.Matches(msg, keymap.DefaultMapping.Next):
			if _, err := m.session.Next(); err != nil {
				if !errors.Is(err, quiz.ErrNotAnswered) {
					cmds = append(cmds, rmxerr.Cmd(err))
				}
				break
			}
			m.cursor = 0
			m.err = nil

		case key.Matches(msg, keymap.DefaultMapping.Play):
			if m.player != nil {
				m.player.Trigger(m.session.Question().Voicing)
			}
		}

	case score.CalcMsg:
		m.stats = msg
	case answerRecordedMsg:
		m.log.Debug("answer recorded", zap.Stringer("id", msg.answer.ID))
	case rmxerr.ErrMsg:
		m.err = msg
		m.log.Warn("quiz error", zap.Error(msg.Err), zap.String("code", rmxerr.Code(msg.Err)))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	physicalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	doc := strings.Builder{}

	if physicalWidth > 0 {
		docStyle = styles.DocStyle.MaxWidth(physicalWidth)
	}

	q := m.session.Question()
	fb, answered := m.session.Feedback()

	doc.WriteString(m.statusBar(q) + "\n\n")

	// Prompt
	switch m.session.Mode {
	case quiz.ModeNotes:
		doc.WriteString(styles.Prompt.Render("Which chord is "+strings.Join(q.Voicing.Names(), " ")+"?") + "\n")
	case quiz.ModeDiagram:
		doc.WriteString(styles.Prompt.Render("Which chord is this?") + "\n")
		doc.WriteString(vpiano.Render(m.layout, q.Voicing.Pitches) + "\n\n")
	case quiz.ModeName:
		doc.WriteString(styles.Prompt.Render("Which keys play "+q.Voicing.Key.String()+"?") + "\n")
	}

	// Choices
	if m.session.Mode == quiz.ModeName {
		doc.WriteString(m.diagramChoices(q, fb, answered) + "\n")
	} else {
		for i, c := range q.Choices {
			doc.WriteString(m.choiceLine(i, c.Key, fb, answered) + "\n")
		}
	}

	// Feedback
	if answered {
		doc.WriteString("\n" + renderFeedback(fb) + "\n")
		if m.session.Mode != quiz.ModeNotes {
			doc.WriteString(styles.DimStyle.Render(strings.Join(q.Voicing.Names(), " ")) + "\n")
		}
	}

	if m.err != nil {
		doc.WriteString("\n" + styles.RenderError(m.err.Error()) + "\n")
	}

	doc.WriteString(styles.HelpMenu.Render(m.help.View(keymap.QuizHelp{Mapping: keymap.DefaultMapping})))
	return docStyle.Render(doc.String())
}

func (m Model) statusBar(q quiz.Question) string {
	tally := m.session.Tally()
	question := styles.StatusStyle.Render(fmt.Sprintf("#%d", q.Number))
	mode := styles.StatusText.Render(m.session.Mode.String())
	times := styles.StatusText.Render(fmt.Sprintf("last %s  avg %s",
		score.FormatDuration(m.stats.Latest), score.FormatDuration(m.stats.Avg)))
	result := styles.ScoreStyle.Render(fmt.Sprintf("%s  streak %d", tally, tally.Streak))
	return lipgloss.JoinHorizontal(lipgloss.Top, question, mode, "  ", times, "  ", result)
}

// choiceLine marks the cursor while awaiting an answer, then the expected and
// picked choices.
func (m Model) choiceLine(i int, k chord.Key, fb quiz.Feedback, answered bool) string {
	label := fmt.Sprintf("%d. %s", i+1, k)
	switch {
	case answered && k == fb.Expected:
		return styles.Option.Render(styles.Correct.Render(label + " ✓"))
	case answered && k == fb.Answer:
		return styles.Option.Render(styles.Wrong.Render(label + " ✗"))
	case !answered && i == m.cursor:
		return styles.SelectedOption.Render("> " + label)
	default:
		return styles.Option.Render(label)
	}
}

func (m Model) diagramChoices(q quiz.Question, fb quiz.Feedback, answered bool) string {
	boxes := make([]string, len(q.Choices))
	for i, c := range q.Choices {
		title := fmt.Sprintf("%d.", i+1)
		switch {
		case answered && c.Key == fb.Expected:
			title = styles.Correct.Render(title + " ✓ " + c.Key.String())
		case answered && c.Key == fb.Answer:
			title = styles.Wrong.Render(title + " ✗ " + c.Key.String())
		}
		style := diagramStyle
		if !answered && i == m.cursor {
			style = selectedDiagramStyle
		}
		boxes[i] = style.Render(title + "\n" + vpiano.Render(m.layout, c.Voicing.Pitches))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func renderFeedback(fb quiz.Feedback) string {
	took := score.FormatDuration(fb.Elapsed)
	if fb.Correct {
		return styles.RenderFeedback(true, fmt.Sprintf("Correct! %s (%s)", fb.Expected, took))
	}
	msg := fmt.Sprintf("It was %s (%s)", fb.Expected, took)
	if fb.PitchSetMatch {
		msg += ". Right notes, wrong inversion."
	}
	return styles.RenderFeedback(false, msg)
}

// Commands
func (m Model) leaveQuiz() tea.Cmd {
	tally := m.session.Tally()
	return func() tea.Msg {
		return LeaveQuizMsg{Tally: tally}
	}
}

func (m Model) record(fb quiz.Feedback) tea.Cmd {
	if m.history == nil {
		return nil
	}
	history, id := m.history, m.session.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		a, err := history.RecordAnswer(ctx, id, fb, time.Now())
		if err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("record answer: %w", err)}
		}
		return answerRecordedMsg{answer: a}
	}
}
