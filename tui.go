package rmxchords

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rapidmidiex/rmxchords/config"
	"github.com/rapidmidiex/rmxchords/historyui"
	"github.com/rapidmidiex/rmxchords/keymap"
	"github.com/rapidmidiex/rmxchords/midi"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/quizui"
	"github.com/rapidmidiex/rmxchords/rmxerr"
	"github.com/rapidmidiex/rmxchords/setupui"
	"github.com/rapidmidiex/rmxchords/store"
)

// ********
// Code heavily based on "Project Journal"
// https://github.com/bashbunni/pjs
// https://www.youtube.com/watch?v=uJ2egAkSkjg&t=319s
// ********

type (
	appView int

	mainModel struct {
		curView appView
		setup   tea.Model
		quiz    tea.Model
		history tea.Model

		store   *store.Store
		speaker *midi.Speaker
		log     *zap.Logger
	}
)

const (
	setupView appView = iota
	quizView
	historyView
)

// NewModel wires the screens together. history and speaker may be nil.
func NewModel(cfg *config.Config, history *store.Store, speaker *midi.Speaker, log *zap.Logger) mainModel {
	if log == nil {
		log = zap.NewNop()
	}
	return mainModel{
		curView: setupView,
		setup:   setupui.New(cfg.Quiz, history),
		store:   history,
		speaker: speaker,
		log:     log,
	}
}

func (m mainModel) Init() tea.Cmd {
	return m.setup.Init()
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd
	// Screen changes
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		// Ctrl+c and q exit from any screen.
		case key.Matches(msg, keymap.DefaultMapping.Quit):
			return m, tea.Quit
		}

	case setupui.StartQuizMsg:
		s, err := quiz.NewSession(msg.Selection, quiz.WithMode(msg.Mode), quiz.WithChoices(msg.Choices))
		if err != nil {
			m.setup, cmd = m.setup.Update(rmxerr.ErrMsg{Err: fmt.Errorf("start quiz: %w", err)})
			return m, cmd
		}
		m.log.Info("quiz started",
			zap.Stringer("session", s.ID),
			zap.Stringer("mode", s.Mode),
			zap.Int("candidates", len(msg.Selection.Candidates())),
		)
		m.quiz = quizui.New(s, m.quizOptions())
		m.curView = quizView
		return m, m.quiz.Init()

	case quizui.LeaveQuizMsg:
		m.log.Info("quiz left", zap.Stringer("score", msg.Tally))
		m.quiz = nil
		m.curView = setupView
		return m, m.setup.(setupui.Model).Refresh()

	case setupui.ShowHistoryMsg:
		var lister historyui.Lister
		if m.store != nil {
			lister = m.store
		}
		m.history = historyui.New(lister)
		m.curView = historyView
		return m, m.history.Init()

	case historyui.BackMsg:
		m.history = nil
		m.curView = setupView
		return m, nil
	}

	// Call sub-model Updates
	switch m.curView {
	case setupView:
		m.setup, cmd = m.setup.Update(msg)
	case quizView:
		m.quiz, cmd = m.quiz.Update(msg)
	case historyView:
		m.history, cmd = m.history.Update(msg)
	}

	// Run all commands from sub-model Updates
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m mainModel) View() string {
	switch m.curView {
	case quizView:
		return m.quiz.View()
	case historyView:
		return m.history.View()
	default:
		return m.setup.View()
	}
}

// quizOptions leaves the interfaces nil rather than holding nil pointers.
func (m mainModel) quizOptions() quizui.Options {
	o := quizui.Options{Logger: m.log}
	if m.store != nil {
		o.History = m.store
	}
	if m.speaker != nil {
		o.Player = m.speaker
	}
	return o
}

// Run opens the history and audio configured in cfg and runs the trainer
// until the user quits.
func Run(cfg *config.Config, log *zap.Logger) error {
	var history *store.Store
	if cfg.History.Enabled {
		s, err := store.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer s.Close()
		history = s
	}

	var speaker *midi.Speaker
	if cfg.Audio.SoundFont != "" {
		sp, err := openSpeaker(cfg.Audio, log)
		if err != nil {
			log.Warn("audio disabled", zap.Error(err))
		} else {
			defer sp.Close()
			speaker = sp
		}
	}

	p := tea.NewProgram(NewModel(cfg, history, speaker, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func openSpeaker(cfg config.AudioConfig, log *zap.Logger) (*midi.Speaker, error) {
	player, err := midi.NewPlayer(midi.NewPlayerOpts{
		SoundFontPath: cfg.SoundFont,
		Velocity:      cfg.Velocity,
	})
	if err != nil {
		return nil, err
	}
	return midi.NewSpeaker(player, cfg.ClipDuration(), log)
}
