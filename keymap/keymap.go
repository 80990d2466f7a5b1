package keymap

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type Mapping struct {
	Up      key.Binding
	Down    key.Binding
	Submit  key.Binding
	Next    key.Binding
	Toggle  key.Binding
	Mode    key.Binding
	Start   key.Binding
	Play    key.Binding
	History key.Binding
	GoBack  key.Binding
	Quit    key.Binding
}

var DefaultMapping = Mapping{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Submit: key.NewBinding(
		key.WithKeys(tea.KeyEnter.String()),
		key.WithHelp("enter", "answer"),
	),
	Next: key.NewBinding(
		key.WithKeys("n", " "),
		key.WithHelp("n/space", "next chord"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space/x", "toggle"),
	),
	Mode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "quiz mode"),
	),
	Start: key.NewBinding(
		key.WithKeys("s", tea.KeyEnter.String()),
		key.WithHelp("s/enter", "start quiz"),
	),
	Play: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "play chord"),
	),
	History: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "history"),
	),
	GoBack: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "go back"),
	),
	Quit: key.NewBinding(
		key.WithKeys(tea.KeyCtrlC.String(), "q"),
		key.WithHelp("q", "quit"),
	),
}

// QuizHelp lists the bindings active while a question is shown.
type QuizHelp struct{ Mapping }

func (h QuizHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.Up, h.Down, h.Submit, h.Next, h.Play, h.GoBack}
}

func (h QuizHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp(), {h.Quit}}
}

// SetupHelp lists the bindings of the selection screen.
type SetupHelp struct{ Mapping }

func (h SetupHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.Up, h.Down, h.Toggle, h.Mode, h.Start, h.History, h.Quit}
}

func (h SetupHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// HistoryHelp lists the bindings of the answer history.
type HistoryHelp struct{ Mapping }

func (h HistoryHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.Up, h.Down, h.GoBack, h.Quit}
}

func (h HistoryHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
