// Package rmxerr sorts engine errors into the kinds the front ends react to.
package rmxerr

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/vpiano"
)

type (
	Kind int

	ErrMsg struct {
		Err error
	}
)

const (
	// Transport covers I/O: sockets, files, the database, audio devices.
	Transport Kind = iota
	// Recoverable errors reject a single request and leave state intact.
	Recoverable
	// Fatal errors mean the reference data itself is broken.
	Fatal
)

var codes = []struct {
	err  error
	code string
	kind Kind
}{
	{chord.ErrInvalidSeed, "invalid_seed", Fatal},
	{pitch.ErrInvalidNoteName, "invalid_note_name", Recoverable},
	{chord.ErrInvalidInversion, "invalid_inversion", Recoverable},
	{chord.ErrUnrepresentableRange, "unrepresentable_range", Recoverable},
	{vpiano.ErrInvalidWindow, "invalid_window", Recoverable},
	{quiz.ErrEmptySelection, "empty_selection", Recoverable},
	{quiz.ErrAlreadyAnswered, "already_answered", Recoverable},
	{quiz.ErrNotAnswered, "not_answered", Recoverable},
	{quiz.ErrUnknownChoice, "unknown_choice", Recoverable},
}

func (m ErrMsg) Error() string {
	return m.Err.Error()
}

func (m ErrMsg) Unwrap() error {
	return m.Err
}

func (k Kind) String() string {
	switch k {
	case Fatal:
		return "fatal"
	case Recoverable:
		return "recoverable"
	default:
		return "transport"
	}
}

// Classify reports the kind of err. A seed error wins over a note-name error
// it wraps.
func Classify(err error) Kind {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.kind
		}
	}
	return Transport
}

// Code is a stable identifier for err, used in API error bodies.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// Cmd delivers err to the bubbletea update loop.
func Cmd(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrMsg{Err: err}
	}
}
