package vpiano

import (
	"errors"
	"fmt"

	"github.com/rapidmidiex/rmxchords/pitch"
)

var ErrInvalidWindow = errors.New("invalid keyboard window")

// BlackKeyWidth is the width of a black key in white-key widths.
const BlackKeyWidth = 0.6

type (
	Note struct {
		// Absolute pitch, C4=48
		Pitch pitch.Pitch
		// MIDI note number, based on C4=60
		MIDI int
		// Name of the note, ex: "C", "F#/Gb"
		Name string
		// Denotes if note is sharp/flat ie. "black" key.
		IsAccidental bool
	}

	Notes []Note

	// Window is an inclusive range of pitches drawn as a keyboard.
	Window struct {
		Low  pitch.Pitch
		High pitch.Pitch
	}

	// KeyLayout places each key of a window. White keys get ordinals counted
	// from 0 at the left; a black key records the ordinal of the white key
	// before it, or -1 when the window starts on a black key.
	KeyLayout struct {
		Window     Window
		Whites     map[pitch.Pitch]int
		Blacks     map[pitch.Pitch]int
		WhiteCount int
	}
)

var noteNames = []string{"C", "C#/Db", "D", "D#/Eb", "E", "F", "F#/Gb", "G", "G#/Ab", "A", "A#/Bb", "B"}

// DefaultWindow spans C3 to C5.
var DefaultWindow = Window{Low: pitch.PitchOf(pitch.C, 3), High: pitch.PitchOf(pitch.C, 5)}

func NewWindow(low, high pitch.Pitch) (Window, error) {
	if low > high {
		return Window{}, fmt.Errorf("%w: low %s above high %s", ErrInvalidWindow, low, high)
	}
	return Window{Low: low, High: high}, nil
}

// ParseWindow builds a window from note names, ie. ParseWindow("C3", "C5").
func ParseWindow(low, high string) (Window, error) {
	lo, err := pitch.ParsePitch(low)
	if err != nil {
		return Window{}, err
	}
	hi, err := pitch.ParsePitch(high)
	if err != nil {
		return Window{}, err
	}
	return NewWindow(lo, hi)
}

func (w Window) Contains(p pitch.Pitch) bool {
	return p >= w.Low && p <= w.High
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s]", w.Low, w.High)
}

// Notes lists every key of the window from low to high.
func (w Window) Notes() Notes {
	notes := make(Notes, 0, int(w.High-w.Low)+1)
	for p := w.Low; p <= w.High; p++ {
		notes = append(notes, Note{
			Pitch:        p,
			MIDI:         p.MIDI(),
			Name:         noteNames[p.Class()],
			IsAccidental: p.Class().IsAccidental(),
		})
	}
	return notes
}

// Layout computes key positions for w. It performs no drawing.
func Layout(w Window) KeyLayout {
	l := KeyLayout{
		Window: w,
		Whites: make(map[pitch.Pitch]int),
		Blacks: make(map[pitch.Pitch]int),
	}
	prevWhite := -1
	for _, n := range w.Notes() {
		if n.IsAccidental {
			l.Blacks[n.Pitch] = prevWhite
			continue
		}
		prevWhite = l.WhiteCount
		l.Whites[n.Pitch] = l.WhiteCount
		l.WhiteCount++
	}
	return l
}

// BlackX is the left edge of a black key in white-key widths. The key is
// centred on the boundary after its preceding white key.
func (l KeyLayout) BlackX(p pitch.Pitch) (float64, bool) {
	after, ok := l.Blacks[p]
	if !ok {
		return 0, false
	}
	return float64(after) + 1 - BlackKeyWidth/2, true
}

func InRange(midiNum int) bool {
	return midiNum > 20 && midiNum < 128
}
