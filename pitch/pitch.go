// Package pitch converts between note spellings, pitch classes and absolute pitch numbers.
package pitch

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidNoteName = errors.New("invalid note name")

type (
	// Class is one of the 12 semitone classes, 0 (C) through 11 (B).
	Class int

	// Pitch is an absolute pitch number where C0 = 0 and C4 = 48.
	Pitch int
)

const (
	C Class = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// MIDI key number of Pitch(0), ie. C0.
const midiC0 = 12

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var naturals = map[byte]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

var accidentals = map[string]int{
	"":   0,
	"#":  1,
	"b":  -1,
	"bb": -2,
}

// Classes returns the 12 pitch classes in ascending order from C.
func Classes() []Class {
	cs := make([]Class, 0, len(sharpNames))
	for i := range sharpNames {
		cs = append(cs, Class(i))
	}
	return cs
}

// ParseNote parses an octave-less spelling such as "Eb", "F#" or "Bbb".
func ParseNote(spelling string) (Class, error) {
	semis, err := parseLetter(spelling)
	if err != nil {
		return 0, err
	}
	return Class(mod12(semis)), nil
}

// ParsePitch parses a spelling with an octave number, ie. "Bb3" or "C#-1".
// The octave is relative to the letter so "B#4" is C5 and "Cb5" is B4.
func ParsePitch(spelling string) (Pitch, error) {
	i := len(spelling)
	for i > 0 && isDigit(spelling[i-1]) {
		i--
	}
	if i > 0 && spelling[i-1] == '-' {
		i--
	}
	if i == len(spelling) || i == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, spelling)
	}
	octave, err := strconv.Atoi(spelling[i:])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, spelling)
	}
	semis, err := parseLetter(spelling[:i])
	if err != nil {
		return 0, err
	}
	return Pitch(12*octave + semis), nil
}

// PitchOf places a pitch class in the given octave.
func PitchOf(c Class, octave int) Pitch {
	return Pitch(12*octave + int(c))
}

// SpellingOf returns the canonical sharp spelling of a pitch class.
func SpellingOf(c Class) string {
	return sharpNames[mod12(int(c))]
}

func (c Class) String() string {
	return SpellingOf(c)
}

// Valid reports whether c is one of C through B.
func (c Class) Valid() bool {
	return c >= C && c <= B
}

// IsAccidental reports whether the class sits on a black key.
func (c Class) IsAccidental() bool {
	switch mod12(int(c)) {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Class) UnmarshalText(text []byte) error {
	parsed, err := ParseNote(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (p Pitch) Class() Class {
	return Class(mod12(int(p)))
}

func (p Pitch) Octave() int {
	return floorDiv(int(p), 12)
}

// MIDI returns the MIDI key number, based on C4=60.
func (p Pitch) MIDI() int {
	return int(p) + midiC0
}

// FromMIDI is the inverse of Pitch.MIDI.
func FromMIDI(key int) Pitch {
	return Pitch(key - midiC0)
}

func (p Pitch) String() string {
	return p.Class().String() + strconv.Itoa(p.Octave())
}

func parseLetter(spelling string) (int, error) {
	if spelling == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidNoteName)
	}
	natural, ok := naturals[spelling[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, spelling)
	}
	alter, ok := accidentals[spelling[1:]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, spelling)
	}
	return natural + alter, nil
}

func mod12(n int) int {
	return ((n % 12) + 12) % 12
}

func floorDiv(n, d int) int {
	q := n / d
	if n%d != 0 && n < 0 {
		q--
	}
	return q
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
