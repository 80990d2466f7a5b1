package quiz

import "fmt"

// Mode decides what a question shows and what the choices look like.
type Mode int

const (
	// ModeNotes lists the spelled notes; choices are chord names.
	ModeNotes Mode = iota
	// ModeDiagram draws the keyboard; choices are chord names.
	ModeDiagram
	// ModeName shows the chord name; choices are keyboard diagrams.
	ModeName
)

var modeNames = []string{"notes", "diagram", "name"}

func Modes() []Mode {
	return []Mode{ModeNotes, ModeDiagram, ModeName}
}

func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown quiz mode %q", s)
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next cycles through the modes.
func (m Mode) Next() Mode {
	return (m + 1) % Mode(len(modeNames))
}

func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("unknown quiz mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
