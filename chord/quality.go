package chord

import (
	"fmt"
	"strings"
)

type Quality int

const (
	Major Quality = iota
	Minor
	Diminished
	MajorSeventh
	DominantSeventh
	MinorSeventh
	HalfDiminishedSeventh
)

var qualities = []struct {
	id      string
	name    string
	aliases []string
	offsets []int
}{
	Major:                 {id: "major", name: "major", offsets: []int{0, 4, 7}},
	Minor:                 {id: "minor", name: "minor", offsets: []int{0, 3, 7}},
	Diminished:            {id: "diminished", name: "diminished", offsets: []int{0, 3, 6}},
	MajorSeventh:          {id: "major-seventh", name: "major seventh", offsets: []int{0, 4, 7, 11}},
	DominantSeventh:       {id: "dominant-seventh", name: "dominant seventh", offsets: []int{0, 4, 7, 10}},
	MinorSeventh:          {id: "minor-seventh", name: "minor seventh", offsets: []int{0, 3, 7, 10}},
	HalfDiminishedSeventh: {id: "half-diminished-seventh", name: "half-diminished seventh", aliases: []string{"minor seventh flat five"}, offsets: []int{0, 3, 6, 10}},
}

// ListQualities returns every quality in display order.
func ListQualities() []Quality {
	qs := make([]Quality, 0, len(qualities))
	for i := range qualities {
		qs = append(qs, Quality(i))
	}
	return qs
}

// ParseQuality accepts a stable id ("dominant-seventh") or a display name ("dominant seventh").
func ParseQuality(s string) (Quality, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for i, q := range qualities {
		if s == q.id || s == q.name {
			return Quality(i), nil
		}
		for _, alias := range q.aliases {
			if s == alias {
				return Quality(i), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown chord quality: %q", s)
}

func (q Quality) valid() bool {
	return q >= 0 && int(q) < len(qualities)
}

// Offsets returns the root-position semitone offsets from the root.
func (q Quality) Offsets() []int {
	if !q.valid() {
		return nil
	}
	return append([]int(nil), qualities[q].offsets...)
}

// Size is the number of chord tones, 3 for triads and 4 for sevenths.
func (q Quality) Size() int {
	if !q.valid() {
		return 0
	}
	return len(qualities[q].offsets)
}

func (q Quality) ID() string {
	if !q.valid() {
		return fmt.Sprintf("quality(%d)", int(q))
	}
	return qualities[q].id
}

func (q Quality) String() string {
	if !q.valid() {
		return fmt.Sprintf("quality(%d)", int(q))
	}
	return qualities[q].name
}

func (q Quality) MarshalText() ([]byte, error) {
	if !q.valid() {
		return nil, fmt.Errorf("unknown chord quality: %d", int(q))
	}
	return []byte(q.ID()), nil
}

func (q *Quality) UnmarshalText(text []byte) error {
	parsed, err := ParseQuality(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
