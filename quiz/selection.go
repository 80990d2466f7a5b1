package quiz

import (
	"errors"
	"fmt"

	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/vpiano"
)

var ErrEmptySelection = errors.New("selection has no chords")

// Selection is the set of chords a quiz draws from. Every combination of
// root, quality and inversion is a candidate; inversions a quality does not
// have are skipped.
type Selection struct {
	Roots      []pitch.Class
	Qualities  []chord.Quality
	Inversions []int
	BaseOctave int
	Window     vpiano.Window
}

// Candidates lists the distinct keys of s in root, quality, inversion order.
func (s Selection) Candidates() []chord.Key {
	seen := make(map[chord.Key]bool)
	var keys []chord.Key
	for _, root := range s.Roots {
		for _, q := range s.Qualities {
			for _, inv := range s.Inversions {
				if inv < 0 || inv >= q.Size() {
					continue
				}
				k := chord.Key{Root: root, Quality: q, Inversion: inv}
				if seen[k] {
					continue
				}
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Voicing builds k at the base octave and fits it to the window.
func (s Selection) Voicing(k chord.Key) (chord.Voicing, error) {
	v, err := k.Build(s.BaseOctave)
	if err != nil {
		return chord.Voicing{}, err
	}
	return chord.FitToWindow(v, s.Window)
}

// Validate builds every candidate so a question that cannot be drawn is
// reported before the quiz starts.
func (s Selection) Validate() error {
	keys := s.Candidates()
	if len(keys) == 0 {
		return ErrEmptySelection
	}
	for _, k := range keys {
		if _, err := s.Voicing(k); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}
