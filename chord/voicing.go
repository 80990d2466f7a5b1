// Package chord builds close-position chord voicings and fits them onto a keyboard window.
package chord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/vpiano"
)

var (
	ErrInvalidInversion     = errors.New("invalid inversion")
	ErrUnrepresentableRange = errors.New("voicing does not fit the keyboard window")
)

type (
	// Key identifies a voicing independently of the octave it sounds in.
	Key struct {
		Root      pitch.Class `json:"root"`
		Quality   Quality     `json:"quality"`
		Inversion int         `json:"inversion"`
	}

	Voicing struct {
		Key Key
		// Ascending absolute pitches, bass first.
		Pitches []pitch.Pitch
	}
)

// BuildVoicing returns the close voicing of root/quality in the given inversion.
// The root keeps its pitch in baseOctave; tones that move below it in an
// inversion drop one octave, so the result is always ascending.
func BuildVoicing(root pitch.Class, quality Quality, inversion, baseOctave int) (Voicing, error) {
	if !root.Valid() {
		return Voicing{}, fmt.Errorf("build voicing: %w: root class %d", pitch.ErrInvalidNoteName, int(root))
	}
	offsets := quality.Offsets()
	if len(offsets) == 0 {
		return Voicing{}, fmt.Errorf("build voicing: unknown quality %d", int(quality))
	}
	if inversion < 0 || inversion >= len(offsets) {
		return Voicing{}, fmt.Errorf("%w: %d for %s (%d tones)", ErrInvalidInversion, inversion, quality, len(offsets))
	}

	rootPitch := pitch.PitchOf(root, baseOctave)
	base := make([]pitch.Pitch, len(offsets))
	for i, off := range offsets {
		base[i] = rootPitch + pitch.Pitch(off)
	}

	pitches := make([]pitch.Pitch, 0, len(base))
	for _, p := range base[inversion:] {
		if inversion > 0 {
			p -= 12
		}
		pitches = append(pitches, p)
	}
	pitches = append(pitches, base[:inversion]...)

	return Voicing{
		Key:     Key{Root: root, Quality: quality, Inversion: inversion},
		Pitches: pitches,
	}, nil
}

// Build is BuildVoicing for an existing key.
func (k Key) Build(baseOctave int) (Voicing, error) {
	return BuildVoicing(k.Root, k.Quality, k.Inversion, baseOctave)
}

// FitToWindow shifts the whole voicing by octaves until every pitch lies inside w.
func FitToWindow(v Voicing, w vpiano.Window) (Voicing, error) {
	if len(v.Pitches) == 0 {
		return v, nil
	}
	lo, hi := v.Low(), v.High()
	if hi-lo > w.High-w.Low {
		return Voicing{}, fmt.Errorf("%w: %s spans %d semitones, window %s spans %d",
			ErrUnrepresentableRange, v.Key, hi-lo, w, w.High-w.Low)
	}

	var shift pitch.Pitch
	switch {
	case lo < w.Low:
		shift = 12 * ceilDiv(w.Low-lo, 12)
	case hi > w.High:
		shift = -12 * ceilDiv(hi-w.High, 12)
	}
	if lo+shift < w.Low || hi+shift > w.High {
		return Voicing{}, fmt.Errorf("%w: no octave of %s fits %s", ErrUnrepresentableRange, v.Key, w)
	}
	return v.Transpose(shift), nil
}

// Transpose returns a copy of v moved by the given number of semitones.
func (v Voicing) Transpose(semitones pitch.Pitch) Voicing {
	out := Voicing{Key: v.Key, Pitches: make([]pitch.Pitch, len(v.Pitches))}
	for i, p := range v.Pitches {
		out.Pitches[i] = p + semitones
	}
	return out
}

func (v Voicing) Low() pitch.Pitch {
	return v.Pitches[0]
}

func (v Voicing) High() pitch.Pitch {
	return v.Pitches[len(v.Pitches)-1]
}

// Names spells each pitch with sharps, ie. ["E3", "G3", "C4"].
func (v Voicing) Names() []string {
	names := make([]string, len(v.Pitches))
	for i, p := range v.Pitches {
		names[i] = p.String()
	}
	return names
}

func (v Voicing) String() string {
	return fmt.Sprintf("%s: %s", v.Key, strings.Join(v.Names(), " "))
}

// IdentityKey is the comparable value used to check answers.
func IdentityKey(v Voicing) Key {
	return v.Key
}

// PitchSetKey joins the sorted pitches with "-", ie. "40-43-48".
// Two different keys can share a pitch set; that never makes them equal.
func PitchSetKey(v Voicing) string {
	parts := make([]string, len(v.Pitches))
	for i, p := range v.Pitches {
		parts[i] = fmt.Sprintf("%d", int(p))
	}
	return strings.Join(parts, "-")
}

// ClassSetKey joins the sorted pitch classes with "-", ignoring octaves and
// order, ie. "0-4-7" for any inversion of C major.
func ClassSetKey(v Voicing) string {
	seen := make([]bool, 12)
	for _, p := range v.Pitches {
		seen[p.Class()] = true
	}
	var parts []string
	for c, ok := range seen {
		if ok {
			parts = append(parts, fmt.Sprintf("%d", c))
		}
	}
	return strings.Join(parts, "-")
}

// Position names the inversion, ie. "root position" or "2nd inversion".
func (k Key) Position() string {
	if k.Inversion == 0 {
		return "root position"
	}
	return humanize.Ordinal(k.Inversion) + " inversion"
}

// String is the display name, ie. "C major seventh 2nd inversion".
// It is never parsed back.
func (k Key) String() string {
	return fmt.Sprintf("%s %s %s", RootName(k.Root), k.Quality, k.Position())
}

func ceilDiv(n, d pitch.Pitch) pitch.Pitch {
	return (n + d - 1) / d
}
