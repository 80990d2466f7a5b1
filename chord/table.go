package chord

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/rapidmidiex/rmxchords/pitch"
)

var ErrInvalidSeed = errors.New("invalid voicing seed")

// Reference voicings, one per line: "<root> <quality> <position>: <notes>".
// Root position is written in octave 4.
//
//go:embed voicings.txt
var seedText string

const seedOctave = 4

var rootNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

type (
	tableKey struct {
		root    pitch.Class
		quality Quality
	}

	// Table holds the root-position offsets of every (root, quality) pair.
	Table struct {
		entries map[tableKey][]int
	}

	// SeedEntry is one parsed line of the seed text.
	SeedEntry struct {
		Key     Key
		Pitches []pitch.Pitch
		Line    int
	}
)

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// ListRoots returns the 12 root spellings used for display, C through B.
func ListRoots() []string {
	return append([]string(nil), rootNames[:]...)
}

// RootName spells a root the way chord names display it, ie. "Eb" rather than "D#".
func RootName(c pitch.Class) string {
	return rootNames[int(pitch.PitchOf(c, 0).Class())]
}

// DefaultTable returns the table built from the embedded seed. A bad seed is a
// data-entry bug and panics on first use.
func DefaultTable() *Table {
	defaultTableOnce.Do(func() {
		t, err := LoadTable(strings.NewReader(seedText))
		if err != nil {
			panic(fmt.Sprintf("chord: embedded voicing table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// SeedText returns the embedded reference table.
func SeedText() string {
	return seedText
}

// LoadTable parses seed lines, derives offsets from the root-position entries
// and checks every entry against BuildVoicing.
func LoadTable(r io.Reader) (*Table, error) {
	entries, err := ParseSeed(r)
	if err != nil {
		return nil, err
	}

	t := &Table{entries: make(map[tableKey][]int)}
	for _, e := range entries {
		if e.Key.Inversion != 0 {
			continue
		}
		offsets := make([]int, len(e.Pitches))
		for i, p := range e.Pitches {
			offsets[i] = int(p - e.Pitches[0])
		}
		if !slices.Equal(offsets, e.Key.Quality.Offsets()) {
			return nil, fmt.Errorf("%w: line %d: %s has offsets %v, want %v",
				ErrInvalidSeed, e.Line, e.Key, offsets, e.Key.Quality.Offsets())
		}
		t.entries[tableKey{e.Key.Root, e.Key.Quality}] = offsets
	}

	for _, root := range pitch.Classes() {
		for _, q := range ListQualities() {
			if _, ok := t.entries[tableKey{root, q}]; !ok {
				return nil, fmt.Errorf("%w: missing %s %s root position", ErrInvalidSeed, RootName(root), q)
			}
		}
	}

	for _, e := range entries {
		v, err := e.Key.Build(seedOctave)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSeed, e.Line, err)
		}
		if !slices.Equal(v.Pitches, e.Pitches) {
			return nil, fmt.Errorf("%w: line %d: %s is %v, derived %v",
				ErrInvalidSeed, e.Line, e.Key, e.Pitches, v.Pitches)
		}
	}
	return t, nil
}

// ParseSeed reads seed lines without validating them against the generator.
// Blank lines are skipped; any other line must read "<name>: <notes>".
func ParseSeed(r io.Reader) ([]SeedEntry, error) {
	var entries []SeedEntry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, notes, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: missing ':' in %q", ErrInvalidSeed, lineNo, line)
		}
		key, err := parseSeedName(strings.TrimSpace(name))
		if err != nil {
			return nil, seedLineError(lineNo, err)
		}
		entry := SeedEntry{Key: key, Line: lineNo}
		for _, n := range strings.Fields(notes) {
			p, err := pitch.ParsePitch(n)
			if err != nil {
				return nil, seedLineError(lineNo, err)
			}
			entry.Pitches = append(entry.Pitches, p)
		}
		if len(entry.Pitches) != key.Quality.Size() {
			return nil, fmt.Errorf("%w: line %d: %s has %d notes, want %d",
				ErrInvalidSeed, lineNo, key, len(entry.Pitches), key.Quality.Size())
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// seedLineError marks err as a seed error unless it already is one.
func seedLineError(lineNo int, err error) error {
	if errors.Is(err, ErrInvalidSeed) {
		return fmt.Errorf("line %d: %w", lineNo, err)
	}
	return fmt.Errorf("%w: line %d: %w", ErrInvalidSeed, lineNo, err)
}

// "C# major seventh 2nd inversion", "Bb minor root"
func parseSeedName(name string) (Key, error) {
	fields := strings.Fields(name)
	if len(fields) < 3 {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidSeed, name)
	}
	root, err := pitch.ParseNote(fields[0])
	if err != nil {
		return Key{}, err
	}

	var inversion int
	var qualityFields []string
	switch last := fields[len(fields)-1]; {
	case last == "root":
		qualityFields = fields[1 : len(fields)-1]
	case last == "inversion" && len(fields) >= 4:
		inversion, err = parseOrdinal(fields[len(fields)-2])
		if err != nil {
			return Key{}, fmt.Errorf("%w: %q: %v", ErrInvalidSeed, name, err)
		}
		qualityFields = fields[1 : len(fields)-2]
	default:
		return Key{}, fmt.Errorf("%w: %q: no position", ErrInvalidSeed, name)
	}

	quality, err := ParseQuality(strings.Join(qualityFields, " "))
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return Key{Root: root, Quality: quality, Inversion: inversion}, nil
}

// "1st" -> 1
func parseOrdinal(s string) (int, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("bad ordinal %q", s)
	}
	return strconv.Atoi(s[:len(s)-2])
}

// Offsets returns the root-position offsets stored for root and quality.
func (t *Table) Offsets(root pitch.Class, q Quality) ([]int, bool) {
	offs, ok := t.entries[tableKey{root, q}]
	if !ok {
		return nil, false
	}
	return append([]int(nil), offs...), true
}

// Len is the number of (root, quality) entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Voicing builds a voicing through the table, so only loaded pairs are playable.
func (t *Table) Voicing(k Key, baseOctave int) (Voicing, error) {
	if _, ok := t.entries[tableKey{k.Root, k.Quality}]; !ok {
		return Voicing{}, fmt.Errorf("no table entry for %s %s", RootName(k.Root), k.Quality)
	}
	return k.Build(baseOctave)
}

// Format writes every voicing in the seed layout, roots in ListRoots order.
// Notes are spelled with sharps.
func (t *Table) Format(w io.Writer, baseOctave int) error {
	for _, q := range ListQualities() {
		for _, root := range pitch.Classes() {
			for inv := 0; inv < q.Size(); inv++ {
				v, err := t.Voicing(Key{Root: root, Quality: q, Inversion: inv}, baseOctave)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "%s: %s\n", seedName(v.Key), strings.Join(v.Names(), " "))
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func seedName(k Key) string {
	position := "root"
	if k.Inversion > 0 {
		position = k.Position()
	}
	return fmt.Sprintf("%s %s %s", RootName(k.Root), k.Quality, position)
}
