package midi

import (
	"fmt"
	"io"
	"sort"

	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/vpiano"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerQuarter = 96
	ticksPerBar     = 4 * ticksPerQuarter
)

// WriteSMF writes one track with each voicing held for a bar, in order.
func WriteSMF(w io.Writer, voicings []chord.Voicing, velocity uint8) error {
	if velocity == 0 || velocity > 127 {
		velocity = DefaultVelocity
	}
	var tr smf.Track
	for _, v := range voicings {
		var keys []uint8
		for _, p := range v.Pitches {
			key := p.MIDI()
			if !vpiano.InRange(key) {
				return fmt.Errorf("export %s: %s is outside the piano range", v.Key, p)
			}
			keys = append(keys, uint8(key))
		}
		for _, key := range keys {
			tr.Add(0, gomidi.NoteOn(0, key, velocity))
		}
		for i, key := range keys {
			var delta uint32
			if i == 0 {
				delta = ticksPerBar
			}
			tr.Add(delta, gomidi.NoteOff(0, key))
		}
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	if err := s.Add(tr); err != nil {
		return err
	}
	_, err := s.WriteTo(w)
	return err
}

// ReadChords groups the notes of a MIDI file by start time and returns each
// group as ascending pitches.
func ReadChords(r io.Reader) (chords [][]pitch.Pitch, err error) {
	// smf.ReadFrom can panic on truncated input
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if rec := recover(); rec != nil {
			chords, err = nil, recoveredError(rec)
		}
	}()

	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("parse midi file: %w", err)
	}

	starts := make(map[int64][]pitch.Pitch)
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			if event.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0 {
				starts[absTicks] = append(starts[absTicks], pitch.FromMIDI(int(key)))
			}
		}
	}

	ticks := make([]int64, 0, len(starts))
	for t := range starts {
		ticks = append(ticks, t)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	for _, t := range ticks {
		ps := starts[t]
		sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
		chords = append(chords, ps)
	}
	return chords, nil
}

func recoveredError(rec any) error {
	switch v := rec.(type) {
	case error:
		return fmt.Errorf("parse midi file: %w", v)
	case string:
		return fmt.Errorf("parse midi file: %s", v)
	default:
		return fmt.Errorf("parse midi file: %v", v)
	}
}
