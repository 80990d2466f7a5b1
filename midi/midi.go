// Package midi renders chord voicings to audio through a SoundFont synthesizer
// and writes them to Standard MIDI Files.
package midi

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/vpiano"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

const (
	SampleRate      = 44100
	DefaultVelocity = 100
)

var ErrNoSoundFont = errors.New("no SoundFont configured")

type (
	// synthesizer is the part of meltysynth.Synthesizer the player drives.
	synthesizer interface {
		NoteOn(channel, key, vel int32)
		NoteOff(channel, key int32)
		Render(left, right []float32)
	}

	Player struct {
		synth    synthesizer
		velocity int32
	}

	NewPlayerOpts struct {
		// Path of the .sf2 file to load.
		SoundFontPath string
		// MIDI velocity (1-127) for every chord tone.
		Velocity int
	}

	MidiStreamer struct {
		pos   int
		left  []float32
		right []float32
	}
)

// newSynthesizer is swapped out in tests.
var newSynthesizer = func(sf *meltysynth.SoundFont, settings *meltysynth.SynthesizerSettings) (synthesizer, error) {
	return meltysynth.NewSynthesizer(sf, settings)
}

func NewPlayer(o NewPlayerOpts) (*Player, error) {
	if o.SoundFontPath == "" {
		return nil, ErrNoSoundFont
	}
	sf2, err := os.Open(o.SoundFontPath)
	if err != nil {
		return nil, fmt.Errorf("open soundfont: %w", err)
	}
	defer sf2.Close()

	soundFont, err := meltysynth.NewSoundFont(sf2)
	if err != nil {
		return nil, fmt.Errorf("load soundfont %s: %w", o.SoundFontPath, err)
	}

	settings := meltysynth.NewSynthesizerSettings(SampleRate)
	synth, err := newSynthesizer(soundFont, settings)
	if err != nil {
		return nil, fmt.Errorf("create synthesizer: %w", err)
	}
	return newPlayer(synth, o.Velocity), nil
}

func newPlayer(synth synthesizer, velocity int) *Player {
	if velocity < 1 || velocity > 127 {
		velocity = DefaultVelocity
	}
	return &Player{synth: synth, velocity: int32(velocity)}
}

// Render strikes every pitch of v together and writes the audio to the
// streamer's buffers. Pitches outside the piano range are skipped.
func (p *Player) Render(v chord.Voicing, streamer *MidiStreamer) {
	var keys []int32
	for _, pt := range v.Pitches {
		if key := pt.MIDI(); vpiano.InRange(key) {
			keys = append(keys, int32(key))
		}
	}
	for _, key := range keys {
		p.synth.NoteOn(0, key, p.velocity)
	}

	// Render the waveform.
	p.synth.Render(streamer.left, streamer.right)

	for _, key := range keys {
		p.synth.NoteOff(0, key)
	}
}

func NewMIDIStreamer(clipLength time.Duration) *MidiStreamer {
	bufLen := int(SampleRate * clipLength.Seconds())
	return &MidiStreamer{
		left:  make([]float32, bufLen),
		right: make([]float32, bufLen),
	}
}

// Stream implements beep.Streamer.
func (ms *MidiStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	left := make([]float32, len(samples))
	right := make([]float32, len(samples))

	n, _ = ms.Read(left, right)

	for i := 0; i < n; i++ {
		samples[i][0] = float64(left[i])
		samples[i][1] = float64(right[i])
	}
	return n, n > 0
}

// Len returns the total number of samples of the Streamer.
func (ms MidiStreamer) Len() int {
	// left and right have the same length
	return len(ms.left)
}

// Position returns the current position of the Streamer.
func (ms MidiStreamer) Position() int {
	return ms.pos
}

// Seek sets the position of the Streamer to the provided value.
func (ms *MidiStreamer) Seek(p int) error {
	if p < 0 || p > len(ms.left) {
		return fmt.Errorf("p is out of range: %d", p)
	}
	ms.pos = p
	return nil
}

func (ms MidiStreamer) Err() error {
	return nil
}

// Read copies from the current position into outLeft/outRight and advances it.
// It stops early at the end of the buffers.
func (ms *MidiStreamer) Read(outLeft, outRight []float32) (int, error) {
	n := copy(outLeft, ms.left[ms.pos:])
	copy(outRight[:n], ms.right[ms.pos:])
	ms.pos += n
	if n < len(outLeft) {
		return n, fmt.Errorf("read past end of clip at %d", ms.pos)
	}
	return n, nil
}
