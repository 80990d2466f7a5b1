package midi

import (
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/rapidmidiex/rmxchords/chord"
	"go.uber.org/zap"
)

// Replays requested within this window collapse into the last one.
const triggerDelay = 150 * time.Millisecond

// Speaker plays voicings on the default audio device.
type Speaker struct {
	player  *Player
	clip    time.Duration
	sr      beep.SampleRate
	trigger func(func())
	out     func(beep.Streamer)
	log     *zap.Logger

	mu sync.Mutex
}

// NewSpeaker opens the audio device. Each voicing sounds for clip.
func NewSpeaker(p *Player, clip time.Duration, log *zap.Logger) (*Speaker, error) {
	sr := beep.SampleRate(SampleRate)
	// Bigger -> less CPU, slower response
	if err := speaker.Init(sr, sr.N(time.Millisecond*20)); err != nil {
		return nil, err
	}
	return newSpeaker(p, clip, log, func(s beep.Streamer) {
		speaker.Clear()
		speaker.Play(s)
	}), nil
}

func newSpeaker(p *Player, clip time.Duration, log *zap.Logger, out func(beep.Streamer)) *Speaker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Speaker{
		player:  p,
		clip:    clip,
		sr:      beep.SampleRate(SampleRate),
		trigger: debounce.New(triggerDelay),
		out:     out,
		log:     log,
	}
}

// Trigger schedules v to play. Rapid repeated triggers play only the last voicing.
func (s *Speaker) Trigger(v chord.Voicing) {
	s.trigger(func() { s.Play(v) })
}

// Play renders v and starts it immediately, cutting off anything still sounding.
func (s *Speaker) Play(v chord.Voicing) {
	s.mu.Lock()
	defer s.mu.Unlock()

	streamer := NewMIDIStreamer(s.clip)
	s.player.Render(v, streamer)
	s.log.Debug("play chord", zap.Stringer("voicing", v.Key), zap.Strings("notes", v.Names()))
	s.out(beep.Take(s.sr.N(s.clip), streamer))
}

func (s *Speaker) Close() {
	speaker.Close()
}
