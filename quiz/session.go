// Package quiz runs a chord-recognition session: draw a voicing, offer a few
// names (or diagrams) for it, check the answer, repeat.
package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/score"
)

var (
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrNotAnswered     = errors.New("question not answered yet")
	ErrUnknownChoice   = errors.New("answer is not one of the offered choices")
)

// DefaultChoices is the number of options offered per question.
const DefaultChoices = 4

type (
	State int

	// Picker is the source of randomness, satisfied by *rand.Rand.
	Picker interface {
		Intn(n int) int
	}

	Choice struct {
		Key chord.Key `json:"key"`
		// Fitted to the session window, for drawing diagrams.
		Voicing chord.Voicing `json:"-"`
	}

	Question struct {
		Number  int           `json:"number"`
		Voicing chord.Voicing `json:"-"`
		Choices []Choice      `json:"choices"`
		AskedAt time.Time     `json:"askedAt"`
	}

	Feedback struct {
		Correct  bool      `json:"correct"`
		Answer   chord.Key `json:"answer"`
		Expected chord.Key `json:"expected"`
		// The answer has the same pitch classes as the expected chord, as a
		// wrong inversion does. Reported only; it is still wrong.
		PitchSetMatch bool          `json:"pitchSetMatch"`
		Elapsed       time.Duration `json:"elapsed"`
	}

	Session struct {
		ID   uuid.UUID
		Mode Mode

		selection  Selection
		candidates []chord.Key
		choices    int
		picker     Picker
		now        func() time.Time

		state    State
		question Question
		feedback Feedback
		tally    score.Tally
		times    []time.Duration
	}

	Option func(*Session)
)

const (
	AwaitingAnswer State = iota
	Answered
)

func (s State) String() string {
	if s == Answered {
		return "answered"
	}
	return "awaiting answer"
}

func WithMode(m Mode) Option {
	return func(s *Session) { s.Mode = m }
}

// WithChoices sets the options per question. It is clamped to the number of
// candidates.
func WithChoices(n int) Option {
	return func(s *Session) { s.choices = n }
}

func WithPicker(p Picker) Option {
	return func(s *Session) { s.picker = p }
}

// WithSeed makes the question sequence reproducible.
func WithSeed(seed int64) Option {
	return WithPicker(rand.New(rand.NewSource(seed)))
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithID(id uuid.UUID) Option {
	return func(s *Session) { s.ID = id }
}

// NewSession validates sel and draws the first question.
func NewSession(sel Selection, opts ...Option) (*Session, error) {
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	s := &Session{
		ID:         uuid.New(),
		Mode:       ModeNotes,
		selection:  sel,
		candidates: sel.Candidates(),
		choices:    DefaultChoices,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.picker == nil {
		s.picker = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.choices < 1 {
		s.choices = 1
	}
	if s.choices > len(s.candidates) {
		s.choices = len(s.candidates)
	}

	if err := s.draw(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Question() Question {
	return s.question
}

func (s *Session) Selection() Selection {
	return s.selection
}

// Feedback returns the result of the last answer while the session is Answered.
func (s *Session) Feedback() (Feedback, bool) {
	return s.feedback, s.state == Answered
}

func (s *Session) Tally() score.Tally {
	return s.tally
}

// AnswerTimes returns the time taken for each answer so far.
func (s *Session) AnswerTimes() []time.Duration {
	return append([]time.Duration(nil), s.times...)
}

// Submit checks answer against the current voicing's key. Identical notes
// under a different key are wrong.
func (s *Session) Submit(answer chord.Key) (Feedback, error) {
	if s.state == Answered {
		return Feedback{}, ErrAlreadyAnswered
	}
	var picked *Choice
	for i := range s.question.Choices {
		if s.question.Choices[i].Key == answer {
			picked = &s.question.Choices[i]
			break
		}
	}
	if picked == nil {
		return Feedback{}, fmt.Errorf("%w: %s", ErrUnknownChoice, answer)
	}

	expected := chord.IdentityKey(s.question.Voicing)
	fb := Feedback{
		Correct:  answer == expected,
		Answer:   answer,
		Expected: expected,
		Elapsed:  s.now().Sub(s.question.AskedAt),
	}
	if !fb.Correct {
		fb.PitchSetMatch = chord.ClassSetKey(picked.Voicing) == chord.ClassSetKey(s.question.Voicing)
	}

	s.tally.Record(fb.Correct)
	s.times = append(s.times, fb.Elapsed)
	s.feedback = fb
	s.state = Answered
	return fb, nil
}

// Next clears the feedback and draws a new question.
func (s *Session) Next() (Question, error) {
	if s.state != Answered {
		return Question{}, ErrNotAnswered
	}
	if err := s.draw(); err != nil {
		return Question{}, err
	}
	return s.question, nil
}

func (s *Session) draw() error {
	answer := s.candidates[s.picker.Intn(len(s.candidates))]
	v, err := s.selection.Voicing(answer)
	if err != nil {
		return fmt.Errorf("draw %s: %w", answer, err)
	}

	others := make([]chord.Key, 0, len(s.candidates)-1)
	for _, k := range s.candidates {
		if k != answer {
			others = append(others, k)
		}
	}
	// Partial Fisher-Yates: the first choices-1 slots end up a uniform sample.
	for i := 0; i < s.choices-1; i++ {
		j := i + s.picker.Intn(len(others)-i)
		others[i], others[j] = others[j], others[i]
	}
	keys := append(others[:s.choices-1:s.choices-1], answer)
	for i := len(keys) - 1; i > 0; i-- {
		j := s.picker.Intn(i + 1)
		keys[i], keys[j] = keys[j], keys[i]
	}

	choices := make([]Choice, len(keys))
	for i, k := range keys {
		cv, err := s.selection.Voicing(k)
		if err != nil {
			return fmt.Errorf("draw %s: %w", k, err)
		}
		choices[i] = Choice{Key: k, Voicing: cv}
	}

	s.question = Question{
		Number:  s.question.Number + 1,
		Voicing: v,
		Choices: choices,
		AskedAt: s.now(),
	}
	s.feedback = Feedback{}
	s.state = AwaitingAnswer
	return nil
}
