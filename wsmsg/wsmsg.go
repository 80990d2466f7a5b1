// Package wsmsg contains the message types exchanged over a quiz websocket.
package wsmsg

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rapidmidiex/rmxchords/chord"
)

type (
	MsgType int

	Envelope struct {
		// Message identifier
		ID uuid.UUID `json:"id"`
		// QUESTION | ANSWER | FEEDBACK | NEXT | ERROR
		Typ MsgType `json:"type"`
		// Quiz session the message belongs to.
		SessionID uuid.UUID `json:"sessionId"`
		// Actual message data.
		Payload json.RawMessage `json:"payload"`
	}

	ChoiceMsg struct {
		Key   chord.Key `json:"key"`
		Label string    `json:"label"`
		// MIDI note numbers of the fitted voicing, for drawing diagrams.
		Keys []int `json:"keys"`
	}

	QuestionMsg struct {
		Number int    `json:"number"`
		Mode   string `json:"mode"`
		// Chord name in "name" mode, spelled notes otherwise.
		Prompt  string      `json:"prompt"`
		Notes   []string    `json:"notes,omitempty"`
		Keys    []int       `json:"keys,omitempty"`
		Choices []ChoiceMsg `json:"choices"`
	}

	AnswerMsg struct {
		Key chord.Key `json:"key"`
	}

	FeedbackMsg struct {
		Correct       bool      `json:"correct"`
		Answer        chord.Key `json:"answer"`
		Expected      chord.Key `json:"expected"`
		ExpectedName  string    `json:"expectedName"`
		PitchSetMatch bool      `json:"pitchSetMatch"`
		ElapsedMS     int64     `json:"elapsedMs"`
		Score         string    `json:"score"`
	}

	ErrorMsg struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
)

const (
	QUESTION MsgType = iota
	ANSWER
	FEEDBACK
	NEXT
	ERROR
)

var typeNames = []string{"question", "answer", "feedback", "next", "error"}

// New wraps payload in an envelope with a fresh ID.
func New(typ MsgType, sessionID uuid.UUID, payload any) (Envelope, error) {
	e := Envelope{ID: uuid.New(), Typ: typ, SessionID: sessionID}
	if payload == nil {
		payload = struct{}{}
	}
	if err := e.SetPayload(payload); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

func (e *Envelope) SetPayload(payload any) error {
	p, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	e.Payload = p
	return nil
}

func (e *Envelope) Unwrap(msg any) error {
	return json.Unmarshal(e.Payload, msg)
}

func (t MsgType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("MsgType(%d)", int(t))
	}
	return typeNames[t]
}

func (t *MsgType) UnmarshalJSON(data []byte) error {
	var rawType string
	err := json.Unmarshal(data, &rawType)
	if err != nil {
		return err
	}

	for i, name := range typeNames {
		if name == rawType {
			*t = MsgType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown type: %s", rawType)
}

func (t MsgType) MarshalJSON() ([]byte, error) {
	if t < 0 || int(t) >= len(typeNames) {
		return []byte{}, fmt.Errorf("unknown MsgTyp value: %d", t)
	}
	return json.Marshal(typeNames[t])
}
