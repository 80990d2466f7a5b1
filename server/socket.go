package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/rmxerr"
	"github.com/rapidmidiex/rmxchords/wsmsg"
	"go.uber.org/zap"
)

var errUnknownMessage = errors.New("unknown message type")

// handleQuizSocket sends the current question, then answers ANSWER with
// FEEDBACK and NEXT with QUESTION until the client goes away. The session is
// discarded when its socket closes.
func (s *Server) handleQuizSocket(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_session_id", Message: err.Error()})
		return
	}
	sess, ok := s.session(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "unknown_session", Message: "no quiz " + id.String()})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		s.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	s.trackConn(conn)
	defer func() {
		s.forgetConn(conn)
		s.dropSession(id)
		conn.Close()
	}()
	log := s.log.With(zap.Stringer("session", id))
	log.Info("quiz socket opened")

	sess.mu.Lock()
	first := questionMsg(sess.quiz)
	sess.mu.Unlock()
	if err := s.send(conn, wsmsg.QUESTION, id, first); err != nil {
		log.Warn("send question", zap.Error(err))
		return
	}

	for {
		var message wsmsg.Envelope
		if err := conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("readJSON: unexpected close", zap.Error(err))
			}
			log.Info("quiz socket closed")
			return
		}

		typ, payload, err := s.handleMessage(r.Context(), sess, message)
		if err != nil {
			if rmxerr.Classify(err) != rmxerr.Recoverable {
				log.Error("quiz message", zap.Stringer("type", message.Typ), zap.Error(err))
			}
			typ, payload = wsmsg.ERROR, wsmsg.ErrorMsg{Code: rmxerr.Code(err), Message: err.Error()}
		}
		if err := s.send(conn, typ, id, payload); err != nil {
			log.Warn("send", zap.Stringer("type", typ), zap.Error(err))
			return
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, sess *session, message wsmsg.Envelope) (wsmsg.MsgType, any, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch message.Typ {
	case wsmsg.ANSWER:
		var answer wsmsg.AnswerMsg
		if err := message.Unwrap(&answer); err != nil {
			return 0, nil, fmt.Errorf("unmarshal AnswerMsg: %w", err)
		}
		fb, err := sess.quiz.Submit(answer.Key)
		if err != nil {
			return 0, nil, err
		}
		if s.history != nil {
			if _, err := s.history.RecordAnswer(ctx, sess.quiz.ID, fb, time.Now()); err != nil {
				// The answer still counts for the session.
				s.log.Error("record answer", zap.Stringer("session", sess.quiz.ID), zap.Error(err))
			}
		}
		return wsmsg.FEEDBACK, feedbackMsg(fb, sess.quiz), nil

	case wsmsg.NEXT:
		if _, err := sess.quiz.Next(); err != nil {
			return 0, nil, err
		}
		return wsmsg.QUESTION, questionMsg(sess.quiz), nil
	}
	return 0, nil, fmt.Errorf("%w: %s", errUnknownMessage, message.Typ)
}

func (s *Server) send(conn *websocket.Conn, typ wsmsg.MsgType, id uuid.UUID, payload any) error {
	e, err := wsmsg.New(typ, id, payload)
	if err != nil {
		return err
	}
	return conn.WriteJSON(e)
}

// questionMsg hides whatever would give the answer away in the session's mode.
func questionMsg(qs *quiz.Session) wsmsg.QuestionMsg {
	q := qs.Question()
	msg := wsmsg.QuestionMsg{Number: q.Number, Mode: qs.Mode.String()}
	switch qs.Mode {
	case quiz.ModeNotes:
		msg.Notes = q.Voicing.Names()
		msg.Prompt = strings.Join(msg.Notes, " ")
	case quiz.ModeDiagram:
		msg.Keys = midiKeys(q.Voicing)
		msg.Prompt = "Which chord is this?"
	case quiz.ModeName:
		msg.Prompt = q.Voicing.Key.String()
	}
	for i, c := range q.Choices {
		choice := wsmsg.ChoiceMsg{Key: c.Key, Label: c.Key.String()}
		if qs.Mode == quiz.ModeName {
			choice.Label = string(rune('A' + i))
			choice.Keys = midiKeys(c.Voicing)
		}
		msg.Choices = append(msg.Choices, choice)
	}
	return msg
}

func feedbackMsg(fb quiz.Feedback, qs *quiz.Session) wsmsg.FeedbackMsg {
	return wsmsg.FeedbackMsg{
		Correct:       fb.Correct,
		Answer:        fb.Answer,
		Expected:      fb.Expected,
		ExpectedName:  fb.Expected.String(),
		PitchSetMatch: fb.PitchSetMatch,
		ElapsedMS:     fb.Elapsed.Milliseconds(),
		Score:         qs.Tally().String(),
	}
}

func midiKeys(v chord.Voicing) []int {
	keys := make([]int, len(v.Pitches))
	for i, p := range v.Pitches {
		keys[i] = p.MIDI()
	}
	return keys
}
