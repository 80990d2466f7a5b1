package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/config"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/vpiano"
	"github.com/rapidmidiex/rmxchords/wsmsg"
	"go.uber.org/zap"
)

type (
	qualityJSON struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Offsets []int  `json:"offsets"`
	}

	voicingJSON struct {
		Key   chord.Key `json:"key"`
		Name  string    `json:"name"`
		Notes []string  `json:"notes"`
		MIDI  []int     `json:"midi"`
	}

	keyJSON struct {
		Note    string  `json:"note"`
		MIDI    int     `json:"midi"`
		Ordinal int     `json:"ordinal"`
		X       float64 `json:"x"`
	}

	layoutJSON struct {
		Window     string    `json:"window"`
		WhiteCount int       `json:"whiteCount"`
		Whites     []keyJSON `json:"whites"`
		Blacks     []keyJSON `json:"blacks"`
	}

	newQuizRequest struct {
		config.QuizConfig
		Seed *int64 `json:"seed"`
	}

	newQuizResponse struct {
		ID       string            `json:"id"`
		Question wsmsg.QuestionMsg `json:"question"`
	}

	weakestJSON struct {
		Key          chord.Key `json:"key"`
		Name         string    `json:"name"`
		Attempts     int       `json:"attempts"`
		Correct      int       `json:"correct"`
		Accuracy     float64   `json:"accuracy"`
		AvgElapsedMS int64     `json:"avgElapsedMs"`
	}
)

func (s *Server) handleQualities(w http.ResponseWriter, r *http.Request) {
	var res []qualityJSON
	for _, q := range chord.ListQualities() {
		res = append(res, qualityJSON{ID: q.ID(), Name: q.String(), Offsets: q.Offsets()})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRoots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, chord.ListRoots())
}

// GET /voicing?root=A&quality=minor&inversion=1&octave=4[&low=C3&high=C5]
func (s *Server) handleVoicing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	root, err := pitch.ParseNote(q.Get("root"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	quality, err := chord.ParseQuality(q.Get("quality"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_quality", Message: err.Error()})
		return
	}
	inversion, err := intParam(q.Get("inversion"), 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_inversion", Message: err.Error()})
		return
	}
	octave, err := intParam(q.Get("octave"), 4)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_octave", Message: err.Error()})
		return
	}

	v, err := chord.BuildVoicing(root, quality, inversion, octave)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if q.Get("low") != "" || q.Get("high") != "" {
		window, err := windowParams(q.Get("low"), q.Get("high"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if v, err = chord.FitToWindow(v, window); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toVoicingJSON(v))
}

// GET /layout?low=C3&high=C5
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	window, err := windowParams(r.URL.Query().Get("low"), r.URL.Query().Get("high"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l := vpiano.Layout(window)
	res := layoutJSON{Window: window.String(), WhiteCount: l.WhiteCount}
	for _, n := range window.Notes() {
		if n.IsAccidental {
			x, _ := l.BlackX(n.Pitch)
			res.Blacks = append(res.Blacks, keyJSON{Note: n.Pitch.String(), MIDI: n.MIDI, Ordinal: l.Blacks[n.Pitch], X: x})
			continue
		}
		ord := l.Whites[n.Pitch]
		res.Whites = append(res.Whites, keyJSON{Note: n.Pitch.String(), MIDI: n.MIDI, Ordinal: ord, X: float64(ord)})
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /quiz with an optional body overriding the configured quiz defaults.
func (s *Server) handleNewQuiz(w http.ResponseWriter, r *http.Request) {
	req := newQuizRequest{QuizConfig: s.defaults}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_body", Message: err.Error()})
		return
	}

	sel, err := req.Selection()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := req.Options()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_mode", Message: err.Error()})
		return
	}
	if req.Seed != nil {
		opts = append(opts, quiz.WithSeed(*req.Seed))
	}
	qs, err := quiz.NewSession(sel, opts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.addSession(qs)
	s.log.Info("quiz created",
		zap.Stringer("session", qs.ID),
		zap.Stringer("mode", qs.Mode),
		zap.Int("candidates", len(sel.Candidates())),
	)
	writeJSON(w, http.StatusCreated, newQuizResponse{
		ID:       qs.ID.String(),
		Question: questionMsg(qs),
	})
}

// GET /history/weakest?limit=5&min=3
func (s *Server) handleWeakest(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Code: "history_disabled", Message: "answer history is disabled"})
		return
	}
	limit, err := intParam(r.URL.Query().Get("limit"), 5)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_limit", Message: err.Error()})
		return
	}
	minAttempts, err := intParam(r.URL.Query().Get("min"), 1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_min", Message: err.Error()})
		return
	}

	stats, err := s.history.WeakestChords(r.Context(), limit, minAttempts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res := make([]weakestJSON, 0, len(stats))
	for _, ks := range stats {
		res = append(res, weakestJSON{
			Key:          ks.Key,
			Name:         ks.Key.String(),
			Attempts:     ks.Attempts,
			Correct:      ks.Correct,
			Accuracy:     ks.Accuracy(),
			AvgElapsedMS: ks.AvgElapsed.Milliseconds(),
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func toVoicingJSON(v chord.Voicing) voicingJSON {
	res := voicingJSON{Key: v.Key, Name: v.Key.String(), Notes: v.Names()}
	for _, p := range v.Pitches {
		res.MIDI = append(res.MIDI, p.MIDI())
	}
	return res
}

func windowParams(low, high string) (vpiano.Window, error) {
	if low == "" && high == "" {
		return vpiano.DefaultWindow, nil
	}
	if low == "" {
		low = vpiano.DefaultWindow.Low.String()
	}
	if high == "" {
		high = vpiano.DefaultWindow.High.String()
	}
	return vpiano.ParseWindow(low, high)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return n, nil
}
