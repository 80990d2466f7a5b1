// Package server exposes the voicing engine over HTTP and runs remote quiz
// sessions over websockets.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rapidmidiex/rmxchords/config"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/rmxerr"
	"github.com/rapidmidiex/rmxchords/store"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type (
	Options struct {
		Logger *zap.Logger
		// Optional; answers are not recorded without it.
		History *store.Store
		// Defaults for POST /api/v1/quiz.
		Quiz        config.QuizConfig
		CORSOrigins []string
	}

	Server struct {
		handler  http.Handler
		log      *zap.Logger
		history  *store.Store
		defaults config.QuizConfig
		upgrader websocket.Upgrader

		mu       sync.Mutex
		sessions map[uuid.UUID]*session
		conns    map[*websocket.Conn]struct{}
	}

	// session serialises access to a quiz shared by HTTP and socket handlers.
	session struct {
		mu   sync.Mutex
		quiz *quiz.Session
	}

	errorBody struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
)

func New(o Options) *Server {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	s := &Server{
		log:      o.Logger,
		history:  o.History,
		defaults: o.Quiz,
		sessions: make(map[uuid.UUID]*session),
		conns:    make(map[*websocket.Conn]struct{}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin(o.CORSOrigins)}

	router := mux.NewRouter().StrictSlash(true)
	router.Use(s.logRequests)
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/qualities", s.handleQualities).Methods(http.MethodGet)
	api.HandleFunc("/roots", s.handleRoots).Methods(http.MethodGet)
	api.HandleFunc("/voicing", s.handleVoicing).Methods(http.MethodGet)
	api.HandleFunc("/layout", s.handleLayout).Methods(http.MethodGet)
	api.HandleFunc("/quiz", s.handleNewQuiz).Methods(http.MethodPost)
	api.HandleFunc("/history/weakest", s.handleWeakest).Methods(http.MethodGet)
	router.HandleFunc("/ws/quiz/{id}", s.handleQuizSocket)

	s.handler = cors.New(cors.Options{
		AllowedOrigins: o.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close drops every open quiz socket.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
	}
}

func (s *Server) addSession(q *quiz.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[q.ID] = &session{quiz: q}
}

func (s *Server) session(id uuid.UUID) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) dropSession(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Server) trackConn(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) forgetConn(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers 422 for requests the engine rejects, 500 otherwise.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if rmxerr.Classify(err) == rmxerr.Recoverable {
		status = http.StatusUnprocessableEntity
	} else {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorBody{Code: rmxerr.Code(err), Message: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		// The upgrader needs the original writer to hijack.
		if websocket.IsWebSocketUpgrade(r) {
			s.log.Info("socket", zap.String("path", r.URL.Path))
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)),
		)
	})
}
