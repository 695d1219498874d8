// Package http exposes a wizard over a JSON REST API. State lives in the
// session manager's store; every request is a full load-operate-save round
// trip, so the server itself stays stateless and replicable.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/stile/internal/logging"
	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/ports"
	"github.com/aretw0/stile/pkg/session"
)

// Server wires a wizard engine, a session manager and optional collaborators
// into an HTTP handler.
type Server struct {
	engine    ports.WizardEngine
	sessions  *session.Manager
	suggester ports.Suggester
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSuggester exposes address suggestions at /addresses/suggest.
func WithSuggester(s ports.Suggester) Option {
	return func(srv *Server) { srv.suggester = s }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(srv *Server) {
		if logger != nil {
			srv.logger = logger
		}
	}
}

// NewServer creates the server.
func NewServer(engine ports.WizardEngine, sessions *session.Manager, opts ...Option) *Server {
	srv := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// NewHandler creates an HTTP handler for the wizard.
func NewHandler(engine ports.WizardEngine, sessions *session.Manager, opts ...Option) http.Handler {
	srv := NewServer(engine, sessions, opts...)
	r := chi.NewRouter()

	r.Get("/healthz", srv.Health)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", srv.CreateSession)
		r.Get("/", srv.ListSessions)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", srv.GetSession)
			r.Delete("/", srv.DeleteSession)
			r.Post("/answer", srv.Answer)
			r.Post("/back", srv.Back)
			r.Post("/jump", srv.Jump)
			r.Put("/values/{field}", srv.SetValue)
		})
	})

	if srv.suggester != nil {
		r.Get("/addresses/suggest", srv.Suggest)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionResponse is the uniform reply for every session operation: where
// the session is now, how the last input fared, and the terminal result.
type sessionResponse struct {
	SessionID   string           `json:"session_id"`
	View        *domain.StepView `json:"view,omitempty"`
	Outcome     *domain.Outcome  `json:"outcome,omitempty"`
	Values      domain.Values    `json:"values"`
	Status      domain.Status    `json:"status"`
	Submitted   bool             `json:"submitted"`
	SubmitError string           `json:"submit_error,omitempty"`
	Record      *domain.Record   `json:"record,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, state *domain.State, outcome *domain.Outcome) {
	resp := sessionResponse{
		SessionID:   state.SessionID,
		Outcome:     outcome,
		Values:      state.Values,
		Status:      state.Status,
		Submitted:   state.Submitted(),
		SubmitError: state.SubmitError,
		Record:      state.Record,
	}

	if !state.Submitted() {
		view, err := s.engine.Render(r.Context(), state)
		if err != nil {
			s.fail(w, err)
			return
		}
		resp.View = &view
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// fail maps engine errors onto HTTP statuses. Concurrency rejections are
// conflicts, not server faults.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrStepNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrCheckPending), errors.Is(err, domain.ErrSubmitInFlight):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSubmitted):
		status = http.StatusGone
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type createSessionRequest struct {
	SessionID string `json:"session_id"`
}

// CreateSession handles POST /sessions. Reuses an existing session when the
// given ID is already known, so clients can resume interrupted signups.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	sessionID := body.SessionID
	if sessionID == "" {
		sessionID = newSessionID()
	}

	state, err := s.sessions.LoadOrStart(r.Context(), sessionID, s.engine.Catalog())
	if err != nil {
		s.fail(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	s.respond(w, r, state, nil)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"sessions": ids})
}

// GetSession handles GET /sessions/{sessionID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, r, state, nil)
}

// DeleteSession handles DELETE /sessions/{sessionID}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type answerRequest struct {
	Input any `json:"input"`
}

// Answer handles POST /sessions/{sessionID}/answer: applies the input and
// advances (or submits on the terminal step).
func (s *Server) Answer(w http.ResponseWriter, r *http.Request) {
	var body answerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.operate(w, r, func(state *domain.State) (*domain.State, *domain.Outcome, error) {
		next, outcome, err := s.engine.Next(r.Context(), state, body.Input)
		return next, &outcome, err
	})
}

// Back handles POST /sessions/{sessionID}/back.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	s.operate(w, r, func(state *domain.State) (*domain.State, *domain.Outcome, error) {
		next, err := s.engine.Back(r.Context(), state)
		return next, nil, err
	})
}

type jumpRequest struct {
	StepID string `json:"step_id"`
}

// Jump handles POST /sessions/{sessionID}/jump.
func (s *Server) Jump(w http.ResponseWriter, r *http.Request) {
	var body jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.operate(w, r, func(state *domain.State) (*domain.State, *domain.Outcome, error) {
		next, outcome, err := s.engine.JumpTo(r.Context(), state, body.StepID)
		return next, &outcome, err
	})
}

type setValueRequest struct {
	Value any `json:"value"`
}

// SetValue handles PUT /sessions/{sessionID}/values/{field}: writes one
// field without navigating (edit-in-review).
func (s *Server) SetValue(w http.ResponseWriter, r *http.Request) {
	var body setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	field := chi.URLParam(r, "field")
	s.operate(w, r, func(state *domain.State) (*domain.State, *domain.Outcome, error) {
		next, err := s.engine.SetValue(state, field, body.Value)
		return next, nil, err
	})
}

// operate runs one engine operation under the session lock: load, apply,
// persist, respond. Concurrent requests for the same session serialize here.
func (s *Server) operate(w http.ResponseWriter, r *http.Request, fn func(*domain.State) (*domain.State, *domain.Outcome, error)) {
	sessionID := chi.URLParam(r, "sessionID")

	var next *domain.State
	var outcome *domain.Outcome

	err := s.sessions.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		state, err := s.sessions.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}

		next, outcome, err = fn(state)
		if err != nil {
			return err
		}

		return s.sessions.Store().Save(ctx, sessionID, next)
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	s.respond(w, r, next, outcome)
}

// Suggest handles GET /addresses/suggest?q=.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Missing query parameter q", http.StatusBadRequest)
		return
	}

	suggestions, err := s.suggester.Suggest(r.Context(), query)
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"suggestions": suggestions})
}

func newSessionID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
