package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/sortvis"
	"github.com/aretw0/sortvis/internal/logging"
	"github.com/aretw0/sortvis/pkg/docs"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/aretw0/sortvis/pkg/ports"
	"github.com/aretw0/sortvis/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server exposes the session manager over HTTP.
type Server struct {
	Sessions *session.Manager
	Bus      ports.FrameBus
	Docs     *docs.Catalog

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithDocs serves c instead of the built-in documentation.
func WithDocs(c *docs.Catalog) Option {
	return func(s *Server) {
		s.Docs = c
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// CreateSessionRequest is the optional body of POST /sessions.
type CreateSessionRequest struct {
	ID        string `json:"id,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
	Size      *int   `json:"size,omitempty"`
	Speed     *int   `json:"speed,omitempty"`
	Values    []int  `json:"values,omitempty"`
}

// SessionResponse is the state of one session.
type SessionResponse struct {
	ID         string       `json:"id"`
	SpeedLabel string       `json:"speed_label"`
	Frame      domain.Frame `json:"frame"`
}

// SessionList is the body of GET /sessions.
type SessionList struct {
	Sessions []string `json:"sessions"`
}

// NewServer creates a Server. Frames of the sessions built by sessions must be
// published on bus for /events to see them.
func NewServer(sessions *session.Manager, bus ports.FrameBus, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		Bus:      bus,
		Docs:     docs.New(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for sessions.
func NewHandler(sessions *session.Manager, bus ports.FrameBus, opts ...Option) http.Handler {
	return NewServer(sessions, bus, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(RawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Get("/events", s.SubscribeEvents)

			r.Post("/start", s.control("start", func(_ context.Context, sess *sortvis.Session) (bool, error) {
				return sess.Start(), nil
			}))
			r.Post("/pause", s.control("pause", func(_ context.Context, sess *sortvis.Session) (bool, error) {
				return sess.Pause(), nil
			}))
			r.Post("/resume", s.control("resume", func(_ context.Context, sess *sortvis.Session) (bool, error) {
				return sess.Resume(), nil
			}))
			r.Post("/regenerate", s.control("regenerate", func(_ context.Context, sess *sortvis.Session) (bool, error) {
				return sess.Regenerate(), nil
			}))
			r.Post("/reset", s.control("reset", func(ctx context.Context, sess *sortvis.Session) (bool, error) {
				return true, sess.HardReset(ctx)
			}))

			r.Put("/algorithm", s.SetAlgorithm)
			r.Put("/size", s.SetSize)
			r.Put("/speed", s.SetSpeed)
			r.Put("/array", s.LoadArray)
		})
	})

	r.Get("/docs", s.ListDocs)
	r.Get("/docs/{algorithm}", s.GetDoc)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>sortvis API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "sortvis-http",
		"version":     strings.TrimSpace(sortvis.Version),
		"api_version": apiVersion,
	})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, SessionList{Sessions: s.Sessions.List(r.Context())})
}

// CreateSession handles the POST /sessions request. An existing ID is returned as is
// with 200; a new session is configured from the body and returned with 201.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
			return
		}
	}
	if body.Algorithm != "" {
		if _, err := domain.ParseAlgorithm(body.Algorithm); err != nil {
			s.writeError(w, err)
			return
		}
	}

	ctx := r.Context()
	var (
		sess    *sortvis.Session
		created = true
		err     error
	)
	if body.ID == "" {
		sess, err = s.Sessions.Create(ctx)
	} else {
		sess, created, err = s.Sessions.GetOrCreate(ctx, body.ID)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !created {
		s.writeSession(w, http.StatusOK, sess)
		return
	}

	err = s.Sessions.Do(ctx, sess.ID(), func(_ context.Context, sess *sortvis.Session) error {
		if body.Algorithm != "" {
			if _, err := sess.SetAlgorithm(body.Algorithm); err != nil {
				return err
			}
		}
		if body.Size != nil {
			sess.SetSize(*body.Size)
		}
		if len(body.Values) > 0 {
			sess.Load(body.Values)
		}
		if body.Speed != nil {
			sess.SetSpeed(*body.Speed)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("Session created via HTTP", "session_id", sess.ID())
	s.writeSession(w, http.StatusCreated, sess)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, http.StatusOK, sess)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// control builds a handler running fn under the session lock. fn reports false when
// the control is not valid in the current status.
func (s *Server) control(action string, fn func(context.Context, *sortvis.Session) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bindPathParam(r, "id")
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.do(w, r, id, func(ctx context.Context, sess *sortvis.Session) error {
			ok, err := fn(ctx, sess)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: cannot %s a %s session", domain.ErrInvalidTransition, action, sess.Status())
			}
			return nil
		})
	}
}

// SetAlgorithm handles the PUT /sessions/{id}/algorithm request.
func (s *Server) SetAlgorithm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Algorithm string `json:"algorithm"`
	}
	id, ok := s.bind(w, r, &body)
	if !ok {
		return
	}
	s.do(w, r, id, func(_ context.Context, sess *sortvis.Session) error {
		changed, err := sess.SetAlgorithm(body.Algorithm)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: algorithm can only change while idle", domain.ErrInvalidTransition)
		}
		return nil
	})
}

// SetSize handles the PUT /sessions/{id}/size request.
func (s *Server) SetSize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Size *int `json:"size"`
	}
	id, ok := s.bind(w, r, &body)
	if !ok {
		return
	}
	if body.Size == nil {
		s.writeError(w, fmt.Errorf("%w: size is required", ErrInvalidRequest))
		return
	}
	s.do(w, r, id, func(_ context.Context, sess *sortvis.Session) error {
		if !sess.SetSize(*body.Size) {
			return fmt.Errorf("%w: size can only change while idle", domain.ErrInvalidTransition)
		}
		return nil
	})
}

// SetSpeed handles the PUT /sessions/{id}/speed request. It is valid in every status.
func (s *Server) SetSpeed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Speed *int `json:"speed"`
	}
	id, ok := s.bind(w, r, &body)
	if !ok {
		return
	}
	if body.Speed == nil {
		s.writeError(w, fmt.Errorf("%w: speed is required", ErrInvalidRequest))
		return
	}
	s.do(w, r, id, func(_ context.Context, sess *sortvis.Session) error {
		sess.SetSpeed(*body.Speed)
		return nil
	})
}

// LoadArray handles the PUT /sessions/{id}/array request.
func (s *Server) LoadArray(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Values []int `json:"values"`
	}
	id, ok := s.bind(w, r, &body)
	if !ok {
		return
	}
	s.do(w, r, id, func(_ context.Context, sess *sortvis.Session) error {
		if !sess.Load(body.Values) {
			return fmt.Errorf("%w: array can only change while idle", domain.ErrInvalidTransition)
		}
		return nil
	})
}

// SubscribeEvents handles the GET /sessions/{id}/events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	params, err := bindSubscribeEventsParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	ch, cancel, err := s.Bus.Subscribe(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Subscribe error: %v", err), http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: subscribe failed", "session_id", id, "err", err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to Session Frames", "session_id", id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")

	// Baseline so the client can apply the following diffs.
	cursor := newFrameCursor(id, sess.Snapshot)
	if payload := cursor.baseline(); payload != nil {
		fmt.Fprintf(w, "data: %s\n\n", payload)
	}
	flusher.Flush()

	var watchList []string
	if params.Watch != nil {
		watchList = strings.Split(*params.Watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			payload, resynced := cursor.next(msg)
			if payload == nil {
				continue
			}
			if resynced {
				s.logger.Debug("SSE: client fell behind, resent full frame", "session_id", id)
			} else if !watches(payload, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// watches reports whether the diff in msg touches any of fields.
// An empty list or an undecodable message always passes.
func watches(msg []byte, fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	var diff domain.FrameDiff
	if err := json.Unmarshal(msg, &diff); err != nil {
		return true
	}
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "values":
			if len(diff.Values) > 0 || diff.Replace != nil {
				return true
			}
		case "status":
			if diff.Status != nil {
				return true
			}
		case "algorithm":
			if diff.Algorithm != nil {
				return true
			}
		case "highlight":
			if diff.Highlight != nil {
				return true
			}
		case "sorted":
			if len(diff.SortedAppended) > 0 || diff.SortedReset {
				return true
			}
		case "counters":
			if diff.Counters != nil {
				return true
			}
		case "elapsed":
			if diff.Elapsed != nil {
				return true
			}
		}
	}
	return false
}

// ListDocs handles the GET /docs request.
func (s *Server) ListDocs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Docs.List())
}

// GetDoc handles the GET /docs/{algorithm} request.
func (s *Server) GetDoc(w http.ResponseWriter, r *http.Request) {
	key, err := bindPathParam(r, "algorithm")
	if err != nil {
		s.writeError(w, err)
		return
	}
	params, err := bindGetDocParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	alg, err := domain.ParseAlgorithm(key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	entry, err := s.Docs.Lookup(alg)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if params.Format != nil && *params.Format == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, entry.Markdown())
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

// -- Helpers --

// bind reads the session ID and decodes the JSON body into dst.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any) (string, bool) {
	id, err := bindPathParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return "", false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid request body: %v", ErrInvalidRequest, err))
		return "", false
	}
	return id, true
}

// do runs fn under the session lock and answers with the resulting state.
func (s *Server) do(w http.ResponseWriter, r *http.Request, id string, fn func(context.Context, *sortvis.Session) error) {
	var sess *sortvis.Session
	err := s.Sessions.Do(r.Context(), id, func(ctx context.Context, found *sortvis.Session) error {
		sess = found
		return fn(ctx, found)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) writeSession(w http.ResponseWriter, code int, sess *sortvis.Session) {
	frame := sess.Snapshot()
	s.writeJSON(w, code, SessionResponse{
		ID:         sess.ID(),
		SpeedLabel: domain.SpeedLabel(frame.Speed),
		Frame:      frame,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	} else {
		s.logger.Debug("Request rejected", "err", err, "status", code)
	}
	http.Error(w, err.Error(), code)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownAlgorithm), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
