package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/sortvis"
	"github.com/aretw0/sortvis/internal/logging"
	"github.com/aretw0/sortvis/pkg/docs"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/aretw0/sortvis/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultWaitTimeout bounds the wait tool when the caller gives no timeout.
const DefaultWaitTimeout = 30 * time.Second

// SessionState aligns with the HTTP session response.
type SessionState struct {
	ID         string       `json:"id" jsonschema_description:"Session identifier"`
	SpeedLabel string       `json:"speed_label" jsonschema_description:"Slow, Medium or Fast"`
	Frame      domain.Frame `json:"frame" jsonschema_description:"Snapshot of the array, highlights and counters"`
}

// SessionArgs addresses one session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// CreateArgs are the arguments of create_session.
type CreateArgs struct {
	SessionID string `json:"session_id,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
	Size      *int   `json:"size,omitempty"`
	Speed     *int   `json:"speed,omitempty"`
}

// AlgorithmArgs are the arguments of set_algorithm.
type AlgorithmArgs struct {
	SessionID string `json:"session_id"`
	Algorithm string `json:"algorithm"`
}

// SizeArgs are the arguments of set_size.
type SizeArgs struct {
	SessionID string `json:"session_id"`
	Size      int    `json:"size"`
}

// SpeedArgs are the arguments of set_speed.
type SpeedArgs struct {
	SessionID string `json:"session_id"`
	Speed     int    `json:"speed"`
}

// ArrayArgs are the arguments of load_array.
type ArrayArgs struct {
	SessionID string `json:"session_id"`
	Values    []int  `json:"values"`
}

// WaitArgs are the arguments of wait.
type WaitArgs struct {
	SessionID string `json:"session_id"`
	TimeoutMS int    `json:"timeout_ms,omitempty"`
}

// Server exposes the session manager as an MCP Server.
type Server struct {
	sessions  *session.Manager
	docs      *docs.Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithDocs serves c instead of the built-in documentation.
func WithDocs(c *docs.Catalog) Option {
	return func(s *Server) {
		s.docs = c
	}
}

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		docs:      docs.New(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("sortvis-mcp", strings.TrimSpace(sortvis.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done. baseURL is the public
// address clients use to post messages.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func sessionIDParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("The session to act on"))
}

func (s *Server) registerTools() {
	algorithms := make([]string, 0, len(domain.Algorithms()))
	for _, a := range domain.Algorithms() {
		algorithms = append(algorithms, string(a))
	}

	s.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a sorting session, or return it if the ID already exists. Omit session_id for a random one."),
		mcp.WithString("session_id", mcp.Description("Requested session ID (optional)")),
		mcp.WithString("algorithm", mcp.Enum(algorithms...), mcp.Description("Sorting algorithm")),
		mcp.WithNumber("size", mcp.Description("Number of bars, clamped to [5, 100]")),
		mcp.WithNumber("speed", mcp.Description("Animation speed, clamped to [1, 100]")),
		mcp.WithOutputSchema[SessionState](),
	), mcp.NewStructuredToolHandler(s.handleCreate))

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the IDs of the live sessions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.sessions.List(ctx))
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the current frame of a session."),
		sessionIDParam(),
		mcp.WithOutputSchema[SessionState](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	controls := []struct {
		name, description string
		fn                func(context.Context, *sortvis.Session) (bool, error)
	}{
		{"start", "Start sorting. Only valid while idle.", func(_ context.Context, sess *sortvis.Session) (bool, error) {
			return sess.Start(), nil
		}},
		{"pause", "Pause a running session at its next step.", func(_ context.Context, sess *sortvis.Session) (bool, error) {
			return sess.Pause(), nil
		}},
		{"resume", "Resume a paused session where it stopped.", func(_ context.Context, sess *sortvis.Session) (bool, error) {
			return sess.Resume(), nil
		}},
		{"reset", "Cancel the run and restore the initial settings with a new array.", func(ctx context.Context, sess *sortvis.Session) (bool, error) {
			return true, sess.HardReset(ctx)
		}},
		{"regenerate", "Replace the array with new random values. Only valid while idle.", func(_ context.Context, sess *sortvis.Session) (bool, error) {
			return sess.Regenerate(), nil
		}},
	}
	for _, c := range controls {
		s.mcpServer.AddTool(mcp.NewTool(c.name,
			mcp.WithDescription(c.description),
			sessionIDParam(),
			mcp.WithOutputSchema[SessionState](),
		), mcp.NewStructuredToolHandler(s.control(c.name, c.fn)))
	}

	s.mcpServer.AddTool(mcp.NewTool("set_algorithm",
		mcp.WithDescription("Select the algorithm. Only valid while idle."),
		sessionIDParam(),
		mcp.WithString("algorithm", mcp.Required(), mcp.Enum(algorithms...), mcp.Description("Sorting algorithm")),
		mcp.WithOutputSchema[SessionState](),
	), mcp.NewStructuredToolHandler(s.handleSetAlgorithm))

	s.mcpServer.AddTool(mcp.NewTool("set_size",
		mcp.WithDescription("Regenerate the array with a new number of bars. Only valid while idle."),
		sessionIDParam(),
		mcp.WithNumber("size", mcp.Required(), mcp.Description("Number of bars, clamped to [5, 100]")),
		mcp.WithOutputSchema[SessionState](),
	), mcp.NewStructuredToolHandler(s.handleSetSize))

	s.mcpServer.AddTool(mcp.NewTool("set_speed",
		mcp.WithDescription("Change the animation speed. Valid in every status."),
		sessionIDParam(),
		mcp.WithNumber("speed", mcp.Required(), mcp.Description("Animation speed, clamped to [1, 100]")),
		mcp.WithOutputSchema[SessionState](),
	), mcp.NewStructuredToolHandler(s.handleSetSpeed))

	s.mcpServer.AddTool(mcp.NewTool("load_array",
		mcp.WithDescription("Replace the array with the given values. Only valid while idle."),
		sessionIDParam(),
		mcp.WithArray("values", mcp.Required(), mcp.Items(map[string]any{"type": "integer"}), mcp.Description("Bar heights")),
		mcp.WithOutputSchema[SessionState](),
	), mcp.NewStructuredToolHandler(s.handleLoadArray))

	s.mcpServer.AddTool(mcp.NewTool("wait",
		mcp.WithDescription("Block until the current run completes or is cancelled."),
		sessionIDParam(),
		mcp.WithNumber("timeout_ms", mcp.Description("Give up after this many milliseconds (default 30000)")),
		mcp.WithOutputSchema[SessionState](),
	), mcp.NewStructuredToolHandler(s.handleWait))

	s.mcpServer.AddTool(mcp.NewTool("get_docs",
		mcp.WithDescription("Get the documentation of an algorithm as markdown."),
		mcp.WithString("algorithm", mcp.Required(), mcp.Enum(algorithms...), mcp.Description("Sorting algorithm")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entry, err := s.lookupDoc(request.GetString("algorithm", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(entry.Markdown()), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleCreate(ctx context.Context, _ mcp.CallToolRequest, args CreateArgs) (SessionState, error) {
	if args.Algorithm != "" {
		if _, err := domain.ParseAlgorithm(args.Algorithm); err != nil {
			return SessionState{}, err
		}
	}

	var (
		sess    *sortvis.Session
		created = true
		err     error
	)
	if args.SessionID == "" {
		sess, err = s.sessions.Create(ctx)
	} else {
		sess, created, err = s.sessions.GetOrCreate(ctx, args.SessionID)
	}
	if err != nil {
		return SessionState{}, fmt.Errorf("create session failed: %w", err)
	}
	if !created {
		return stateOf(sess), nil
	}

	err = s.sessions.Do(ctx, sess.ID(), func(_ context.Context, sess *sortvis.Session) error {
		if args.Algorithm != "" {
			if _, err := sess.SetAlgorithm(args.Algorithm); err != nil {
				return err
			}
		}
		if args.Size != nil {
			sess.SetSize(*args.Size)
		}
		if args.Speed != nil {
			sess.SetSpeed(*args.Speed)
		}
		return nil
	})
	if err != nil {
		return SessionState{}, err
	}
	s.logger.Info("Session created via MCP", "session_id", sess.ID())
	return stateOf(sess), nil
}

func (s *Server) handleGetState(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionState, error) {
	sess, err := s.sessions.Get(ctx, args.SessionID)
	if err != nil {
		return SessionState{}, err
	}
	return stateOf(sess), nil
}

func (s *Server) control(action string, fn func(context.Context, *sortvis.Session) (bool, error)) func(context.Context, mcp.CallToolRequest, SessionArgs) (SessionState, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionState, error) {
		return s.do(ctx, args.SessionID, func(ctx context.Context, sess *sortvis.Session) error {
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

func (s *Server) handleSetAlgorithm(ctx context.Context, _ mcp.CallToolRequest, args AlgorithmArgs) (SessionState, error) {
	return s.do(ctx, args.SessionID, func(_ context.Context, sess *sortvis.Session) error {
		changed, err := sess.SetAlgorithm(args.Algorithm)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: algorithm can only change while idle", domain.ErrInvalidTransition)
		}
		return nil
	})
}

func (s *Server) handleSetSize(ctx context.Context, _ mcp.CallToolRequest, args SizeArgs) (SessionState, error) {
	return s.do(ctx, args.SessionID, func(_ context.Context, sess *sortvis.Session) error {
		if !sess.SetSize(args.Size) {
			return fmt.Errorf("%w: size can only change while idle", domain.ErrInvalidTransition)
		}
		return nil
	})
}

func (s *Server) handleSetSpeed(ctx context.Context, _ mcp.CallToolRequest, args SpeedArgs) (SessionState, error) {
	return s.do(ctx, args.SessionID, func(_ context.Context, sess *sortvis.Session) error {
		sess.SetSpeed(args.Speed)
		return nil
	})
}

func (s *Server) handleLoadArray(ctx context.Context, _ mcp.CallToolRequest, args ArrayArgs) (SessionState, error) {
	return s.do(ctx, args.SessionID, func(_ context.Context, sess *sortvis.Session) error {
		if !sess.Load(args.Values) {
			return fmt.Errorf("%w: array can only change while idle", domain.ErrInvalidTransition)
		}
		return nil
	})
}

// handleWait does not hold the session lock, so other clients can pause or reset meanwhile.
func (s *Server) handleWait(ctx context.Context, _ mcp.CallToolRequest, args WaitArgs) (SessionState, error) {
	sess, err := s.sessions.Get(ctx, args.SessionID)
	if err != nil {
		return SessionState{}, err
	}

	timeout := DefaultWaitTimeout
	if args.TimeoutMS > 0 {
		timeout = time.Duration(args.TimeoutMS) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sess.Wait(ctx); err != nil {
		return SessionState{}, fmt.Errorf("wait failed: %w", err)
	}
	return stateOf(sess), nil
}

func (s *Server) do(ctx context.Context, id string, fn func(context.Context, *sortvis.Session) error) (SessionState, error) {
	var sess *sortvis.Session
	err := s.sessions.Do(ctx, id, func(ctx context.Context, found *sortvis.Session) error {
		sess = found
		return fn(ctx, found)
	})
	if err != nil {
		return SessionState{}, err
	}
	return stateOf(sess), nil
}

func (s *Server) lookupDoc(key string) (docs.Entry, error) {
	alg, err := domain.ParseAlgorithm(key)
	if err != nil {
		return docs.Entry{}, err
	}
	return s.docs.Lookup(alg)
}

func stateOf(sess *sortvis.Session) SessionState {
	frame := sess.Snapshot()
	return SessionState{
		ID:         sess.ID(),
		SpeedLabel: domain.SpeedLabel(frame.Speed),
		Frame:      frame,
	}
}

// DocURI is the resource URI of an algorithm's documentation.
func DocURI(a domain.Algorithm) string {
	return "sortvis://docs/" + string(a)
}

func (s *Server) registerResources() {
	for _, a := range domain.Algorithms() {
		uri := DocURI(a)
		name := string(a)
		if entry, err := s.docs.Lookup(a); err == nil {
			name = entry.Name
		}
		s.mcpServer.AddResource(mcp.NewResource(uri, name,
			mcp.WithResourceDescription("Complexity, trade-offs and walkthrough of "+name),
			mcp.WithMIMEType("text/markdown"),
		), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			entry, err := s.docs.Lookup(a)
			if err != nil {
				return nil, fmt.Errorf("failed to read docs: %w", err)
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     entry.Markdown(),
				},
			}, nil
		})
	}

	// EXPOSE: sortvis://sessions
	s.mcpServer.AddResource(mcp.NewResource("sortvis://sessions", "Live Sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		states := make([]SessionState, 0)
		for _, id := range s.sessions.List(ctx) {
			if sess, err := s.sessions.Get(ctx, id); err == nil {
				states = append(states, stateOf(sess))
			}
		}
		jsonBytes, _ := json.Marshal(states)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "sortvis://sessions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
