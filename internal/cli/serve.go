package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/sortvis"
	"github.com/aretw0/sortvis/internal/config"
	"github.com/aretw0/sortvis/internal/logging"
	httpAdapter "github.com/aretw0/sortvis/pkg/adapters/http"
	loamAdapter "github.com/aretw0/sortvis/pkg/adapters/loam"
	mcpAdapter "github.com/aretw0/sortvis/pkg/adapters/mcp"
	"github.com/aretw0/sortvis/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/sortvis/pkg/adapters/redis"
	"github.com/aretw0/sortvis/pkg/docs"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/aretw0/sortvis/pkg/observability"
	"github.com/aretw0/sortvis/pkg/ports"
	"github.com/aretw0/sortvis/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Stack is the shared server wiring: sessions, frame bus, docs and metrics.
type Stack struct {
	Sessions *session.Manager
	Bus      ports.FrameBus
	Docs     *docs.Catalog
	Registry *prometheus.Registry
	Logger   *slog.Logger

	closers []io.Closer
}

// NewStack wires the server dependencies from cfg. With Redis enabled, frames travel
// over Redis pub/sub and session controls take a Redis lock; otherwise everything
// stays in process.
func NewStack(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	catalog, err := LoadDocs(ctx, cfg.DocsDir)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	st := &Stack{Docs: catalog, Registry: reg, Logger: logger}

	var managerOpts []session.Option
	if cfg.Redis.Enabled {
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.Redis.Addr},
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		st.closers = append(st.closers, client)
		st.Bus = redisAdapter.NewBus(client, cfg.Redis.Prefix, redisAdapter.WithLogger(logger))
		managerOpts = append(managerOpts,
			session.WithLocker(redisAdapter.NewLocker(client, cfg.Redis.Prefix)),
			session.WithLockTTL(cfg.Redis.LockTTL),
		)
		logger.Info("Using redis frame bus", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
	} else {
		st.Bus = memory.NewBus(memory.WithLogger(logger))
	}

	sessionOpts := append(SessionOptions(cfg),
		sortvis.WithLifecycleHooks(domain.CombineHooks(metrics.Hooks(), observability.LogHooks(logger))),
	)
	managerOpts = append(managerOpts,
		session.WithMaxSessions(cfg.Server.MaxSessions),
		session.WithLogger(logger),
	)
	st.Sessions = session.NewManager(session.NewFactory(st.Bus, logger, sessionOpts...), managerOpts...)
	return st, nil
}

// HTTPHandler builds the HTTP API with /metrics.
func (st *Stack) HTTPHandler() http.Handler {
	return httpAdapter.NewHandler(st.Sessions, st.Bus,
		httpAdapter.WithDocs(st.Docs),
		httpAdapter.WithLogger(st.Logger),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(st.Registry, promhttp.HandlerOpts{})),
	)
}

// MCPServer builds the MCP surface over the same sessions.
func (st *Stack) MCPServer() *mcpAdapter.Server {
	return mcpAdapter.NewServer(st.Sessions,
		mcpAdapter.WithDocs(st.Docs),
		mcpAdapter.WithLogger(st.Logger),
	)
}

// Close stops every session and releases the backends.
func (st *Stack) Close() error {
	errs := []error{st.Sessions.Close()}
	for _, c := range st.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// LoadDocs returns the built-in documentation, with the markdown overrides of dir
// applied when dir is set.
func LoadDocs(ctx context.Context, dir string) (*docs.Catalog, error) {
	if dir == "" {
		return docs.New(), nil
	}
	loader, err := loamAdapter.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open docs dir: %w", err)
	}
	catalog, err := loader.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load docs overrides: %w", err)
	}
	return catalog, nil
}

// Serve runs the HTTP server on cfg.Server.Addr until ctx is done.
func Serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	st, err := NewStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: st.HTTPHandler(),
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		st.Logger.Info("Starting sortvis server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		st.Logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			st.Logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
			return srv.Close()
		}
		st.Logger.Info("sortvis server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server over transport ("stdio" or "sse").
func ServeMCP(ctx context.Context, cfg config.Config, transport string, logger *slog.Logger) error {
	st, err := NewStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := st.MCPServer()
	switch transport {
	case "stdio":
		st.Logger.Info("Starting sortvis MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		baseURL := cfg.Server.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost" + cfg.Server.Addr
		}
		err := srv.ServeSSE(ctx, cfg.Server.Addr, baseURL)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", transport)
	}
}
