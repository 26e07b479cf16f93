package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/sortvis"
	"github.com/aretw0/sortvis/internal/config"
	"github.com/aretw0/sortvis/internal/logging"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// CreateLogger configures the application logger from the config level.
// The interactive terminal owns the screen, so it only logs (to Stderr) in debug mode.
func CreateLogger(level string, interactive bool) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if interactive && lvl > slog.LevelDebug {
		return logging.NewNop(), nil
	}
	return logging.New(lvl), nil
}

// SessionOptions maps the configuration onto session options.
func SessionOptions(cfg config.Config) []sortvis.Option {
	opts := []sortvis.Option{
		sortvis.WithAlgorithm(cfg.Algorithm),
		sortvis.WithSize(cfg.Size),
		sortvis.WithSpeed(cfg.Speed),
		sortvis.WithMergeTrace(cfg.MergeTrace),
	}
	if cfg.Tick > 0 {
		opts = append(opts, sortvis.WithTick(cfg.Tick))
	}
	if cfg.Seed != 0 {
		opts = append(opts, sortvis.WithSeed(cfg.Seed))
	}
	return opts
}
