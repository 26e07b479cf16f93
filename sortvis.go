package sortvis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/sortvis/internal/logging"
	"github.com/aretw0/sortvis/internal/runtime"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/aretw0/sortvis/pkg/ports"
)

// Session is the high-level entry point of the library: one array, one algorithm and
// one run lifecycle. It wraps the internal controller and is safe for concurrent use.
type Session struct {
	ctrl   *runtime.Controller
	id     string
	logger *slog.Logger
	opts   []runtime.Option
}

// Option defines a functional option for configuring a Session.
type Option func(*Session) error

// WithID names the session. It is attached to events, log lines and bus topics.
func WithID(id string) Option {
	return func(s *Session) error {
		s.id = id
		return nil
	}
}

// WithAlgorithm selects the initial algorithm by name.
func WithAlgorithm(name string) Option {
	return func(s *Session) error {
		a, err := domain.ParseAlgorithm(name)
		if err != nil {
			return err
		}
		s.opts = append(s.opts, runtime.WithAlgorithm(a))
		return nil
	}
}

// WithSize sets the initial number of bars.
func WithSize(size int) Option {
	return func(s *Session) error {
		s.opts = append(s.opts, runtime.WithSize(size))
		return nil
	}
}

// WithSpeed sets the initial speed in [1, 100].
func WithSpeed(speed int) Option {
	return func(s *Session) error {
		s.opts = append(s.opts, runtime.WithSpeed(speed))
		return nil
	}
}

// WithValues starts the session on the given array.
func WithValues(values []int) Option {
	return func(s *Session) error {
		s.opts = append(s.opts, runtime.WithValues(values))
		return nil
	}
}

// WithSeed makes the generated arrays and quick sort pivots reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Session) error {
		s.opts = append(s.opts, runtime.WithSeed(seed))
		return nil
	}
}

// WithMergeTrace selects the merge sort replay mode: "full" (default) or "final".
func WithMergeTrace(mode string) Option {
	return func(s *Session) error {
		trace, err := runtime.ParseMergeTrace(mode)
		if err != nil {
			return err
		}
		s.opts = append(s.opts, runtime.WithMergeTrace(trace))
		return nil
	}
}

// WithInstant removes the step delay. Runs complete as fast as the sinks allow.
func WithInstant() Option {
	return func(s *Session) error {
		s.opts = append(s.opts, runtime.WithSleeper(runtime.NoDelay))
		return nil
	}
}

// WithTick sets how often the elapsed time is pushed to the timer sink.
func WithTick(tick time.Duration) Option {
	return func(s *Session) error {
		s.opts = append(s.opts, runtime.WithTick(tick))
		return nil
	}
}

// WithRenderer sets the frame sink.
func WithRenderer(r ports.Renderer) Option {
	return func(s *Session) error {
		s.opts = append(s.opts, runtime.WithRenderer(r))
		return nil
	}
}

// WithStatsSink sets the counters sink.
func WithStatsSink(sink ports.StatsSink) Option {
	return func(s *Session) error {
		s.opts = append(s.opts, runtime.WithStatsSink(sink))
		return nil
	}
}

// WithTimerSink sets the elapsed time sink.
func WithTimerSink(sink ports.TimerSink) Option {
	return func(s *Session) error {
		s.opts = append(s.opts, runtime.WithTimerSink(sink))
		return nil
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) error {
		s.opts = append(s.opts, runtime.WithLifecycleHooks(hooks))
		return nil
	}
}

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) error {
		s.logger = logger
		return nil
	}
}

// New creates an idle session with a freshly generated array.
func New(opts ...Option) (*Session, error) {
	s := &Session{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	// Session-level options are applied first so explicit runtime options win.
	base := []runtime.Option{
		runtime.WithSessionID(s.id),
		runtime.WithLogger(s.logger),
	}
	s.ctrl = runtime.NewController(append(base, s.opts...)...)
	return s, nil
}

// ID returns the session identifier (empty for anonymous sessions).
func (s *Session) ID() string { return s.id }

// Logger returns the session logger, tagged with the session ID by the controller.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Status returns the lifecycle status.
func (s *Session) Status() domain.Status { return s.ctrl.Status() }

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() domain.Frame { return s.ctrl.Snapshot() }

// Start begins sorting. It reports false when the session is not idle.
func (s *Session) Start() bool { return s.ctrl.Start() }

// Pause suspends a running session at its next step.
func (s *Session) Pause() bool { return s.ctrl.Pause() }

// Resume continues a paused session exactly where it stopped.
func (s *Session) Resume() bool { return s.ctrl.Resume() }

// TogglePause pauses a running session or resumes a paused one.
func (s *Session) TogglePause() bool { return s.ctrl.TogglePause() }

// Regenerate replaces the array with new random values while idle.
func (s *Session) Regenerate() bool { return s.ctrl.Regenerate() }

// SetSize regenerates the array with size bars while idle.
func (s *Session) SetSize(size int) bool { return s.ctrl.SetSize(size) }

// Load replaces the array with values while idle.
func (s *Session) Load(values []int) bool { return s.ctrl.Load(values) }

// SetAlgorithm selects the algorithm by name while idle.
func (s *Session) SetAlgorithm(name string) (bool, error) {
	a, err := domain.ParseAlgorithm(name)
	if err != nil {
		return false, err
	}
	return s.ctrl.SetAlgorithm(a)
}

// SetSpeed changes the step delay in any status and returns the clamped speed.
func (s *Session) SetSpeed(speed int) int { return s.ctrl.SetSpeed(speed) }

// HardReset cancels the current run, waits for it to stop and restores the initial
// settings with a new array.
func (s *Session) HardReset(ctx context.Context) error { return s.ctrl.HardReset(ctx) }

// Wait blocks until the current run completes or is cancelled.
func (s *Session) Wait(ctx context.Context) error { return s.ctrl.Wait(ctx) }

// Run starts the session and waits for it to finish. It returns the final frame.
func (s *Session) Run(ctx context.Context) (domain.Frame, error) {
	if !s.ctrl.Start() {
		f := s.ctrl.Snapshot()
		return f, fmt.Errorf("%w: cannot start a %s session", domain.ErrInvalidTransition, f.Status)
	}
	if err := s.ctrl.Wait(ctx); err != nil {
		return s.ctrl.Snapshot(), err
	}
	return s.ctrl.Snapshot(), nil
}

// Close stops any in-flight run and releases the session's goroutines.
func (s *Session) Close() error { return s.ctrl.Close() }
