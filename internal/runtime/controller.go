package runtime

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/sortvis/internal/logging"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/aretw0/sortvis/pkg/ports"
)

// Controller owns one RunState and orchestrates its lifecycle:
// Idle -> Running -> (Paused <-> Running) -> Completed, and any state -> Idle via HardReset.
// Invalid transitions are silent no-ops reported through the boolean results.
type Controller struct {
	mu sync.Mutex
	// renderMu orders sink calls: it is taken before mu is released.
	renderMu sync.Mutex

	state *domain.RunState
	gate  *Gate
	watch *Stopwatch
	rng   *rand.Rand

	id         string
	initial    settings
	trace      MergeTrace
	sleep      Sleeper
	renderer   ports.Renderer
	stats      ports.StatsSink
	timer      ports.TimerSink
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	tick       time.Duration
	now        func() time.Time
	seed       uint64
	seedValues []int

	// Set while a driver goroutine is alive.
	cancel context.CancelFunc
	done   chan struct{}
}

// settings is what a hard reset restores.
type settings struct {
	algorithm domain.Algorithm
	size      int
	speed     int
}

// Option configures the Controller.
type Option func(*Controller)

// WithSessionID tags events and log lines with a session identifier.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		c.id = id
	}
}

// WithAlgorithm sets the initial algorithm.
func WithAlgorithm(a domain.Algorithm) Option {
	return func(c *Controller) {
		if a.Valid() {
			c.initial.algorithm = a
		}
	}
}

// WithSize sets the initial array size (clamped to [domain.MinSize, domain.MaxSize]).
func WithSize(size int) Option {
	return func(c *Controller) {
		c.initial.size = domain.ClampSize(size)
	}
}

// WithSpeed sets the initial speed (clamped to [domain.MinSpeed, domain.MaxSpeed]).
func WithSpeed(speed int) Option {
	return func(c *Controller) {
		c.initial.speed = domain.ClampSpeed(speed)
	}
}

// WithValues starts the session on a fixed array instead of a generated one.
// A hard reset still generates a fresh random array.
func WithValues(values []int) Option {
	return func(c *Controller) {
		c.seedValues = slices.Clone(values)
	}
}

// WithSeed makes array generation and pivot selection deterministic.
func WithSeed(seed uint64) Option {
	return func(c *Controller) {
		c.seed = seed
	}
}

// WithMergeTrace selects the merge sort replay mode.
func WithMergeTrace(trace MergeTrace) Option {
	return func(c *Controller) {
		c.trace = trace
	}
}

// WithSleeper replaces the wall-clock step delay.
func WithSleeper(sleep Sleeper) Option {
	return func(c *Controller) {
		c.sleep = sleep
	}
}

// WithRenderer sets the render sink.
func WithRenderer(r ports.Renderer) Option {
	return func(c *Controller) {
		c.renderer = r
	}
}

// WithStatsSink sets the counters sink.
func WithStatsSink(s ports.StatsSink) Option {
	return func(c *Controller) {
		c.stats = s
	}
}

// WithTimerSink sets the elapsed time sink.
func WithTimerSink(t ports.TimerSink) Option {
	return func(c *Controller) {
		c.timer = t
	}
}

// WithTick sets the elapsed time refresh interval.
func WithTick(tick time.Duration) Option {
	return func(c *Controller) {
		c.tick = tick
	}
}

// WithClock replaces time.Now for the stopwatch.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates an idle controller with a freshly generated array.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		initial: settings{
			algorithm: domain.DefaultAlgorithm,
			size:      domain.DefaultSize,
			speed:     domain.DefaultSpeed,
		},
		trace:    MergeTraceFull,
		sleep:    Sleep,
		renderer: ports.NopRenderer,
		stats:    ports.NopStatsSink,
		timer:    ports.NopTimerSink,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id != "" {
		c.logger = c.logger.With("session_id", c.id)
	}

	c.rng = newRand(c.seed)
	c.gate = NewGate()
	c.watch = NewStopwatch(c.timer, c.tick, c.now)

	values := c.seedValues
	if values == nil {
		values = GenerateArray(c.rng, c.initial.size)
	}
	c.state = domain.NewRunState(c.initial.algorithm, values, c.initial.speed)
	return c
}

// Status returns the current lifecycle status.
func (c *Controller) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Status
}

// Snapshot returns a consistent copy of the run state.
func (c *Controller) Snapshot() domain.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Frame(c.watch.Elapsed())
}

// Start launches the selected driver. Only valid from Idle.
func (c *Controller) Start() bool {
	c.mu.Lock()
	if c.state.Status != domain.StatusIdle {
		c.ignored("start")
		c.mu.Unlock()
		return false
	}
	driver, err := DriverFor(c.state.Algorithm, c.trace)
	if err != nil {
		c.logger.Error("Cannot start run", "algorithm", c.state.Algorithm, "err", err)
		c.mu.Unlock()
		return false
	}

	c.state.ClearRun()
	c.state.Status = domain.StatusRunning
	c.gate.Resume()
	c.watch.Reset()
	c.watch.Start()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel, c.done = cancel, done

	stepper := NewStepper(ctx, c.state, StepperConfig{
		Mu:        &c.mu,
		RenderMu:  &c.renderMu,
		Gate:      c.gate,
		Sleep:     c.sleep,
		Rand:      c.rng,
		Elapsed:   c.watch.Elapsed,
		Observe:   c.observe,
		OnStep:    c.hooks.OnStep,
		SessionID: c.id,
	})
	frame := c.state.Emit(0)
	c.release(ctx, frame)

	c.logger.Debug("Run started", "algorithm", frame.Algorithm, "size", len(frame.Values), "speed", frame.Speed)
	c.statusChanged(ctx, frame.Algorithm, domain.StatusIdle, domain.StatusRunning)
	if c.hooks.OnRunStart != nil {
		c.hooks.OnRunStart(ctx, c.runEvent(frame, false))
	}

	go c.run(ctx, driver, stepper, done)
	return true
}

func (c *Controller) run(ctx context.Context, driver Driver, stepper *Stepper, done chan struct{}) {
	defer close(done)

	err := driver(stepper)
	if err != nil {
		// Only a hard reset cancels a driver; it restores state itself.
		c.mu.Lock()
		c.watch.Stop()
		frame := c.state.Frame(c.watch.Elapsed())
		c.mu.Unlock()

		if !errors.Is(err, domain.ErrRunCancelled) {
			c.logger.Error("Driver aborted", "algorithm", frame.Algorithm, "err", err)
		} else {
			c.logger.Debug("Run cancelled", "algorithm", frame.Algorithm)
		}
		if c.hooks.OnRunComplete != nil {
			c.hooks.OnRunComplete(ctx, c.runEvent(frame, true))
		}
		return
	}

	c.mu.Lock()
	from := c.state.Status
	c.state.Status = domain.StatusCompleted
	c.state.MarkAllSorted()
	c.state.Highlight = domain.NewHighlight()
	c.watch.Stop()
	frame := c.state.Emit(c.watch.Elapsed())
	c.release(ctx, frame)

	c.logger.Info("Run completed",
		"algorithm", frame.Algorithm,
		"size", len(frame.Values),
		"comparisons", frame.Counters.Comparisons,
		"swaps", frame.Counters.Swaps,
		"writes", frame.Counters.Writes,
		"elapsed", frame.Elapsed,
	)
	c.statusChanged(ctx, frame.Algorithm, from, domain.StatusCompleted)
	if c.hooks.OnRunComplete != nil {
		c.hooks.OnRunComplete(ctx, c.runEvent(frame, false))
	}
}

// Pause suspends the running driver at its next step and freezes the stopwatch.
// Only valid from Running.
func (c *Controller) Pause() bool {
	return c.transition(domain.StatusRunning, domain.StatusPaused, "pause", func() {
		c.gate.Pause()
		c.watch.Stop()
	})
}

// Resume releases the driver and continues the stopwatch from its stored value.
// Only valid from Paused.
func (c *Controller) Resume() bool {
	return c.transition(domain.StatusPaused, domain.StatusRunning, "resume", func() {
		c.watch.Start()
		c.gate.Resume()
	})
}

// TogglePause pauses a running session or resumes a paused one.
func (c *Controller) TogglePause() bool {
	switch c.Status() {
	case domain.StatusRunning:
		return c.Pause()
	case domain.StatusPaused:
		return c.Resume()
	default:
		c.ignored("toggle pause")
		return false
	}
}

func (c *Controller) transition(from, to domain.Status, action string, apply func()) bool {
	c.mu.Lock()
	if c.state.Status != from {
		c.ignored(action)
		c.mu.Unlock()
		return false
	}
	c.state.Status = to
	apply()
	frame := c.state.Emit(c.watch.Elapsed())
	ctx := context.Background()
	c.release(ctx, frame)

	c.logger.Debug("Run "+action+"d", "algorithm", frame.Algorithm)
	c.statusChanged(ctx, frame.Algorithm, from, to)
	return true
}

// Regenerate replaces the array with a new random one. Only valid from Idle.
func (c *Controller) Regenerate() bool {
	return c.whileIdle("regenerate", func() {
		c.state.Values = GenerateArray(c.rng, len(c.state.Values))
		c.state.ClearRun()
	})
}

// SetSize regenerates the array with a new (clamped) size. Only valid from Idle.
func (c *Controller) SetSize(size int) bool {
	return c.whileIdle("resize", func() {
		c.state.Values = GenerateArray(c.rng, domain.ClampSize(size))
		c.state.ClearRun()
	})
}

// Load replaces the array with caller supplied values. Only valid from Idle.
func (c *Controller) Load(values []int) bool {
	return c.whileIdle("load", func() {
		c.state.Values = slices.Clone(values)
		c.state.ClearRun()
	})
}

// SetAlgorithm selects the driver for the next run. Only valid from Idle.
func (c *Controller) SetAlgorithm(a domain.Algorithm) (bool, error) {
	if !a.Valid() {
		return false, domain.ErrUnknownAlgorithm
	}
	return c.whileIdle("change algorithm", func() {
		c.state.Algorithm = a
		c.state.ClearRun()
	}), nil
}

// SetSpeed changes the step delay. Valid in any status; it applies from the next step.
func (c *Controller) SetSpeed(speed int) int {
	c.mu.Lock()
	c.state.Speed = domain.ClampSpeed(speed)
	frame := c.state.Emit(c.watch.Elapsed())
	c.release(context.Background(), frame)
	return frame.Speed
}

func (c *Controller) whileIdle(action string, apply func()) bool {
	c.mu.Lock()
	if c.state.Status != domain.StatusIdle {
		c.ignored(action)
		c.mu.Unlock()
		return false
	}
	apply()
	frame := c.state.Emit(c.watch.Elapsed())
	c.release(context.Background(), frame)
	return true
}

// HardReset discards the session: it cancels the in-flight driver, waits for it to
// unwind, then rebuilds the state from the initial settings with a new array.
// Valid from any status. It only fails if ctx ends before the driver has stopped.
func (c *Controller) HardReset(ctx context.Context) error {
	for {
		if err := c.halt(ctx); err != nil {
			return err
		}
		c.mu.Lock()
		// A Start may have slipped in after halt released mu.
		if c.done == nil {
			break
		}
		c.mu.Unlock()
	}

	from, seq := c.state.Status, c.state.Seq
	c.watch.Reset()
	c.gate.Resume()
	c.state = domain.NewRunState(c.initial.algorithm, GenerateArray(c.rng, c.initial.size), c.initial.speed)
	c.state.Seq = seq
	frame := c.state.Emit(0)
	c.release(ctx, frame)

	c.logger.Info("Session hard reset", "from", from)
	if from != domain.StatusIdle {
		c.statusChanged(ctx, frame.Algorithm, from, domain.StatusIdle)
	}
	return nil
}

// Wait blocks until the current run has finished (completed or cancelled).
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any in-flight driver and stops the stopwatch.
func (c *Controller) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.halt(ctx)
	c.watch.Stop()
	return err
}

// halt cancels the driver goroutine and joins it. The driver is forgotten only
// once it has exited, so a failed halt leaves it visible to Wait and Close.
func (c *Controller) halt(ctx context.Context) error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.mu.Lock()
	if c.done == done {
		c.cancel, c.done = nil, nil
	}
	c.mu.Unlock()
	return nil
}

// observe forwards a step frame to the sinks, in driver order.
func (c *Controller) observe(ctx context.Context, frame domain.Frame, ev *domain.StepEvent) {
	c.renderer.Render(ctx, frame)
	if ev != nil {
		c.stats.UpdateStats(frame.Counters)
	}
}

// release unlocks mu and hands frame to the sinks. Callers hold mu; renderMu is
// taken first so no later frame can overtake this one.
func (c *Controller) release(ctx context.Context, frame domain.Frame) {
	c.renderMu.Lock()
	c.mu.Unlock()
	defer c.renderMu.Unlock()
	c.renderer.Render(ctx, frame)
	c.stats.UpdateStats(frame.Counters)
}

func (c *Controller) statusChanged(ctx context.Context, a domain.Algorithm, from, to domain.Status) {
	if c.hooks.OnStatusChange == nil {
		return
	}
	c.hooks.OnStatusChange(ctx, &domain.StatusEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), SessionID: c.id, Algorithm: a},
		From:      from,
		To:        to,
	})
}

func (c *Controller) runEvent(frame domain.Frame, cancelled bool) *domain.RunEvent {
	return &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), SessionID: c.id, Algorithm: frame.Algorithm},
		Size:      len(frame.Values),
		Status:    frame.Status,
		Counters:  frame.Counters,
		Elapsed:   frame.Elapsed,
		Cancelled: cancelled,
	}
}

// ignored logs a rejected transition. Callers hold c.mu.
func (c *Controller) ignored(action string) {
	c.logger.Debug("Ignored control", "action", action, "status", c.state.Status)
}
