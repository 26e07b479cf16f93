package ports

import (
	"context"
	"time"

	"github.com/aretw0/sortvis/pkg/domain"
)

// Renderer produces one visual frame.
// It is called after every step and must not retain the frame's slices beyond the call
// unless it copies them.
type Renderer interface {
	Render(ctx context.Context, frame domain.Frame)
}

// StatsSink displays the three step counters.
type StatsSink interface {
	UpdateStats(counters domain.Counters)
}

// TimerSink displays the elapsed time of the current run.
type TimerSink interface {
	UpdateElapsed(elapsed time.Duration)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(ctx context.Context, frame domain.Frame)

// Render implements Renderer.
func (f RenderFunc) Render(ctx context.Context, frame domain.Frame) { f(ctx, frame) }

// StatsFunc adapts a function to StatsSink.
type StatsFunc func(counters domain.Counters)

// UpdateStats implements StatsSink.
func (f StatsFunc) UpdateStats(counters domain.Counters) { f(counters) }

// TimerFunc adapts a function to TimerSink.
type TimerFunc func(elapsed time.Duration)

// UpdateElapsed implements TimerSink.
func (f TimerFunc) UpdateElapsed(elapsed time.Duration) { f(elapsed) }

// Nop sinks discard everything.
var (
	NopRenderer  Renderer  = RenderFunc(func(context.Context, domain.Frame) {})
	NopStatsSink StatsSink = StatsFunc(func(domain.Counters) {})
	NopTimerSink TimerSink = TimerFunc(func(time.Duration) {})
)
