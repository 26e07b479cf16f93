package runtime

import (
	"sync"
	"time"

	"github.com/aretw0/sortvis/pkg/ports"
)

// DefaultTick is the refresh interval of the elapsed time display.
const DefaultTick = 50 * time.Millisecond

// Stopwatch measures the wall-clock time of a run and pushes it to a TimerSink at a
// fixed tick, independent of the algorithm speed. Stopping keeps the accumulated
// time so a later Start continues from it.
type Stopwatch struct {
	mu          sync.Mutex
	now         func() time.Time
	tick        time.Duration
	sink        ports.TimerSink
	started     time.Time
	accumulated time.Duration
	running     bool
	stop        chan struct{}
	done        chan struct{}
}

// NewStopwatch creates a stopped stopwatch. A nil now uses time.Now; tick <= 0 uses DefaultTick.
func NewStopwatch(sink ports.TimerSink, tick time.Duration, now func() time.Time) *Stopwatch {
	if sink == nil {
		sink = ports.NopTimerSink
	}
	if tick <= 0 {
		tick = DefaultTick
	}
	if now == nil {
		now = time.Now
	}
	return &Stopwatch{now: now, tick: tick, sink: sink}
}

// Start resumes counting from the accumulated time. No-op when running.
func (w *Stopwatch) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.started = w.now()
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop(w.stop, w.done)
}

// Stop freezes the elapsed time and pushes the final value to the sink.
func (w *Stopwatch) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.accumulated += w.now().Sub(w.started)
	w.running = false
	stop, done := w.stop, w.done
	elapsed := w.accumulated
	w.mu.Unlock()

	close(stop)
	<-done
	w.sink.UpdateElapsed(elapsed)
}

// Reset stops the stopwatch and zeroes it.
func (w *Stopwatch) Reset() {
	w.Stop()
	w.mu.Lock()
	w.accumulated = 0
	w.mu.Unlock()
	w.sink.UpdateElapsed(0)
}

// Elapsed returns the accumulated time, including the current interval when running.
func (w *Stopwatch) Elapsed() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return w.accumulated + w.now().Sub(w.started)
	}
	return w.accumulated
}

// Running reports whether the stopwatch is counting.
func (w *Stopwatch) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Stopwatch) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(w.tick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			w.sink.UpdateElapsed(w.Elapsed())
		}
	}
}
