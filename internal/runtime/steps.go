package runtime

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/sortvis/pkg/domain"
)

// Sleeper delays the driver after each step. It must return early with ctx.Err()
// when ctx is cancelled.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the wall-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoDelay skips the delay entirely (headless runs and tests).
func NoDelay(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// StepObserver receives the frame produced by a step. ev is nil for frames that
// are not tied to a primitive (sorted marks). It runs under the render lock and must
// not call back into the owner of the state.
type StepObserver func(ctx context.Context, frame domain.Frame, ev *domain.StepEvent)

// StepHook runs after the frame of a step was observed, outside every lock.
type StepHook func(ctx context.Context, ev *domain.StepEvent)

// Stepper exposes the step primitives over a RunState.
// Every primitive waits at the gate and mutates the state under mu, so a Pause
// that has returned guarantees no further mutation until Resume. render is taken
// before mu is released and held while the observer runs, so frames reach the
// sinks in the order they were taken.
type Stepper struct {
	ctx     context.Context
	mu      *sync.Mutex
	render  *sync.Mutex
	state   *domain.RunState
	gate    *Gate
	sleep   Sleeper
	rng     *rand.Rand
	elapsed func() time.Duration
	observe StepObserver
	onStep  StepHook
	session string
}

// StepperConfig wires a Stepper to its collaborators.
type StepperConfig struct {
	Mu        *sync.Mutex
	RenderMu  *sync.Mutex
	Gate      *Gate
	Sleep     Sleeper
	Rand      *rand.Rand
	Elapsed   func() time.Duration
	Observe   StepObserver
	OnStep    StepHook
	SessionID string
}

// NewStepper creates a Stepper for one run. Zero config fields get working defaults.
func NewStepper(ctx context.Context, state *domain.RunState, cfg StepperConfig) *Stepper {
	s := &Stepper{
		ctx:     ctx,
		mu:      cfg.Mu,
		render:  cfg.RenderMu,
		state:   state,
		gate:    cfg.Gate,
		sleep:   cfg.Sleep,
		rng:     cfg.Rand,
		elapsed: cfg.Elapsed,
		observe: cfg.Observe,
		onStep:  cfg.OnStep,
		session: cfg.SessionID,
	}
	if s.mu == nil {
		s.mu = &sync.Mutex{}
	}
	if s.render == nil {
		s.render = &sync.Mutex{}
	}
	if s.gate == nil {
		s.gate = NewGate()
	}
	if s.sleep == nil {
		s.sleep = Sleep
	}
	if s.rng == nil {
		s.rng = newRand(0)
	}
	if s.elapsed == nil {
		s.elapsed = func() time.Duration { return 0 }
	}
	if s.observe == nil {
		s.observe = func(context.Context, domain.Frame, *domain.StepEvent) {}
	}
	return s
}

// Len returns the array length, constant for the whole run.
func (s *Stepper) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Values)
}

// Value reads values[i] without counting a step.
func (s *Stepper) Value(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Values[i]
}

// Values returns a copy of the current array.
func (s *Stepper) Values() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Values)
}

// Random returns a uniform index in [lo, hi].
func (s *Stepper) Random(lo, hi int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.IntN(hi-lo+1)
}

// Compare counts a comparison, highlights i and j and returns cmp(values[i], values[j]).
func (s *Stepper) Compare(i, j int) (int, error) {
	var result int
	err := s.step(domain.StepCompare, []int{i, j}, func(st *domain.RunState) {
		st.Counters.Comparisons++
		st.Highlight.Comparing = []int{i, j}
		result = cmp.Compare(st.Values[i], st.Values[j])
	})
	return result, err
}

// CompareValue counts a comparison of values[i] against a held value v, highlighting i
// and marks. Insertion sort uses it for the key lifted out of the array.
func (s *Stepper) CompareValue(i, v int, marks ...int) (int, error) {
	var result int
	indices := append([]int{i}, marks...)
	err := s.step(domain.StepCompare, indices, func(st *domain.RunState) {
		st.Counters.Comparisons++
		st.Highlight.Comparing = indices
		result = cmp.Compare(st.Values[i], v)
	})
	return result, err
}

// Swap exchanges values[i] and values[j]. Swapping an index with itself is elided:
// no counter, highlight, frame or delay.
func (s *Stepper) Swap(i, j int) error {
	if i == j {
		return s.checkCancelled()
	}
	return s.step(domain.StepSwap, []int{i, j}, func(st *domain.RunState) {
		st.Counters.Swaps++
		st.Highlight.Swapping = []int{i, j}
		st.Values[i], st.Values[j] = st.Values[j], st.Values[i]
	})
}

// Write assigns values[i] = v. The writing highlight is cleared after the delay.
func (s *Stepper) Write(i, v int) error {
	err := s.step(domain.StepWrite, []int{i}, func(st *domain.RunState) {
		st.Counters.Writes++
		st.Highlight.Writing = i
		st.Values[i] = v
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.state.Highlight.Writing == i {
		s.state.Highlight.Writing = domain.NoIndex
	}
	s.mu.Unlock()
	return nil
}

// MarkSorted records final positions and emits a frame without delay.
func (s *Stepper) MarkSorted(indices ...int) {
	s.mu.Lock()
	for _, i := range indices {
		s.state.MarkSorted(i)
	}
	frame := s.state.Emit(s.elapsed())
	s.render.Lock()
	s.mu.Unlock()
	s.observe(s.ctx, frame, nil)
	s.render.Unlock()
}

// SetPivot highlights the pivot index of quick sort's partition.
func (s *Stepper) SetPivot(i int) {
	s.mu.Lock()
	s.state.Highlight.Pivot = i
	s.mu.Unlock()
}

// ClearPivot removes the pivot highlight.
func (s *Stepper) ClearPivot() {
	s.SetPivot(domain.NoIndex)
}

// ClearHighlight drops the comparing and swapping sets.
func (s *Stepper) ClearHighlight() {
	s.mu.Lock()
	s.state.Highlight.Comparing = nil
	s.state.Highlight.Swapping = nil
	s.mu.Unlock()
}

// step runs one primitive: gate, mutate, frame, delay. It never mutates after the
// run was cancelled or while the state is paused.
func (s *Stepper) step(kind domain.StepKind, indices []int, mutate func(*domain.RunState)) error {
	for {
		if err := s.gate.Wait(s.ctx); err != nil {
			return cancelled(err)
		}

		s.mu.Lock()
		if err := s.ctx.Err(); err != nil {
			s.mu.Unlock()
			return cancelled(err)
		}
		if s.state.Status == domain.StatusPaused {
			// Paused between Wait and Lock; the gate is closed again.
			s.mu.Unlock()
			continue
		}
		mutate(s.state)
		frame := s.state.Emit(s.elapsed())
		s.render.Lock()
		s.mu.Unlock()

		ev := &domain.StepEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				SessionID: s.session,
				Algorithm: frame.Algorithm,
			},
			Kind:     kind,
			Indices:  indices,
			Counters: frame.Counters,
		}
		s.observe(s.ctx, frame, ev)
		s.render.Unlock()
		if s.onStep != nil {
			s.onStep(s.ctx, ev)
		}

		if err := s.sleep(s.ctx, frame.Delay); err != nil {
			return cancelled(err)
		}
		return nil
	}
}

func (s *Stepper) checkCancelled() error {
	if err := s.ctx.Err(); err != nil {
		return cancelled(err)
	}
	return nil
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrRunCancelled, err)
}
