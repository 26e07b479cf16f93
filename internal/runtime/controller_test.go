package runtime_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/sortvis/internal/runtime"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/aretw0/sortvis/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, c *runtime.Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

func TestController_InitialState(t *testing.T) {
	c := runtime.NewController(
		runtime.WithAlgorithm(domain.AlgorithmQuick),
		runtime.WithSize(500),
		runtime.WithSpeed(0),
		runtime.WithSeed(9),
	)
	defer c.Close()

	f := c.Snapshot()
	assert.Equal(t, domain.StatusIdle, f.Status)
	assert.Equal(t, domain.AlgorithmQuick, f.Algorithm)
	assert.Len(t, f.Values, domain.MaxSize)
	assert.Equal(t, domain.MinSpeed, f.Speed)
	assert.Empty(t, f.Sorted)
	assert.True(t, f.Highlight.IsEmpty())
}

func TestController_RunToCompletion(t *testing.T) {
	var completed atomic.Pointer[domain.RunEvent]
	var statuses []domain.Status
	var mu sync.Mutex

	c := runtime.NewController(
		runtime.WithAlgorithm(domain.AlgorithmBubble),
		runtime.WithValues([]int{5, 3, 8, 1}),
		runtime.WithSleeper(runtime.NoDelay),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnStatusChange: func(_ context.Context, e *domain.StatusEvent) {
				mu.Lock()
				statuses = append(statuses, e.To)
				mu.Unlock()
			},
			OnRunComplete: func(_ context.Context, e *domain.RunEvent) {
				completed.Store(e)
			},
		}),
	)
	defer c.Close()

	require.True(t, c.Start())
	waitDone(t, c)

	f := c.Snapshot()
	assert.Equal(t, domain.StatusCompleted, f.Status)
	assert.Equal(t, []int{1, 3, 5, 8}, f.Values)
	assert.Equal(t, []int{0, 1, 2, 3}, f.Sorted)
	assert.True(t, f.Highlight.IsEmpty())
	assert.Equal(t, 6, f.Counters.Comparisons)

	ev := completed.Load()
	require.NotNil(t, ev)
	assert.False(t, ev.Cancelled)
	assert.Equal(t, 4, ev.Size)

	mu.Lock()
	assert.Equal(t, []domain.Status{domain.StatusRunning, domain.StatusCompleted}, statuses)
	mu.Unlock()

	// Completed only leaves through a hard reset.
	assert.False(t, c.Start())
	assert.False(t, c.Regenerate())
	assert.False(t, c.Pause())
	assert.Equal(t, domain.StatusCompleted, c.Status())
}

func TestController_StartIsNoOpWhenNotIdle(t *testing.T) {
	release := make(chan struct{})
	blocking := func(ctx context.Context, _ time.Duration) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c := runtime.NewController(runtime.WithSize(10), runtime.WithSleeper(blocking))
	defer c.Close()

	require.True(t, c.Start())
	before := c.Snapshot()
	assert.False(t, c.Start())
	after := c.Snapshot()
	assert.Equal(t, before.Values, after.Values)
	assert.Equal(t, before.Counters, after.Counters)
	close(release)
}

func TestController_PauseFreezesAndResumeContinues(t *testing.T) {
	values := []int{90, 10, 70, 30, 50, 20, 80, 40, 60, 100}
	var c *runtime.Controller
	var once sync.Once

	c = runtime.NewController(
		runtime.WithAlgorithm(domain.AlgorithmBubble),
		runtime.WithValues(values),
		runtime.WithSleeper(runtime.NoDelay),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnStep: func(_ context.Context, e *domain.StepEvent) {
				if e.Counters.Comparisons == 5 {
					once.Do(func() { c.Pause() })
				}
			},
		}),
	)
	defer c.Close()

	require.True(t, c.Start())
	require.Eventually(t, func() bool { return c.Status() == domain.StatusPaused }, time.Second, time.Millisecond)

	frozen := c.Snapshot()
	time.Sleep(30 * time.Millisecond)
	still := c.Snapshot()
	assert.Equal(t, frozen.Values, still.Values)
	assert.Equal(t, frozen.Counters, still.Counters)
	assert.Equal(t, frozen.Elapsed, still.Elapsed, "stopwatch is frozen while paused")
	assert.Equal(t, 5, still.Counters.Comparisons)

	require.True(t, c.Resume())
	waitDone(t, c)

	f := c.Snapshot()
	assert.Equal(t, domain.StatusCompleted, f.Status)
	assert.True(t, slices.IsSorted(f.Values))
	n := len(values)
	assert.Equal(t, n*(n-1)/2, f.Counters.Comparisons, "no step repeated or skipped across the pause")
}

func TestController_TogglePause(t *testing.T) {
	c := runtime.NewController(runtime.WithSize(20), runtime.WithSleeper(func(ctx context.Context, d time.Duration) error {
		return runtime.Sleep(ctx, time.Millisecond)
	}))
	defer c.Close()

	assert.False(t, c.TogglePause(), "idle")
	require.True(t, c.Start())
	assert.True(t, c.TogglePause())
	assert.Equal(t, domain.StatusPaused, c.Status())
	assert.True(t, c.TogglePause())
	assert.Equal(t, domain.StatusRunning, c.Status())
}

func TestController_IdleOnlyConfiguration(t *testing.T) {
	c := runtime.NewController(
		runtime.WithSize(10),
		runtime.WithSleeper(func(ctx context.Context, _ time.Duration) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	defer c.Close()

	require.True(t, c.SetSize(3))
	assert.Len(t, c.Snapshot().Values, domain.MinSize, "size is clamped")

	ok, err := c.SetAlgorithm(domain.AlgorithmSelection)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = c.SetAlgorithm("bogo")
	assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)

	require.True(t, c.Load([]int{9, 8, 7, 6, 5, 4}))
	assert.Equal(t, []int{9, 8, 7, 6, 5, 4}, c.Snapshot().Values)

	require.True(t, c.Start())
	require.Eventually(t, func() bool { return c.Snapshot().Counters.Comparisons == 1 }, time.Second, time.Millisecond)

	before := c.Snapshot()
	assert.False(t, c.Regenerate())
	assert.False(t, c.SetSize(50))
	assert.False(t, c.Load([]int{1}))
	ok, err = c.SetAlgorithm(domain.AlgorithmQuick)
	require.NoError(t, err)
	assert.False(t, ok)

	after := c.Snapshot()
	assert.Equal(t, before.Values, after.Values)
	assert.Equal(t, domain.AlgorithmSelection, after.Algorithm)
}

func TestController_SetSpeedAppliesInAnyStatus(t *testing.T) {
	var delays []time.Duration
	var mu sync.Mutex
	sleeper := func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		return ctx.Err()
	}

	var c *runtime.Controller
	c = runtime.NewController(
		runtime.WithAlgorithm(domain.AlgorithmSelection),
		runtime.WithValues([]int{5, 4, 3, 2, 1}),
		runtime.WithSpeed(1),
		runtime.WithSleeper(sleeper),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnStep: func(_ context.Context, e *domain.StepEvent) {
				if e.Counters.Comparisons == 2 && e.Kind == domain.StepCompare {
					c.SetSpeed(100)
				}
			},
		}),
	)
	defer c.Close()

	require.True(t, c.Start())
	waitDone(t, c)

	mu.Lock()
	defer mu.Unlock()
	require.Greater(t, len(delays), 3)
	assert.Equal(t, domain.DelayForSpeed(1), delays[0])
	assert.Equal(t, domain.DelayForSpeed(100), delays[len(delays)-1])
	assert.Equal(t, 100, c.SetSpeed(500), "clamped")
}

func TestController_HardResetCancelsDriver(t *testing.T) {
	var cancelled atomic.Bool
	var renders atomic.Int64

	c := runtime.NewController(
		runtime.WithAlgorithm(domain.AlgorithmMerge),
		runtime.WithSize(40),
		runtime.WithSpeed(70),
		runtime.WithSleeper(func(ctx context.Context, _ time.Duration) error {
			return runtime.Sleep(ctx, time.Millisecond)
		}),
		runtime.WithRenderer(ports.RenderFunc(func(context.Context, domain.Frame) {
			renders.Add(1)
		})),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnRunComplete: func(_ context.Context, e *domain.RunEvent) {
				cancelled.Store(e.Cancelled)
			},
		}),
	)
	defer c.Close()

	require.True(t, c.Start())
	require.Eventually(t, func() bool { return c.Snapshot().Counters.Writes > 3 }, time.Second, time.Millisecond)
	require.True(t, c.Pause())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.HardReset(ctx))
	assert.True(t, cancelled.Load())

	f := c.Snapshot()
	assert.Equal(t, domain.StatusIdle, f.Status)
	assert.Len(t, f.Values, 40)
	assert.Equal(t, 70, f.Speed)
	assert.Equal(t, domain.AlgorithmMerge, f.Algorithm)
	assert.Zero(t, f.Counters)
	assert.Empty(t, f.Sorted)
	assert.Zero(t, f.Elapsed)

	// No stale driver writes into the fresh array.
	renderCount := renders.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, f.Values, c.Snapshot().Values)
	assert.Equal(t, renderCount, renders.Load())

	assert.True(t, c.Start(), "reset session can run again")
}

func TestController_HardResetRestoresInitialSettings(t *testing.T) {
	c := runtime.NewController(runtime.WithSize(12), runtime.WithSpeed(20))
	defer c.Close()

	c.SetSize(60)
	c.SetSpeed(90)
	_, _ = c.SetAlgorithm(domain.AlgorithmInsertion)

	require.NoError(t, c.HardReset(context.Background()))
	f := c.Snapshot()
	assert.Len(t, f.Values, 12)
	assert.Equal(t, 20, f.Speed)
	assert.Equal(t, domain.DefaultAlgorithm, f.Algorithm)
}

func TestController_LastRenderedFrameFollowsPause(t *testing.T) {
	for trial := range 20 {
		var last atomic.Pointer[domain.Frame]
		c := runtime.NewController(
			runtime.WithAlgorithm(domain.AlgorithmBubble),
			runtime.WithSize(domain.MaxSize),
			runtime.WithSeed(uint64(trial+1)),
			runtime.WithSleeper(runtime.NoDelay),
			runtime.WithRenderer(ports.RenderFunc(func(_ context.Context, f domain.Frame) {
				if f.Status == domain.StatusRunning {
					// A slow sink widens the window between taking and rendering a frame.
					time.Sleep(100 * time.Microsecond)
				}
				last.Store(&f)
			})),
		)

		require.True(t, c.Start())
		time.Sleep(2 * time.Millisecond)
		require.True(t, c.Pause())

		got := last.Load()
		require.NotNil(t, got)
		assert.Equal(t, domain.StatusPaused, got.Status, "trial %d: pause frame rendered last", trial)

		time.Sleep(5 * time.Millisecond)
		assert.Equal(t, domain.StatusPaused, last.Load().Status, "trial %d: no step frame after pause", trial)
		require.NoError(t, c.Close())
	}
}

func TestController_HardResetStopsDriverStartedConcurrently(t *testing.T) {
	c := runtime.NewController(runtime.WithSize(20), runtime.WithSpeed(domain.MinSpeed))
	defer c.Close()

	for i := range 50 {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Start()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		require.NoError(t, c.HardReset(ctx))
		wg.Wait()

		if c.Status() == domain.StatusIdle {
			// Idle means no driver may still hold the session.
			waitCtx, waitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			assert.NoError(t, c.Wait(waitCtx), "iteration %d", i)
			waitCancel()
		} else {
			require.NoError(t, c.HardReset(ctx))
		}
		cancel()
	}
}
