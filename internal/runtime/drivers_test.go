package runtime_test

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/aretw0/sortvis/internal/runtime"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runDriver executes a driver synchronously without delays and returns the final state.
func runDriver(t *testing.T, alg domain.Algorithm, values []int) *domain.RunState {
	t.Helper()
	driver, err := runtime.DriverFor(alg, runtime.MergeTraceFull)
	require.NoError(t, err)

	state := domain.NewRunState(alg, slices.Clone(values), domain.DefaultSpeed)
	state.Status = domain.StatusRunning
	s := runtime.NewStepper(context.Background(), state, runtime.StepperConfig{
		Sleep: runtime.NoDelay,
		Rand:  rand.New(rand.NewPCG(7, 11)),
	})
	require.NoError(t, driver(s))
	return state
}

func TestDrivers_SortRandomArrays(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, alg := range domain.Algorithms() {
		t.Run(string(alg), func(t *testing.T) {
			for _, size := range []int{0, 1, 2, 5, 17, 64, 100} {
				values := runtime.GenerateArray(rng, size)
				want := slices.Clone(values)
				slices.Sort(want)

				state := runDriver(t, alg, values)
				assert.Equal(t, want, state.Values, "size %d", size)
			}
		})
	}
}

func TestDrivers_EmptyAndSingleIssueNoComparisons(t *testing.T) {
	for _, alg := range domain.Algorithms() {
		for _, values := range [][]int{{}, {42}} {
			state := runDriver(t, alg, values)
			assert.Zero(t, state.Counters.Comparisons, "%s on %v", alg, values)
			assert.Zero(t, state.Counters.Swaps, "%s on %v", alg, values)
		}
	}
}

func TestDrivers_AllEqualValues(t *testing.T) {
	values := []int{50, 50, 50, 50, 50, 50, 50}
	for _, alg := range domain.Algorithms() {
		state := runDriver(t, alg, values)
		assert.Equal(t, values, state.Values, alg)
	}

	state := runDriver(t, domain.AlgorithmQuick, values)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, state.SortedIndices())
}

func TestBubble_Example(t *testing.T) {
	state := runDriver(t, domain.AlgorithmBubble, []int{5, 3, 8, 1})

	assert.Equal(t, []int{1, 3, 5, 8}, state.Values)
	assert.Equal(t, 6, state.Counters.Comparisons)
	assert.Equal(t, 4, state.Counters.Swaps)
	assert.Zero(t, state.Counters.Writes)
	assert.Equal(t, []int{1, 2, 3}, state.SortedIndices())
}

func TestQuadraticComparisonCounts(t *testing.T) {
	values := []int{90, 10, 70, 30, 50, 20, 80, 40, 60, 100}
	n := len(values)
	for _, alg := range []domain.Algorithm{domain.AlgorithmBubble, domain.AlgorithmSelection} {
		state := runDriver(t, alg, values)
		assert.Equal(t, n*(n-1)/2, state.Counters.Comparisons, alg)
	}
}

func TestSelection_AtMostOneSwapPerPass(t *testing.T) {
	values := []int{4, 3, 2, 1, 0}
	state := runDriver(t, domain.AlgorithmSelection, []int{40, 30, 20, 10, 5})
	assert.LessOrEqual(t, state.Counters.Swaps, len(values)-1)

	sorted := runDriver(t, domain.AlgorithmSelection, []int{1, 2, 3, 4, 5})
	assert.Zero(t, sorted.Counters.Swaps, "self swaps are elided")
	assert.Equal(t, []int{0, 1, 2, 3}, sorted.SortedIndices())
}

func TestInsertion_CountsEveryEvaluatedComparison(t *testing.T) {
	// i=1: 5>3 shift (1), i=2: 5<8 stop (1), i=3: 8,5,3 > 1 shift (3).
	state := runDriver(t, domain.AlgorithmInsertion, []int{5, 3, 8, 1})
	assert.Equal(t, []int{1, 3, 5, 8}, state.Values)
	assert.Equal(t, 5, state.Counters.Comparisons)
	assert.Zero(t, state.Counters.Swaps)
	// 4 shifts + 3 key drops
	assert.Equal(t, 7, state.Counters.Writes)
}

func TestMerge_FullTraceReplaysEveryPlacement(t *testing.T) {
	values := []int{38, 27, 43, 3, 9, 82, 10}
	trace := runtime.TraceMerge(values, runtime.MergeTraceFull)

	replay := slices.Clone(values)
	for _, p := range trace {
		replay[p.Index] = p.Value
	}
	assert.True(t, slices.IsSorted(replay))

	state := runDriver(t, domain.AlgorithmMerge, values)
	assert.Equal(t, len(trace), state.Counters.Writes)
	assert.Zero(t, state.Counters.Comparisons)
	assert.Zero(t, state.Counters.Swaps)
	assert.Equal(t, replay, state.Values)
}

func TestMerge_FinalTraceWritesExactlyN(t *testing.T) {
	values := []int{38, 27, 43, 3, 9, 82, 10}
	trace := runtime.TraceMerge(values, runtime.MergeTraceFinal)
	require.Len(t, trace, len(values))
	for k, p := range trace {
		assert.Equal(t, k, p.Index)
	}

	state := domain.NewRunState(domain.AlgorithmMerge, slices.Clone(values), domain.DefaultSpeed)
	s := runtime.NewStepper(context.Background(), state, runtime.StepperConfig{Sleep: runtime.NoDelay})
	require.NoError(t, runtime.Merge(s, runtime.MergeTraceFinal))
	assert.Equal(t, len(values), state.Counters.Writes)
	assert.True(t, slices.IsSorted(state.Values))
}

func TestParseMergeTrace(t *testing.T) {
	mode, err := runtime.ParseMergeTrace("")
	require.NoError(t, err)
	assert.Equal(t, runtime.MergeTraceFull, mode)

	mode, err = runtime.ParseMergeTrace(" Final ")
	require.NoError(t, err)
	assert.Equal(t, runtime.MergeTraceFinal, mode)

	_, err = runtime.ParseMergeTrace("partial")
	assert.Error(t, err)
}

func TestDriverFor_Unknown(t *testing.T) {
	_, err := runtime.DriverFor("bogo", runtime.MergeTraceFull)
	assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)
}

func TestStepper_HighlightsAndEvents(t *testing.T) {
	state := domain.NewRunState(domain.AlgorithmBubble, []int{30, 10, 20}, domain.DefaultSpeed)

	var kinds []domain.StepKind
	var frames []domain.Frame
	s := runtime.NewStepper(context.Background(), state, runtime.StepperConfig{
		Sleep: runtime.NoDelay,
		Observe: func(_ context.Context, f domain.Frame, ev *domain.StepEvent) {
			frames = append(frames, f)
			if ev != nil {
				kinds = append(kinds, ev.Kind)
			}
		},
	})

	c, err := s.Compare(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, c)
	assert.Equal(t, []int{0, 1}, frames[0].Highlight.Comparing)

	require.NoError(t, s.Swap(0, 1))
	assert.Equal(t, []int{0, 1}, frames[1].Highlight.Swapping)
	assert.Equal(t, []int{10, 30, 20}, frames[1].Values)

	require.NoError(t, s.Swap(2, 2))
	assert.Len(t, frames, 2, "self swap emits no frame")

	require.NoError(t, s.Write(2, 99))
	assert.Equal(t, 2, frames[2].Highlight.Writing)
	assert.Equal(t, domain.NoIndex, state.Highlight.Writing, "writing highlight clears after the delay")

	s.MarkSorted(2, 7)
	assert.Equal(t, []int{2}, frames[3].Sorted)

	assert.Equal(t, []domain.StepKind{domain.StepCompare, domain.StepSwap, domain.StepWrite}, kinds)
	assert.Equal(t, domain.Counters{Comparisons: 1, Swaps: 1, Writes: 1}, state.Counters)
}

func TestStepper_CancelledRunDoesNotMutate(t *testing.T) {
	state := domain.NewRunState(domain.AlgorithmBubble, []int{3, 2, 1}, domain.DefaultSpeed)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := runtime.NewStepper(ctx, state, runtime.StepperConfig{Sleep: runtime.NoDelay})
	err := s.Swap(0, 2)
	assert.ErrorIs(t, err, domain.ErrRunCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{3, 2, 1}, state.Values)
	assert.Zero(t, state.Counters.Swaps)

	assert.ErrorIs(t, s.Swap(1, 1), domain.ErrRunCancelled)
}

func TestGenerateArray_Bounds(t *testing.T) {
	values := runtime.GenerateArray(rand.New(rand.NewPCG(3, 4)), 500)
	require.Len(t, values, 500)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, domain.MinValue)
		assert.Less(t, v, domain.MaxValue)
	}
	assert.Empty(t, runtime.GenerateArray(rand.New(rand.NewPCG(3, 4)), -1))
}
