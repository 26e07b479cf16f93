package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/sortvis"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/aretw0/sortvis/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsCompletedRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	s, err := sortvis.New(
		sortvis.WithAlgorithm("bubble"),
		sortvis.WithValues([]int{5, 3, 8, 1}),
		sortvis.WithInstant(),
		sortvis.WithLifecycleHooks(m.Hooks()),
	)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6.0, testutil.ToFloat64(m.Steps.WithLabelValues("bubble", "compare")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Steps.WithLabelValues("bubble", "swap")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("bubble", "completed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("completed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RunDuration))

	n, err := testutil.GatherAndCount(reg, "sortvis_steps_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMetrics_CancelledRun(t *testing.T) {
	m := observability.NewMetrics(nil)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnRunStart(ctx, &domain.RunEvent{EventBase: domain.EventBase{Algorithm: domain.AlgorithmQuick}})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveRuns))

	hooks.OnRunComplete(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Algorithm: domain.AlgorithmQuick},
		Cancelled: true,
	})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("quick", "cancelled")))
	assert.Equal(t, 0, testutil.CollectAndCount(m.RunDuration), "cancelled runs are not timed")
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	hooks := domain.CombineHooks(observability.LogHooks(logger))
	hooks.OnRunComplete(context.Background(), &domain.RunEvent{
		EventBase: domain.EventBase{SessionID: "s1", Algorithm: domain.AlgorithmMerge},
		Counters:  domain.Counters{Writes: 12},
	})
	hooks.OnStep(context.Background(), &domain.StepEvent{})

	out := buf.String()
	assert.Contains(t, out, "msg=run_end")
	assert.Contains(t, out, "session_id=s1")
	assert.Contains(t, out, "writes=12")
}
