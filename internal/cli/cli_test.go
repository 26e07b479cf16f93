package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/sortvis"
	"github.com/aretw0/sortvis/internal/config"
	"github.com/aretw0/sortvis/internal/logging"
	"github.com/aretw0/sortvis/internal/testutils"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/aretw0/sortvis/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Size = 12
	cfg.Seed = 42
	return cfg
}

func TestRunHeadless_PrintsSummary(t *testing.T) {
	for _, alg := range domain.Algorithms() {
		t.Run(string(alg), func(t *testing.T) {
			cfg := testConfig()
			cfg.Algorithm = string(alg)

			var out bytes.Buffer
			require.NoError(t, Execute(context.Background(), RunOptions{Config: cfg, Headless: true, Out: &out}))

			var summary Summary
			require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
			assert.Equal(t, alg, summary.Algorithm)
			assert.Equal(t, domain.StatusCompleted, summary.Status)
			assert.Equal(t, 12, summary.Size)
			assert.True(t, summary.Sorted)
			if alg == domain.AlgorithmMerge {
				// Merge compares while tracing; only the replayed writes are counted.
				assert.Zero(t, summary.Counters.Comparisons)
				assert.Positive(t, summary.Counters.Writes)
			} else {
				assert.Positive(t, summary.Counters.Comparisons)
			}
		})
	}
}

func TestRunHeadless_SeedIsReproducible(t *testing.T) {
	run := func() Summary {
		var out bytes.Buffer
		require.NoError(t, RunHeadless(context.Background(), RunOptions{Config: testConfig(), Out: &out}))
		var s Summary
		require.NoError(t, json.Unmarshal(out.Bytes(), &s))
		return s
	}
	a, b := run(), run()
	assert.Equal(t, a.Values, b.Values)
	assert.Equal(t, a.Counters, b.Counters)
}

func TestSummarize_DetectsUnsorted(t *testing.T) {
	s := Summarize(domain.Frame{Values: []int{3, 1, 2}, Status: domain.StatusIdle})
	assert.False(t, s.Sorted)
	assert.Equal(t, 3, s.Size)
}

func TestRunInteractive_RequiresTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()

	err = Execute(context.Background(), RunOptions{Config: testConfig(), In: f, Out: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "--headless")
}

func TestHandleKey(t *testing.T) {
	ctx := context.Background()
	sess, err := sortvis.New(sortvis.WithSize(10), sortvis.WithSpeed(50), sortvis.WithInstant())
	require.NoError(t, err)
	defer sess.Close()

	assert.False(t, HandleKey(ctx, sess, '+'))
	assert.Equal(t, 55, sess.Snapshot().Speed)
	HandleKey(ctx, sess, '-')
	HandleKey(ctx, sess, '-')
	assert.Equal(t, 45, sess.Snapshot().Speed)

	HandleKey(ctx, sess, '>')
	assert.Len(t, sess.Snapshot().Values, 15)
	HandleKey(ctx, sess, '<')
	HandleKey(ctx, sess, '<')
	HandleKey(ctx, sess, '<')
	assert.Len(t, sess.Snapshot().Values, domain.MinSize, "size is clamped")

	HandleKey(ctx, sess, '4')
	assert.Equal(t, domain.AlgorithmMerge, sess.Snapshot().Algorithm)
	HandleKey(ctx, sess, '9')
	assert.Equal(t, domain.AlgorithmMerge, sess.Snapshot().Algorithm, "unknown digits are ignored")

	before := sess.Snapshot().Values
	HandleKey(ctx, sess, 'n')
	assert.Len(t, sess.Snapshot().Values, len(before))

	HandleKey(ctx, sess, 's')
	require.NoError(t, sess.Wait(ctx))
	assert.Equal(t, domain.StatusCompleted, sess.Status())

	HandleKey(ctx, sess, '1')
	assert.Equal(t, domain.AlgorithmMerge, sess.Snapshot().Algorithm, "completed sessions ignore configuration")

	HandleKey(ctx, sess, 'r')
	assert.Equal(t, domain.StatusIdle, sess.Status())
	assert.Equal(t, domain.DefaultAlgorithm, sess.Snapshot().Algorithm, "reset restores the initial settings")

	for _, k := range []byte{'q', 3, 4} {
		assert.True(t, HandleKey(ctx, sess, k))
	}
}

func TestHandleKey_TogglePause(t *testing.T) {
	ctx := context.Background()
	sess, err := sortvis.New(sortvis.WithSize(20), sortvis.WithSpeed(1))
	require.NoError(t, err)
	defer sess.Close()

	HandleKey(ctx, sess, 's')
	HandleKey(ctx, sess, 'p')
	assert.Equal(t, domain.StatusPaused, sess.Status())
	HandleKey(ctx, sess, ' ')
	assert.Equal(t, domain.StatusRunning, sess.Status())
	HandleKey(ctx, sess, 'r')
	assert.Equal(t, domain.StatusIdle, sess.Status())
}

func TestHandleKey_LogsFailedReset(t *testing.T) {
	release := make(chan struct{})
	var logs bytes.Buffer
	sess, err := sortvis.New(
		sortvis.WithSize(10),
		sortvis.WithInstant(),
		sortvis.WithLogger(logging.NewWriter(&logs, slog.LevelInfo)),
		sortvis.WithRenderer(ports.RenderFunc(func(_ context.Context, f domain.Frame) {
			if f.Counters.Comparisons > 0 {
				<-release // hold the driver inside its first step
			}
		})),
	)
	require.NoError(t, err)
	defer sess.Close()

	require.True(t, sess.Start())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, HandleKey(ctx, sess, 'r'))
	assert.Contains(t, logs.String(), "Hard reset failed")
	assert.Contains(t, logs.String(), "context canceled")
	assert.Equal(t, domain.StatusRunning, sess.Status(), "a failed reset leaves the run in place")

	close(release)
	require.NoError(t, sess.HardReset(context.Background()))
	assert.Equal(t, domain.StatusIdle, sess.Status())
}

func TestCreateLogger(t *testing.T) {
	_, err := CreateLogger("loud", false)
	assert.Error(t, err)

	logger, err := CreateLogger("info", true)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError), "interactive mode stays quiet")

	logger, err = CreateLogger("debug", true)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestShowDocs(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ShowDocs(context.Background(), &out, DocsOptions{Algorithm: "insertion", Raw: true}))
	assert.True(t, strings.HasPrefix(out.String(), "# Insertion Sort"))

	out.Reset()
	require.NoError(t, ShowDocs(context.Background(), &out, DocsOptions{Algorithm: "insertion", Width: 60}))
	assert.Contains(t, out.String(), "Insertion Sort")

	err := ShowDocs(context.Background(), &out, DocsOptions{Algorithm: "bogo"})
	assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)
}

func TestShowDocs_Overrides(t *testing.T) {
	dir := testutils.WriteTree(t, map[string]string{
		"bubble.md": "---\nname: Sinking Sort\n---\nLarger values sink to the end.\n",
	})

	var out bytes.Buffer
	require.NoError(t, ShowDocs(context.Background(), &out, DocsOptions{Algorithm: "bubble", DocsDir: dir, Raw: true}))
	assert.Contains(t, out.String(), "# Sinking Sort")
	assert.Contains(t, out.String(), "Larger values sink to the end.")
}

func TestStack_InMemory(t *testing.T) {
	st, err := NewStack(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	defer st.Close()

	srv := httptest.NewServer(st.HTTPHandler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sessions", "application/json", strings.NewReader(`{"id":"s1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	sess, err := st.Sessions.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, sess.Snapshot().Values, 12, "sessions follow the config")

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.NotNil(t, st.MCPServer())
}

func TestStack_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	st, err := NewStack(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer st.Close()

	_, created, err := st.Sessions.GetOrCreate(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, mr.Keys(), "locks are released after each control")
}

func TestStack_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr

	_, err := NewStack(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestServeMCP_UnknownTransport(t *testing.T) {
	err := ServeMCP(context.Background(), testConfig(), "carrier-pigeon", nil)
	assert.ErrorContains(t, err, "unknown transport")
}
