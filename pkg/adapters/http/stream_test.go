package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/sortvis"
	"github.com/aretw0/sortvis/pkg/adapters/memory"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/aretw0/sortvis/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqFrame(seq uint64, values ...int) domain.Frame {
	return domain.Frame{
		Seq:       seq,
		Values:    values,
		Status:    domain.StatusRunning,
		Algorithm: domain.AlgorithmBubble,
		Highlight: domain.NewHighlight(),
		Sorted:    []int{},
	}
}

func marshalDiff(t *testing.T, old, new *domain.Frame) []byte {
	t.Helper()
	payload, err := json.Marshal(domain.Diff("s", old, new))
	require.NoError(t, err)
	return payload
}

func TestFrameCursor_FollowsChain(t *testing.T) {
	f1, f2, f3, f4 := seqFrame(1, 3, 2, 1), seqFrame(2, 2, 3, 1), seqFrame(3, 2, 1, 3), seqFrame(4, 1, 2, 3)
	current := f1
	cursor := newFrameCursor("s", func() domain.Frame { return current })

	var client domain.Frame
	apply := func(payload []byte) {
		var d domain.FrameDiff
		require.NoError(t, json.Unmarshal(payload, &d))
		client.Apply(&d)
	}
	apply(cursor.baseline())
	assert.Equal(t, uint64(1), cursor.last)

	stale := marshalDiff(t, nil, &f1)
	payload, resynced := cursor.next(stale)
	assert.Nil(t, payload, "frames the client already has are skipped")
	assert.False(t, resynced)

	next := marshalDiff(t, &f1, &f2)
	payload, resynced = cursor.next(next)
	assert.Equal(t, next, payload)
	assert.False(t, resynced)
	apply(payload)

	// f3 is lost; the diff against it cannot be applied.
	current = f4
	payload, resynced = cursor.next(marshalDiff(t, &f3, &f4))
	require.NotNil(t, payload)
	assert.True(t, resynced)
	apply(payload)
	assert.Equal(t, uint64(4), cursor.last)
	assert.Equal(t, f4.Values, client.Values)

	payload, _ = cursor.next([]byte("not json"))
	assert.Equal(t, []byte("not json"), payload)
}

func TestFrameCursor_AcceptsDiffAfterUnpublishedSnapshot(t *testing.T) {
	f1 := seqFrame(1, 2, 1)
	f2 := seqFrame(2, 2, 1) // identical to f1, never published
	f3 := seqFrame(3, 1, 2)
	cursor := newFrameCursor("s", func() domain.Frame { return f2 })
	cursor.baseline()

	payload, resynced := cursor.next(marshalDiff(t, &f1, &f3))
	assert.NotNil(t, payload)
	assert.False(t, resynced)
	assert.Equal(t, uint64(3), cursor.last)
}

func TestFrameCursor_ConvergesAfterDrops(t *testing.T) {
	ctx := context.Background()
	bus := memory.NewBus(memory.WithBuffer(1))
	factory := session.NewFactory(bus, nil, sortvis.WithSize(16), sortvis.WithSeed(3), sortvis.WithInstant())
	sess, err := factory("s1")
	require.NoError(t, err)
	defer sess.Close()

	ch, cancel, err := bus.Subscribe(ctx, "s1")
	require.NoError(t, err)
	defer cancel()

	cursor := newFrameCursor("s1", sess.Snapshot)
	var client domain.Frame
	var base domain.FrameDiff
	require.NoError(t, json.Unmarshal(cursor.baseline(), &base))
	client.Apply(&base)

	require.True(t, sess.Start())
	require.NoError(t, sess.Wait(ctx))

	var resyncs int
	for drained := false; !drained; {
		select {
		case msg := <-ch:
			payload, resynced := cursor.next(msg)
			if resynced {
				resyncs++
			}
			if payload == nil {
				continue
			}
			var d domain.FrameDiff
			require.NoError(t, json.Unmarshal(payload, &d))
			client.Apply(&d)
		default:
			drained = true
		}
	}

	final := sess.Snapshot()
	assert.Positive(t, resyncs, "a one frame buffer must have dropped frames")
	assert.Equal(t, final.Seq, client.Seq)
	assert.Equal(t, final.Values, client.Values)
	assert.Equal(t, final.Sorted, client.Sorted)
	assert.Equal(t, final.Status, client.Status)
	assert.Equal(t, final.Counters, client.Counters)
}

func TestSubscribeEvents_SlowClientConverges(t *testing.T) {
	bus := memory.NewBus(memory.WithBuffer(1))
	mgr := session.NewManager(session.NewFactory(bus, nil, sortvis.WithSize(32), sortvis.WithSeed(5), sortvis.WithInstant()))
	defer mgr.Close()
	srv := httptest.NewServer(NewHandler(mgr, bus))
	defer srv.Close()

	sess, _, err := mgr.GetOrCreate(context.Background(), "s1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/sessions/s1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var client domain.Frame
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	readEvents(t, scanner, func(d domain.FrameDiff) bool {
		client.Apply(&d)
		return true
	})

	require.True(t, sess.Start())
	readEvents(t, scanner, func(d domain.FrameDiff) bool {
		assert.LessOrEqual(t, d.Base, client.Seq, "diffs always apply to what the client holds")
		client.Apply(&d)
		return client.Status == domain.StatusCompleted
	})

	final := sess.Snapshot()
	assert.Equal(t, final.Values, client.Values)
	assert.Equal(t, final.Sorted, client.Sorted)
	assert.Equal(t, final.Counters, client.Counters)
}
