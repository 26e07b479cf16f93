package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/sortvis/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FrameBusContractTest is a reusable test suite that verifies if an adapter complies with ports.FrameBus.
func FrameBusContractTest(t *testing.T, bus ports.FrameBus) {
	t.Helper()
	ctx := context.Background()
	sessionID := "contract-" + time.Now().Format("20060102150405.000000")

	t.Run("Publish reaches subscriber", func(t *testing.T) {
		ch, cancel, err := bus.Subscribe(ctx, sessionID)
		require.NoError(t, err)
		defer cancel()

		require.NoError(t, bus.Publish(ctx, sessionID, []byte(`{"n":1}`)))

		select {
		case msg := <-ch:
			assert.JSONEq(t, `{"n":1}`, string(msg))
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for published frame")
		}
	})

	t.Run("Sessions are isolated", func(t *testing.T) {
		ch, cancel, err := bus.Subscribe(ctx, sessionID+"-a")
		require.NoError(t, err)
		defer cancel()

		require.NoError(t, bus.Publish(ctx, sessionID+"-b", []byte("other")))
		require.NoError(t, bus.Publish(ctx, sessionID+"-a", []byte("mine")))

		select {
		case msg := <-ch:
			assert.Equal(t, "mine", string(msg))
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for published frame")
		}
	})

	t.Run("Slow subscriber keeps the newest frame", func(t *testing.T) {
		ch, cancel, err := bus.Subscribe(ctx, sessionID+"-slow")
		require.NoError(t, err)
		defer cancel()

		const total = 200
		for i := range total {
			require.NoError(t, bus.Publish(ctx, sessionID+"-slow", []byte(fmt.Sprintf(`{"n":%d}`, i))))
		}

		want := fmt.Sprintf(`{"n":%d}`, total-1)
		timeout := time.After(2 * time.Second)
		for {
			select {
			case msg := <-ch:
				if string(msg) == want {
					return
				}
			case <-timeout:
				t.Fatal("the last published frame never arrived")
			}
		}
	})

	t.Run("Publish without subscribers", func(t *testing.T) {
		assert.NoError(t, bus.Publish(ctx, sessionID+"-nobody", []byte("x")))
	})

	t.Run("Cancel closes channel", func(t *testing.T) {
		ch, cancel, err := bus.Subscribe(ctx, sessionID+"-closed")
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-ch:
			assert.False(t, ok, "channel should be closed after cancel")
		case <-time.After(2 * time.Second):
			t.Fatal("channel was not closed")
		}
	})
}
