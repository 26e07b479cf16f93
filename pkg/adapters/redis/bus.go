package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/sortvis/internal/logging"
	backend "github.com/redis/go-redis/v9"
)

// Bus implements ports.FrameBus on Redis pub/sub so that every replica serving a
// session can stream its frames. Channels are named <prefix>frames:<sessionID>.
type Bus struct {
	client backend.UniversalClient
	prefix string
	buffer int
	logger *slog.Logger
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithBuffer sets the per-subscriber buffer size.
func WithBuffer(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithLogger sets the logger used to report dropped frames.
func WithLogger(logger *slog.Logger) BusOption {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBus creates a Redis backed frame bus.
func NewBus(client backend.UniversalClient, prefix string, opts ...BusOption) *Bus {
	b := &Bus{
		client: client,
		prefix: prefix,
		buffer: 16,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) channel(sessionID string) string {
	return b.prefix + "frames:" + sessionID
}

// Publish sends payload to the session channel.
func (b *Bus) Publish(ctx context.Context, sessionID string, payload []byte) error {
	if err := b.client.Publish(ctx, b.channel(sessionID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// Subscribe opens a pub/sub subscription and confirms it before returning, so frames
// published after Subscribe returns are not lost. A full buffer evicts its oldest frame.
func (b *Bus) Subscribe(ctx context.Context, sessionID string) (<-chan []byte, func(), error) {
	pubsub := b.client.Subscribe(ctx, b.channel(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("redis subscribe failed: %w", err)
	}

	out := make(chan []byte, b.buffer)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-stop:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if pushNewest(out, []byte(msg.Payload)) > 0 {
					b.logger.Warn("Subscriber buffer full, dropped oldest frame", "session_id", sessionID)
				}
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(stop)
			_ = pubsub.Close()
			<-done
		})
	}, nil
}

func pushNewest(ch chan []byte, payload []byte) (dropped int) {
	for {
		select {
		case ch <- payload:
			return dropped
		default:
		}
		select {
		case <-ch:
			dropped++
		default:
		}
	}
}
