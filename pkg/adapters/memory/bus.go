package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/sortvis/internal/logging"
)

// DefaultBuffer is the per-subscriber frame buffer.
const DefaultBuffer = 16

// Bus implements ports.FrameBus inside one process.
// Safe for concurrent use. A full subscriber buffer drops its oldest frame, so the
// newest one is always delivered.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan []byte]struct{} // SessionID -> Set of Channels
	buffer      int
	logger      *slog.Logger
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

// NewBus creates an empty in-memory bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subscribers: make(map[string]map[chan []byte]struct{}),
		buffer:      DefaultBuffer,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a subscriber of sessionID. Calling cancel more than once is safe.
func (b *Bus) Subscribe(_ context.Context, sessionID string) (<-chan []byte, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []byte, b.buffer)
	if _, ok := b.subscribers[sessionID]; !ok {
		b.subscribers[sessionID] = make(map[chan []byte]struct{})
	}
	b.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.subscribers[sessionID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(b.subscribers, sessionID)
				}
			}
			close(ch)
		})
	}, nil
}

// Publish delivers payload to every subscriber of sessionID without blocking.
// Subscribers share the payload slice and must not modify it.
func (b *Bus) Publish(_ context.Context, sessionID string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[sessionID] {
		if dropped := pushNewest(ch, payload); dropped > 0 {
			b.logger.Warn("Subscriber buffer full, dropped oldest frame", "session_id", sessionID)
		}
	}
	return nil
}

// pushNewest sends payload on ch, evicting queued frames until it fits.
// It returns how many frames were evicted.
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

// Subscribers returns the number of live subscribers of sessionID.
func (b *Bus) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[sessionID])
}
