package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/sortvis"
	"github.com/aretw0/sortvis/internal/logging"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/aretw0/sortvis/pkg/ports"
)

// Publisher is a ports.Renderer that publishes the JSON diff of consecutive frames
// of one session on a FrameBus.
type Publisher struct {
	bus    ports.FrameBus
	id     string
	logger *slog.Logger

	mu   sync.Mutex
	last *domain.Frame
}

// NewPublisher creates a Publisher for sessionID. A nil logger discards.
func NewPublisher(bus ports.FrameBus, sessionID string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Publisher{bus: bus, id: sessionID, logger: logger}
}

// Render implements ports.Renderer.
func (p *Publisher) Render(ctx context.Context, frame domain.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()

	diff := domain.Diff(p.id, p.last, &frame)
	if diff == nil {
		// last stays put so the next diff's Base names a frame clients have seen.
		return
	}
	p.last = &frame

	payload, err := json.Marshal(diff)
	if err != nil {
		p.logger.Error("Failed to encode frame diff", "session_id", p.id, "err", err)
		return
	}
	// The reset frame is rendered after the run context is cancelled and must still go out.
	if err := p.bus.Publish(context.WithoutCancel(ctx), p.id, payload); err != nil {
		p.logger.Warn("Failed to publish frame", "session_id", p.id, "err", err)
	}
}

// NewFactory returns a Factory whose sessions publish their frames on bus.
// opts are applied after the defaults, so they may override the logger.
func NewFactory(bus ports.FrameBus, logger *slog.Logger, opts ...sortvis.Option) Factory {
	if logger == nil {
		logger = logging.NewNop()
	}
	return func(id string) (*sortvis.Session, error) {
		all := make([]sortvis.Option, 0, len(opts)+3)
		all = append(all,
			sortvis.WithID(id),
			sortvis.WithLogger(logger),
			sortvis.WithRenderer(NewPublisher(bus, id, logger)),
		)
		all = append(all, opts...)
		return sortvis.New(all...)
	}
}
