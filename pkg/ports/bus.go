package ports

import "context"

// FrameBus fans serialized frames out to every subscriber of a session.
// Delivery is best effort: a slow subscriber loses its oldest queued frames but always
// receives the newest one. Payloads are domain.FrameDiff values whose Seq and Base let
// a subscriber notice the gap and resync from a snapshot.
type FrameBus interface {
	// Publish sends payload to all current subscribers of sessionID.
	Publish(ctx context.Context, sessionID string, payload []byte) error

	// Subscribe registers a new subscriber. The returned cancel function MUST be called
	// to release it; it closes the channel.
	Subscribe(ctx context.Context, sessionID string) (<-chan []byte, func(), error)
}
