package http

import (
	"encoding/json"

	"github.com/aretw0/sortvis/pkg/domain"
)

// frameCursor follows the diff chain one SSE client has applied. Stale diffs are
// skipped and a broken chain is repaired with a full frame from snapshot.
type frameCursor struct {
	id       string
	last     uint64
	snapshot func() domain.Frame
}

func newFrameCursor(id string, snapshot func() domain.Frame) *frameCursor {
	return &frameCursor{id: id, snapshot: snapshot}
}

// baseline returns a full diff of the current snapshot and moves the cursor to it.
func (c *frameCursor) baseline() []byte {
	frame := c.snapshot()
	payload, err := json.Marshal(domain.Diff(c.id, nil, &frame))
	if err != nil {
		return nil
	}
	c.last = frame.Seq
	return payload
}

// next returns what to send for msg: msg itself, a fresh baseline when frames went
// missing, or nil when msg is older than what the client has.
// Payloads that are not sequenced diffs pass through.
func (c *frameCursor) next(msg []byte) (payload []byte, resynced bool) {
	var diff domain.FrameDiff
	if err := json.Unmarshal(msg, &diff); err != nil || diff.Seq == 0 {
		return msg, false
	}
	if diff.Seq <= c.last {
		return nil, false
	}
	// Frames between Base and Seq were never published, so they all match Base.
	if diff.Base <= c.last {
		c.last = diff.Seq
		return msg, false
	}
	return c.baseline(), true
}
