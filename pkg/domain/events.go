package domain

import (
	"context"
	"time"
)

// StepKind defines the category of a step primitive.
type StepKind string

const (
	StepCompare StepKind = "compare"
	StepSwap    StepKind = "swap"
	StepWrite   StepKind = "write"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
	Algorithm Algorithm `json:"algorithm"`
}

// StepEvent represents one executed step primitive.
type StepEvent struct {
	EventBase
	Kind     StepKind `json:"kind"`
	Indices  []int    `json:"indices"`
	Counters Counters `json:"counters"`
}

// RunEvent represents the start or the end of a run.
type RunEvent struct {
	EventBase
	Size     int           `json:"size"`
	Status   Status        `json:"status"`
	Counters Counters      `json:"counters"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	// Cancelled is set when the run ended through a hard reset instead of completing.
	Cancelled bool `json:"cancelled,omitempty"`
}

// StatusEvent represents a lifecycle transition.
type StatusEvent struct {
	EventBase
	From Status `json:"from"`
	To   Status `json:"to"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run on the goroutine that caused the event; they must not block.
type LifecycleHooks struct {
	OnRunStart     func(context.Context, *RunEvent)
	OnStep         func(context.Context, *StepEvent)
	OnStatusChange func(context.Context, *StatusEvent)
	OnRunComplete  func(context.Context, *RunEvent)
}

// CombineHooks fans every event out to all hook sets, in order.
func CombineHooks(sets ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *RunEvent) {
			for _, h := range sets {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnStep: func(ctx context.Context, e *StepEvent) {
			for _, h := range sets {
				if h.OnStep != nil {
					h.OnStep(ctx, e)
				}
			}
		},
		OnStatusChange: func(ctx context.Context, e *StatusEvent) {
			for _, h := range sets {
				if h.OnStatusChange != nil {
					h.OnStatusChange(ctx, e)
				}
			}
		},
		OnRunComplete: func(ctx context.Context, e *RunEvent) {
			for _, h := range sets {
				if h.OnRunComplete != nil {
					h.OnRunComplete(ctx, e)
				}
			}
		},
	}
}
