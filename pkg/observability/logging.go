package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/sortvis/pkg/domain"
)

// LogHooks logs run boundaries at Info and status transitions at Debug.
// Steps are not logged; use Metrics for per-step volume.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_start",
				"session_id", e.SessionID,
				"algorithm", e.Algorithm,
				"size", e.Size,
			)
		},
		OnStatusChange: func(ctx context.Context, e *domain.StatusEvent) {
			logger.DebugContext(ctx, "status_change",
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
			)
		},
		OnRunComplete: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_end",
				"session_id", e.SessionID,
				"algorithm", e.Algorithm,
				"cancelled", e.Cancelled,
				"comparisons", e.Counters.Comparisons,
				"swaps", e.Counters.Swaps,
				"writes", e.Counters.Writes,
				"elapsed", e.Elapsed,
			)
		},
	}
}
