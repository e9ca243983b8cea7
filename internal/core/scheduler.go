package core

// scheduler.go runs periodic maintenance.
//
// Password reset tokens are single use and short lived, so consumed and
// expired rows are purged in the background. A failed run is logged and
// retried on the next tick; it never stops the process.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPurgeInterval is how often expired reset tokens are removed.
const DefaultPurgeInterval = time.Hour

// StartResetPurge purges once immediately, then every interval until ctx
// is cancelled.
func (s *Service) StartResetPurge(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	slog.Info("reset token purge started", "interval", interval)

	s.runResetPurge(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reset token purge stopped")
			return
		case <-ticker.C:
			s.runResetPurge(ctx)
		}
	}
}

func (s *Service) runResetPurge(ctx context.Context) {
	start := time.Now()
	n, err := s.PurgePasswordResets(ctx)
	if err != nil {
		slog.Error("reset token purge failed", "error", err)
		return
	}
	slog.Info("purged reset tokens",
		"tokens_purged", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
