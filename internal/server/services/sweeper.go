package services

import (
	"context"
	"time"
)

// RunSweeper calls SweepExpired every interval until ctx is done.
// Failures are logged and the loop carries on.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "session sweeper started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "session sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error(ctx, "session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info(ctx, "expired sessions swept", "count", n)
			}
		}
	}
}
