package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Loop runs settlement on the configured interval until the context is
// cancelled. The interval is re-read every cycle so config hot reloads take
// effect without a restart.
func (s *Scheduler) Loop(ctx context.Context) {
	for {
		interval := s.configHolder.Get().RunInterval
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("settlement loop stopped")
			return
		case <-timer.C:
		}

		if err := s.RunOnce(ctx); err != nil {
			s.log.Error("settlement run failed", zap.Error(err))
		}
	}
}
