package clock

import (
	"context"
	"log/slog"
	"time"
)

// Releaser is the one capability the background sweep needs: evict every
// globally expired hold. Implemented by *postgres.HoldRepo.
type Releaser interface {
	ReleaseExpired(ctx context.Context, slotID string, now time.Time) (int64, error)
}

// Sweeper runs release_expired_holds() on a loose cadence (spec §4.2: "tens
// of seconds; neither the background sweep nor the opportunistic call is
// relied upon for correctness"). It is pure belt-and-suspenders — every
// query elsewhere already filters `active AND expires_at > now()`.
type Sweeper struct {
	releaser Releaser
	clock    Clock
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(releaser Releaser, clock Clock, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Sweeper{releaser: releaser, clock: clock, interval: interval, logger: logger}
}

// Run blocks, sweeping every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.releaser.ReleaseExpired(ctx, "", s.clock.Now())
			if err != nil {
				s.logger.Error("expiry sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("expiry sweep released holds", "count", n)
			}
		}
	}
}
