package draft

import (
	"context"
	"time"

	"github.com/itbasis/go-clock"
	"go.uber.org/zap"
)

const (
	pollInterval = 10 * time.Second
	pollLookback = time.Minute
)

// Scheduler periodically asks the coordinator to start drafts whose
// scheduled time has arrived. Start times are minute-grained, so a
// coarse poll is fine.
type Scheduler struct {
	coord    *Coordinator
	clk      clock.Clock
	log      *zap.Logger
	interval time.Duration
}

func NewScheduler(coord *Coordinator, clk clock.Clock, log *zap.Logger) *Scheduler {
	return &Scheduler{
		coord:    coord,
		clk:      clk,
		log:      log,
		interval: pollInterval,
	}
}

// Run polls until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.clk.Ticker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := s.clk.Now()
			if err := s.coord.StartDueDrafts(ctx, now.Add(-pollLookback), now); err != nil {
				s.log.Error("draft start poll failed", zap.Error(err))
			}
		}
	}
}
