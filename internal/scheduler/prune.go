package scheduler

import (
	"context"
	"time"
)

const pruneTimeout = 30 * time.Second

// pruneDeliveries drops delivery log entries older than the retention window.
func (s *Scheduler) pruneDeliveries() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	cutoff := s.cfg.Now().Add(-s.cfg.Retention)
	n, err := s.cfg.Deliveries.PruneDeliveries(ctx, cutoff)
	if err != nil {
		s.logger.Error("pruning delivery log failed", "cutoff", cutoff, "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("delivery log pruned", "removed", n, "cutoff", cutoff)
	}
}
