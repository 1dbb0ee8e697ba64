package scheduler

// ExportedPruneDeliveries exposes the private pruneDeliveries job for external tests.
func (s *Scheduler) ExportedPruneDeliveries() {
	s.pruneDeliveries()
}
