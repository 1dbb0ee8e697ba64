// Package scheduler runs the notifier's periodic maintenance jobs on gocron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/shaharia-lab/notifier/internal/storage"
)

// JobPruneDeliveries is the name of the delivery log retention job.
const JobPruneDeliveries = "prune-deliveries"

const defaultPruneInterval = time.Hour

// Config holds the scheduler configuration.
type Config struct {
	Deliveries storage.DeliveryStore
	// Retention is how long delivery log entries are kept. Zero disables
	// pruning.
	Retention time.Duration
	// PruneInterval is how often the retention job runs. Defaults to an hour.
	PruneInterval time.Duration
	Logger        *slog.Logger
	Now           func() time.Time
}

// Scheduler owns the gocron scheduler and the jobs registered on it.
type Scheduler struct {
	cron   gocron.Scheduler
	cfg    Config
	jobs   map[string]uuid.UUID
	mu     sync.Mutex
	logger *slog.Logger
}

// New creates a Scheduler. Jobs are registered by Start.
func New(cfg Config) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = defaultPruneInterval
	}
	return &Scheduler{
		cron:   cron,
		cfg:    cfg,
		jobs:   make(map[string]uuid.UUID),
		logger: cfg.Logger,
	}, nil
}

// Start registers the maintenance jobs and starts the scheduler.
func (s *Scheduler) Start(_ context.Context) error {
	if s.cfg.Deliveries != nil && s.cfg.Retention > 0 {
		err := s.schedule(JobPruneDeliveries,
			gocron.DurationJob(s.cfg.PruneInterval),
			s.pruneDeliveries,
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", s.JobCount())
	return nil
}

// Stop shuts down the gocron scheduler, waiting for running jobs.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// JobCount returns the number of registered jobs.
func (s *Scheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// schedule adds or replaces the named job.
func (s *Scheduler) schedule(name string, def gocron.JobDefinition, fn func(), opts ...gocron.JobOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if jobID, ok := s.jobs[name]; ok {
		if err := s.cron.RemoveJob(jobID); err != nil {
			s.logger.Warn("failed to remove existing job", "job", name, "error", err)
		}
		delete(s.jobs, name)
	}

	opts = append(opts, gocron.WithName(name), gocron.WithSingletonMode(gocron.LimitModeReschedule))
	job, err := s.cron.NewJob(def, gocron.NewTask(fn), opts...)
	if err != nil {
		return fmt.Errorf("scheduling job %q: %w", name, err)
	}
	s.jobs[name] = job.ID()
	s.logger.Info("job scheduled", "job", name)
	return nil
}
