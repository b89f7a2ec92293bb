package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"library-rental-backend/internal/jobs"
	"library-rental-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler registers each job in schedules (job name → cron spec with seconds) with the runner.
// Every named job must be known to the runner.
func NewScheduler(jobRunner *jobs.JobRunner, schedules map[string]string) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(schedules); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs(schedules map[string]string) error {
	known := make(map[string]bool)
	for _, name := range s.jobs.Names() {
		known[name] = true
	}

	for name, spec := range schedules {
		if !known[name] {
			return fmt.Errorf("schedule for %q: %w", name, jobs.ErrUnknownJob)
		}
		if _, err := s.cron.AddFunc(spec, s.jobs.Func(name)); err != nil {
			return fmt.Errorf("register job %s with schedule %q: %w", name, spec, err)
		}
		logger.Info("Registered cron job", "job", name, "schedule", spec)
	}

	logger.Info("All cron jobs registered successfully", "count", len(schedules))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries returns the number of registered cron entries
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// NextRun returns the next scheduled run across all entries, or zero when nothing is scheduled.
// Only meaningful after Start.
func (s *Scheduler) NextRun() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}
