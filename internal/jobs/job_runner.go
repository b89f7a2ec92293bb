package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-rental-backend/internal/logger"
)

var ErrUnknownJob = errors.New("unknown job")

// JobRunner runs registered jobs by name
type JobRunner struct {
	jobs    map[string]Job
	names   []string
	timeout time.Duration
}

// NewJobRunner registers jobs under their names. A zero timeout means no deadline.
func NewJobRunner(timeout time.Duration, jobs ...Job) *JobRunner {
	jr := &JobRunner{jobs: make(map[string]Job, len(jobs)), timeout: timeout}
	for _, j := range jobs {
		jr.jobs[j.Name()] = j
		jr.names = append(jr.names, j.Name())
	}
	return jr
}

// Names returns the registered job names in registration order
func (jr *JobRunner) Names() []string {
	return append([]string(nil), jr.names...)
}

// RunOnce runs the named job synchronously and returns its error
func (jr *JobRunner) RunOnce(ctx context.Context, name string) error {
	job, ok := jr.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	return jr.runWithRecovery(ctx, job)
}

// Func adapts the named job to the func() form cron expects. Errors are logged, not returned.
func (jr *JobRunner) Func(name string) func() {
	return func() {
		if err := jr.RunOnce(context.Background(), name); err != nil {
			logger.Error("Job failed", "job", name, "error", err)
		}
	}
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(ctx context.Context, job Job) (err error) {
	log := logger.WithJob(job.Name())
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
			err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
		}
	}()

	if jr.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, jr.timeout)
		defer cancel()
	}

	log.Info("Starting job")
	if err = job.Run(ctx); err != nil {
		log.Error("Job failed", "error", err, "duration", time.Since(start))
		return err
	}
	log.Info("Job completed", "duration", time.Since(start))
	return nil
}
