package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"library-rental-backend/internal/jobs"
)

type funcJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

func TestJobRunner_RunOnce(t *testing.T) {
	calls := 0
	jr := jobs.NewJobRunner(0,
		funcJob{name: "ok", run: func(context.Context) error { calls++; return nil }},
		funcJob{name: "fails", run: func(context.Context) error { return errors.New("boom") }},
		funcJob{name: "panics", run: func(context.Context) error { panic("bad state") }},
	)

	assert.Equal(t, []string{"ok", "fails", "panics"}, jr.Names())
	assert.NoError(t, jr.RunOnce(context.Background(), "ok"))
	assert.Equal(t, 1, calls)
	assert.EqualError(t, jr.RunOnce(context.Background(), "fails"), "boom")
	assert.ErrorContains(t, jr.RunOnce(context.Background(), "panics"), "panicked: bad state")
	assert.ErrorIs(t, jr.RunOnce(context.Background(), "missing"), jobs.ErrUnknownJob)
}

func TestJobRunner_Timeout(t *testing.T) {
	jr := jobs.NewJobRunner(10*time.Millisecond, funcJob{name: "slow", run: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	assert.ErrorIs(t, jr.RunOnce(context.Background(), "slow"), context.DeadlineExceeded)
}

func TestJobRunner_FuncSwallowsPanics(t *testing.T) {
	jr := jobs.NewJobRunner(0, funcJob{name: "panics", run: func(context.Context) error { panic("boom") }})
	assert.NotPanics(t, jr.Func("panics"))
	assert.NotPanics(t, jr.Func("missing"))
}
