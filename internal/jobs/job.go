package jobs

import "context"

// Job is one recurring unit of work. The scheduler triggers it and Run performs a single pass.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}
