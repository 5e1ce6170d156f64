package scheduler

import (
	"time"

	"github.com/scooplab/custard/pkg/logger"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithJobName sets the job name the cursor is keyed by.
func WithJobName(job string) Option {
	return func(s *Scheduler) {
		if job != "" {
			s.job = job
		}
	}
}

// WithBatchSize sets how many targets one tick consumes.
func WithBatchSize(size int) Option {
	return func(s *Scheduler) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithInterval sets the tick interval.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(log logger.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}
