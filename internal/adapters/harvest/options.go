package harvest

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/scooplab/custard/pkg/logger"
)

// Option applies a configuration option to the Harvester.
type Option func(*Harvester)

// WithLogger sets a custom logger for the harvester.
func WithLogger(log logger.Logger) Option {
	return func(h *Harvester) {
		if log != nil {
			h.log = log
		}
	}
}

// WithTimeout bounds one fetch-and-store cycle.
func WithTimeout(timeout time.Duration) Option {
	return func(h *Harvester) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithRateLimit caps upstream fetches per second across the whole pool.
func WithRateLimit(perSec float64, burst int) Option {
	return func(h *Harvester) {
		if perSec > 0 && burst > 0 {
			h.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
		}
	}
}

// WithClock overrides the wall clock; used by tests to pin the capture day.
func WithClock(now func() time.Time) Option {
	return func(h *Harvester) {
		if now != nil {
			h.now = now
		}
	}
}
