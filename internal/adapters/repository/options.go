package repository

import (
	"time"

	"github.com/scooplab/custard/pkg/logger"
)

// Option applies a configuration option to the DB.
type Option func(*DB)

// WithLogger sets a custom logger for the repository.
func WithLogger(log logger.Logger) Option {
	return func(d *DB) {
		if log != nil {
			d.log = log
		}
	}
}

// WithQueryTimeout bounds every repository read and write. Zero keeps the
// default.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(d *DB) {
		if timeout > 0 {
			d.queryTimeout = timeout
		}
	}
}

// WithBusyTimeout sets the SQLite busy timeout applied at open.
func WithBusyTimeout(timeout time.Duration) Option {
	return func(d *DB) {
		if timeout > 0 {
			d.busyTimeout = timeout
		}
	}
}
