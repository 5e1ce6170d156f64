// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite database file. Empty runs the service
	// on the in-memory repository (no persistence across restarts).
	DBPath string `koanf:"db_path"`

	// JobName keys the harvest cursor.
	JobName string `koanf:"job_name"`

	// BatchSize is how many targets one scheduler tick consumes.
	BatchSize int `koanf:"batch_size"`

	// TickInterval is the fixed scheduling interval.
	TickInterval time.Duration `koanf:"tick_interval"`

	// HarvestBaseURL is the upstream flavor API, e.g. "https://fotd.example.com".
	HarvestBaseURL string `koanf:"harvest_base_url"`

	// HarvestTimeout bounds one per-target fetch-and-store cycle.
	HarvestTimeout time.Duration `koanf:"harvest_timeout"`

	// HarvestConcurrency caps in-flight harvests within one batch.
	HarvestConcurrency int `koanf:"harvest_concurrency"`

	// HarvestRatePerSec caps upstream fetches per second.
	HarvestRatePerSec float64 `koanf:"harvest_rate_per_sec"`

	// QueryTimeout bounds every repository read and write.
	QueryTimeout time.Duration `koanf:"query_timeout"`

	// LeaderboardWindowDays is the default trailing window for the
	// leaderboard endpoint.
	LeaderboardWindowDays int `koanf:"leaderboard_window_days"`

	// LeaderboardLimit is the default top-N per location group.
	LeaderboardLimit int `koanf:"leaderboard_limit"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and currently
// unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		DBPath:                "data/custard.sqlite",
		JobName:               "fotd-harvest",
		BatchSize:             5,
		TickInterval:          15 * time.Minute,
		HarvestBaseURL:        "",
		HarvestTimeout:        10 * time.Second,
		HarvestConcurrency:    4,
		HarvestRatePerSec:     4,
		QueryTimeout:          2 * time.Second,
		LeaderboardWindowDays: 30,
		LeaderboardLimit:      5,
	}
}
