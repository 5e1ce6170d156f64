// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/scooplab/custard/internal/adapters/harvest"
	"github.com/scooplab/custard/internal/adapters/repository"
	"github.com/scooplab/custard/internal/domain/model"
	"github.com/scooplab/custard/internal/domain/rank"
	"github.com/scooplab/custard/internal/domain/targets"
	"github.com/scooplab/custard/internal/domain/types"
	"github.com/scooplab/custard/internal/scheduler"
	"github.com/scooplab/custard/pkg/logger"
	"github.com/scooplab/custard/pkg/metrics"
)

// storeBackend is the full persistence surface the service wires. Both the
// SQLite and the in-memory repository satisfy it.
type storeBackend interface {
	repository.CursorStore
	repository.OccurrenceStore
	repository.SnapshotStore
	repository.StoreIndex

	ForecastSlugs(ctx context.Context) ([]string, error)
	IndexedSlugs(ctx context.Context) ([]string, error)
	ScanSlugs(ctx context.Context) ([]string, error)

	Close() error
}

// resolverAdapter adapts the targets package to the scheduler's
// TargetResolver interface.
type resolverAdapter struct {
	forecasts     targets.ForecastSource
	subscriptions targets.SubscriptionSource
	logger        logger.Logger
}

func (a *resolverAdapter) ResolveTargets(ctx context.Context) []string {
	return targets.Resolve(ctx, a.forecasts, a.subscriptions, a.logger)
}

// Service implements the API dependencies for the harvest and leaderboard
// system.
type Service struct {
	mu sync.RWMutex

	// Core components
	backend   storeBackend
	harvester *harvest.Harvester
	pool      *harvest.Pool
	scheduler *scheduler.Scheduler

	// Configuration
	dbPath             string
	jobName            string
	batchSize          int
	tickInterval       time.Duration
	harvestBaseURL     string
	harvestTimeout     time.Duration
	harvestConcurrency int
	harvestRatePerSec  float64
	queryTimeout       time.Duration
	windowDays         int
	limit              int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithDBPath points the service at a SQLite file. Empty keeps the
// in-memory repository.
func WithDBPath(path string) Option {
	return func(s *Service) {
		s.dbPath = path
	}
}

// WithJobName keys the harvest cursor.
func WithJobName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.jobName = name
		}
	}
}

// WithBatchSize sets how many targets one tick consumes.
func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithTickInterval sets the scheduling interval.
func WithTickInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.tickInterval = interval
		}
	}
}

// WithHarvestBaseURL sets the upstream flavor API base URL.
func WithHarvestBaseURL(base string) Option {
	return func(s *Service) {
		s.harvestBaseURL = base
	}
}

// WithHarvestTimeout bounds one per-target fetch-and-store cycle.
func WithHarvestTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.harvestTimeout = timeout
		}
	}
}

// WithHarvestConcurrency caps in-flight harvests within one batch.
func WithHarvestConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.harvestConcurrency = n
		}
	}
}

// WithHarvestRate caps upstream fetches per second.
func WithHarvestRate(perSec float64) Option {
	return func(s *Service) {
		if perSec > 0 {
			s.harvestRatePerSec = perSec
		}
	}
}

// WithQueryTimeout bounds repository reads and writes.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.queryTimeout = timeout
		}
	}
}

// WithLeaderboardDefaults sets the window and limit applied when a request
// leaves them unset.
func WithLeaderboardDefaults(windowDays, limit int) Option {
	return func(s *Service) {
		if windowDays > 0 {
			s.windowDays = windowDays
		}
		if limit > 0 {
			s.limit = limit
		}
	}
}

// WithBackend injects a prebuilt repository, bypassing the DBPath wiring.
// Used by tests.
func WithBackend(b storeBackend) Option {
	return func(s *Service) {
		if b != nil {
			s.backend = b
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		jobName:            scheduler.DefaultJobName,
		batchSize:          scheduler.DefaultBatchSize,
		tickInterval:       scheduler.DefaultInterval,
		harvestTimeout:     10 * time.Second,
		harvestConcurrency: 4,
		harvestRatePerSec:  4,
		queryTimeout:       2 * time.Second,
		windowDays:         rank.DefaultWindowDays,
		limit:              rank.DefaultLimit,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting harvest service...")

	if s.backend == nil {
		if s.dbPath == "" {
			s.backend = repository.NewMemory()
			s.logger.Info(ctx, "using in-memory repository")
		} else {
			db, err := repository.Open(s.dbPath,
				repository.WithLogger(s.logger.Named("repository")),
				repository.WithQueryTimeout(s.queryTimeout),
			)
			if err != nil {
				return fmt.Errorf("open repository: %w", err)
			}
			s.backend = db
			s.logger.Info(ctx, "using sqlite repository",
				logger.String("path", s.dbPath),
			)
		}
	}

	resolver := &resolverAdapter{
		forecasts: s.backend,
		subscriptions: targets.NewSubscriptionSource(
			s.backend, s.backend, s.logger.Named("targets"),
		),
		logger: s.logger.Named("targets"),
	}

	fetcher := harvest.NewHTTPFetcher(s.harvestBaseURL, &http.Client{
		Timeout: s.harvestTimeout,
	})
	s.harvester = harvest.New(fetcher, s.backend,
		harvest.WithLogger(s.logger.Named("harvest")),
		harvest.WithTimeout(s.harvestTimeout),
		harvest.WithRateLimit(s.harvestRatePerSec, s.harvestConcurrency),
	)
	s.pool = harvest.NewPool(s.harvester,
		harvest.WithPoolSize(s.harvestConcurrency),
		harvest.WithPoolLogger(s.logger.Named("harvest")),
	)

	s.scheduler = scheduler.New(s.backend, resolver, s.pool,
		scheduler.WithJobName(s.jobName),
		scheduler.WithBatchSize(s.batchSize),
		scheduler.WithInterval(s.tickInterval),
		scheduler.WithLogger(s.logger.Named("scheduler")),
	)
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "harvest service started",
		logger.String("job", s.jobName),
		logger.Int("batchSize", s.batchSize),
		logger.String("interval", s.tickInterval.String()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping harvest service...")

	if s.scheduler != nil {
		s.scheduler.Stop(ctx)
	}

	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Warn(ctx, "closing repository",
				logger.Error(err),
			)
		}
	}

	s.started = false
	s.logger.Info(ctx, "harvest service stopped")
}

// Leaderboard builds the windowed leaderboard. When the occurrence store is
// missing or the windowed query fails it serves the seed dataset instead,
// so the endpoint always answers.
func (s *Service) Leaderboard(ctx context.Context, opts rank.Options) types.LeaderboardResult {
	if opts.WindowDays == 0 {
		opts.WindowDays = s.windowDays
	}
	if opts.Limit == 0 {
		opts.Limit = s.limit
	}
	opts = opts.WithDefaults()

	backend := s.currentBackend()
	if backend == nil {
		return s.seeded(ctx, opts, "occurrence store unconfigured")
	}

	rows, err := backend.RowsSince(ctx, opts.WindowDays)
	if err != nil {
		return s.seeded(ctx, opts, err.Error())
	}

	states, err := backend.StatesBySlug(ctx)
	if err != nil {
		s.logger.Warn(ctx, "store index unavailable, grouping nationally only",
			logger.Error(err),
		)
		states = map[string]string{}
	}

	res := rank.Build(rows, states, opts)
	metrics.RecordLeaderboardBuilt(types.SourceLive)
	return res
}

func (s *Service) seeded(ctx context.Context, opts rank.Options, reason string) types.LeaderboardResult {
	s.logger.Warn(ctx, "serving seed leaderboard",
		logger.String("reason", reason),
	)
	metrics.RecordSeedFallback()
	metrics.RecordLeaderboardBuilt(types.SourceSeed)
	return rank.Seed(opts)
}

// StoreInfo returns the indexed descriptive fields for a store slug.
func (s *Service) StoreInfo(ctx context.Context, slug string) (model.StoreInfo, error) {
	backend := s.currentBackend()
	if backend == nil {
		return model.StoreInfo{}, repository.ErrUnconfigured
	}
	return backend.Info(ctx, slug)
}

// RunHarvestTick runs one scheduler tick outside the cron cadence.
func (s *Service) RunHarvestTick(ctx context.Context) (scheduler.TickResult, error) {
	s.mu.RLock()
	sched := s.scheduler
	started := s.started
	s.mu.RUnlock()

	if !started || sched == nil {
		return scheduler.TickResult{}, ErrNotStarted
	}
	return sched.RunTick(ctx), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"job":        s.jobName,
		"batchSize":  s.batchSize,
		"interval":   s.tickInterval.String(),
		"persistent": s.dbPath != "",
	}

	if s.started && s.scheduler != nil {
		stats["lastTick"] = s.scheduler.LastTick()
	}

	return stats
}

func (s *Service) currentBackend() storeBackend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend
}
