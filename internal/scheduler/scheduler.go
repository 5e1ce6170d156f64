// Package scheduler runs the resumable batch-harvest loop: each tick slices
// the next batch of targets from a persisted cursor, harvests them, and
// advances the cursor with wraparound.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/scooplab/custard/internal/adapters/repository"
	"github.com/scooplab/custard/pkg/logger"
	"github.com/scooplab/custard/pkg/metrics"
)

// Default scheduler configuration constants.
const (
	DefaultJobName   = "fotd-harvest"
	DefaultBatchSize = 5
	DefaultInterval  = 15 * time.Minute
)

// TargetResolver rebuilds the target set at the start of every tick.
type TargetResolver interface {
	ResolveTargets(ctx context.Context) []string
}

// BatchHarvester harvests a batch and returns the slugs that failed.
type BatchHarvester interface {
	HarvestBatch(ctx context.Context, slugs []string) []string
}

// TickResult describes what one tick did; served by the stats endpoint.
type TickResult struct {
	Started    time.Time `json:"started"`
	TargetSet  int       `json:"target_set"`
	Cursor     int       `json:"cursor"`
	Batch      []string  `json:"batch"`
	Failed     []string  `json:"failed"`
	NextCursor int       `json:"next_cursor"`
}

// Scheduler owns one named job's batch progression.
type Scheduler struct {
	job       string
	batchSize int
	interval  time.Duration

	resolver  TargetResolver
	harvester BatchHarvester
	cursors   repository.CursorStore

	c       *cron.Cron
	tickMu  sync.Mutex // overlap guard: a slow tick makes the next one skip
	stateMu sync.Mutex
	last    TickResult
	started bool

	log logger.Logger
}

// New creates a Scheduler. The cursor store, resolver and harvester are
// required; options cover the rest.
func New(cursors repository.CursorStore, resolver TargetResolver, harvester BatchHarvester, opts ...Option) *Scheduler {
	s := &Scheduler{
		job:       DefaultJobName,
		batchSize: DefaultBatchSize,
		interval:  DefaultInterval,
		resolver:  resolver,
		harvester: harvester,
		cursors:   cursors,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Job returns the configured job name.
func (s *Scheduler) Job() string { return s.job }

// BatchSize returns the configured batch size.
func (s *Scheduler) BatchSize() int { return s.batchSize }

// Interval returns the configured tick interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// LastTick returns the outcome of the most recent tick.
func (s *Scheduler) LastTick() TickResult {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.last
}

// Start registers the tick on a fixed interval and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.started {
		return nil
	}

	s.c = cron.New()
	_, err := s.c.AddFunc("@every "+s.interval.String(), func() {
		if !s.tickMu.TryLock() {
			s.log.Warn(ctx, "previous tick still running, skipping",
				logger.String("job", s.job))
			return
		}
		defer s.tickMu.Unlock()
		s.runTickLocked(ctx)
	})
	if err != nil {
		return err
	}

	s.c.Start()
	s.started = true
	s.log.Info(ctx, "harvest scheduler started",
		logger.String("job", s.job),
		logger.Int("batch_size", s.batchSize),
		logger.String("interval", s.interval.String()))
	return nil
}

// Stop halts the cron loop and waits for an in-flight tick to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	s.stateMu.Lock()
	if !s.started {
		s.stateMu.Unlock()
		return
	}
	s.started = false
	c := s.c
	s.c = nil
	s.stateMu.Unlock()

	<-c.Stop().Done()
	s.log.Info(ctx, "harvest scheduler stopped", logger.String("job", s.job))
}

// RunTick executes one tick immediately. Exposed for the manual-trigger
// endpoint; shares the overlap guard with scheduled ticks.
func (s *Scheduler) RunTick(ctx context.Context) TickResult {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.runTickLocked(ctx)
}

func (s *Scheduler) runTickLocked(ctx context.Context) TickResult {
	start := time.Now()
	res := TickResult{Started: start}

	targets := s.resolver.ResolveTargets(ctx)
	res.TargetSet = len(targets)
	metrics.UpdateTargetSetSize(len(targets))

	if len(targets) == 0 {
		// Nothing to do; the cursor is left untouched.
		s.log.Debug(ctx, "empty target set, skipping tick", logger.String("job", s.job))
		s.finishTick(ctx, start, res)
		return res
	}

	cursor := s.cursors.Cursor(ctx, s.job)
	if cursor < 0 || cursor >= len(targets) {
		// Stale cursor against a shrunk set: restart the pass.
		cursor = 0
	}
	res.Cursor = cursor

	end := cursor + s.batchSize
	if end > len(targets) {
		end = len(targets)
	}
	batch := targets[cursor:end]
	res.Batch = batch

	res.Failed = s.harvester.HarvestBatch(ctx, batch)

	next := cursor + len(batch)
	if next >= len(targets) {
		next = 0
	}
	res.NextCursor = next
	s.cursors.SetCursor(ctx, s.job, next)

	s.log.Info(ctx, "tick complete",
		logger.String("job", s.job),
		logger.Int("targets", len(targets)),
		logger.Int("cursor", cursor),
		logger.Int("batch", len(batch)),
		logger.Int("failed", len(res.Failed)),
		logger.Int("next_cursor", next))

	s.finishTick(ctx, start, res)
	return res
}

func (s *Scheduler) finishTick(_ context.Context, start time.Time, res TickResult) {
	metrics.RecordHarvestTick(float64(time.Since(start).Milliseconds()))
	s.stateMu.Lock()
	s.last = res
	s.stateMu.Unlock()
}
