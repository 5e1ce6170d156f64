package harvest

import (
	"context"
	"sync"

	"github.com/scooplab/custard/pkg/logger"
	"github.com/scooplab/custard/pkg/metrics"
)

// Default pool configuration constants.
const defaultPoolSize = 4

// Runner is what the pool fans work out to.
type Runner interface {
	Harvest(ctx context.Context, slug string) error
}

// Pool harvests a batch of targets with bounded concurrency. One target's
// failure or timeout never blocks or fails the others.
type Pool struct {
	runner Runner
	size   int
	log    logger.Logger
}

// PoolOption applies a configuration option to the Pool.
type PoolOption func(*Pool)

// WithPoolSize sets the maximum in-flight harvests.
func WithPoolSize(size int) PoolOption {
	return func(p *Pool) {
		if size > 0 {
			p.size = size
		}
	}
}

// WithPoolLogger sets a custom logger for the pool.
func WithPoolLogger(log logger.Logger) PoolOption {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// NewPool creates a harvest pool around runner.
func NewPool(runner Runner, opts ...PoolOption) *Pool {
	p := &Pool{
		runner: runner,
		size:   defaultPoolSize,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HarvestBatch harvests every slug and returns the ones that failed.
// It blocks until the whole batch settles.
func (p *Pool) HarvestBatch(ctx context.Context, slugs []string) []string {
	if len(slugs) == 0 {
		return nil
	}

	sem := make(chan struct{}, p.size)
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
	)

	for _, slug := range slugs {
		wg.Add(1)
		sem <- struct{}{}
		go func(slug string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := p.runner.Harvest(ctx, slug); err != nil {
				p.log.Warn(ctx, "target harvest failed, skipping",
					logger.String("slug", slug), logger.Error(err))
				metrics.RecordHarvestFailure()
				mu.Lock()
				failed = append(failed, slug)
				mu.Unlock()
			}
		}(slug)
	}

	wg.Wait()
	return failed
}
