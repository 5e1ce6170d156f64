// Package harvest implements the per-target harvest action: fetch a store's
// current flavor listing and persist it as a dated snapshot.
package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/scooplab/custard/internal/adapters/repository"
	"github.com/scooplab/custard/internal/domain/model"
	"github.com/scooplab/custard/pkg/logger"
	"github.com/scooplab/custard/pkg/metrics"
)

// Default harvester configuration constants.
const (
	defaultTimeout    = 10 * time.Second
	defaultRatePerSec = 4
	defaultBurst      = 2
)

// Fetcher retrieves the current flavor listing for one store.
type Fetcher interface {
	Fetch(ctx context.Context, slug string) ([]model.Flavor, error)
}

// Harvester runs one idempotent harvest per target: fetch, then upsert the
// snapshot keyed by (slug, day). A fetch failure leaves any previous
// snapshot untouched, so stale data survives a bad upstream day.
type Harvester struct {
	fetcher   Fetcher
	snapshots repository.SnapshotStore
	limiter   *rate.Limiter
	timeout   time.Duration
	log       logger.Logger
	now       func() time.Time
}

// New creates a Harvester writing through to snapshots.
func New(fetcher Fetcher, snapshots repository.SnapshotStore, opts ...Option) *Harvester {
	h := &Harvester{
		fetcher:   fetcher,
		snapshots: snapshots,
		limiter:   rate.NewLimiter(rate.Limit(defaultRatePerSec), defaultBurst),
		timeout:   defaultTimeout,
		log:       logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Harvest fetches and persists one target. The error return lets the batch
// scheduler record the failure; it never aborts the surrounding batch.
func (h *Harvester) Harvest(ctx context.Context, slug string) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("harvest rate wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	flavors, err := h.fetcher.Fetch(ctx, slug)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", slug, err)
	}

	now := h.now().UTC()
	snap := model.Snapshot{
		ID:         uuid.NewString(),
		Slug:       slug,
		Day:        now.Format("2006-01-02"),
		Flavors:    flavors,
		CapturedAt: now,
	}
	if err := h.snapshots.PutSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot %s: %w", slug, err)
	}

	h.log.Debug(ctx, "harvested target",
		logger.String("slug", slug), logger.Int("flavors", len(flavors)))
	metrics.RecordTargetHarvested()
	return nil
}
