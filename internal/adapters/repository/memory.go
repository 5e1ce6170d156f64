package repository

import (
	"context"
	"sync"

	"github.com/scooplab/custard/internal/domain/model"
	"github.com/scooplab/custard/pkg/metrics"
)

// Memory is an in-process repository used by tests and by deployments that
// run without a database file. It implements the same interfaces as DB.
type Memory struct {
	mu sync.RWMutex

	cursors       map[string]int
	forecasts     map[string]struct{}
	subscriptions map[string]struct{}
	subIndex      []string
	hasSubIndex   bool
	snapshots     map[string]model.Snapshot      // slug|day
	occurrences   map[string]model.OccurrenceRow // slug|flavor
	counted       map[string]struct{}            // slug|flavor|day
	infos         map[string]model.StoreInfo
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		cursors:       make(map[string]int),
		forecasts:     make(map[string]struct{}),
		subscriptions: make(map[string]struct{}),
		snapshots:     make(map[string]model.Snapshot),
		occurrences:   make(map[string]model.OccurrenceRow),
		counted:       make(map[string]struct{}),
		infos:         make(map[string]model.StoreInfo),
	}
}

// Cursor returns the stored cursor for job, or 0.
func (m *Memory) Cursor(_ context.Context, job string) int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v := m.cursors[job]
	if v < 0 {
		return 0
	}
	return v
}

// SetCursor stores the cursor for job.
func (m *Memory) SetCursor(_ context.Context, job string, value int) {
	if m == nil {
		return
	}
	if value < 0 {
		value = 0
	}
	m.mu.Lock()
	m.cursors[job] = value
	m.mu.Unlock()
	metrics.UpdateCursorPosition(job, value)
}

// ForecastSlugs lists slugs with a forecast record.
func (m *Memory) ForecastSlugs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return setToSlice(m.forecasts), nil
}

// IndexedSlugs returns the materialized subscription index, or ErrNotFound
// when none was built.
func (m *Memory) IndexedSlugs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.hasSubIndex {
		return nil, ErrNotFound
	}
	out := make([]string, len(m.subIndex))
	copy(out, m.subIndex)
	return out, nil
}

// ScanSlugs enumerates subscribed slugs.
func (m *Memory) ScanSlugs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return setToSlice(m.subscriptions), nil
}

// PutForecast records an active forecast for slug.
func (m *Memory) PutForecast(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecasts[slug] = struct{}{}
	return nil
}

// PutSubscription records an alert subscription for slug.
func (m *Memory) PutSubscription(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[slug] = struct{}{}
	return nil
}

// PutSubscriptionIndex replaces the materialized subscription index.
func (m *Memory) PutSubscriptionIndex(_ context.Context, slugs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subIndex = append([]string(nil), slugs...)
	m.hasSubIndex = true
	return nil
}

// PutSnapshot upserts the snapshot for its (slug, day) key and refreshes
// the derived occurrence rows.
func (m *Memory) PutSnapshot(_ context.Context, snap model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snap.Slug+"|"+snap.Day] = snap
	for _, f := range snap.Flavors {
		key := snap.Slug + "|" + f.Name
		row, ok := m.occurrences[key]
		if !ok {
			row = model.OccurrenceRow{Slug: snap.Slug, Flavor: f.Name, DisplayName: f.Title}
		}
		day := f.Date
		if day == "" {
			day = snap.Day
		}
		// One count per (slug, flavor, day): a same-day re-harvest
		// replaces the snapshot, it never inflates the occurrence count.
		if _, dup := m.counted[key+"|"+day]; !dup {
			m.counted[key+"|"+day] = struct{}{}
			row.Count++
		}
		m.occurrences[key] = row
	}
	metrics.RecordSnapshotStored()
	return nil
}

// Snapshot returns the stored snapshot for (slug, day), if any.
func (m *Memory) Snapshot(_ context.Context, slug, day string) (model.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[slug+"|"+day]
	return snap, ok
}

// RowsSince returns all accumulated occurrence rows. The in-memory variant
// applies no window cutoff; the parameter is accepted for interface parity.
func (m *Memory) RowsSince(_ context.Context, _ int) ([]model.OccurrenceRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.OccurrenceRow, 0, len(m.occurrences))
	for _, row := range m.occurrences {
		out = append(out, row)
	}
	return out, nil
}

// Info returns the store index entry for slug.
func (m *Memory) Info(_ context.Context, slug string) (model.StoreInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.infos[slug]
	if !ok {
		return model.StoreInfo{}, ErrNotFound
	}
	return info, nil
}

// StatesBySlug returns the slug -> state mapping.
func (m *Memory) StatesBySlug(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.infos))
	for slug, info := range m.infos {
		if info.State != "" {
			out[slug] = info.State
		}
	}
	return out, nil
}

// PutStoreInfo upserts a store index entry.
func (m *Memory) PutStoreInfo(_ context.Context, info model.StoreInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos[info.Slug] = info
	return nil
}

// Close satisfies the repository lifecycle; nothing to release.
func (m *Memory) Close() error { return nil }

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}
