// Package repository defines the persistence interfaces and their SQLite
// and in-memory implementations.
package repository

import (
	"context"

	"github.com/scooplab/custard/internal/domain/model"
)

// CursorStore persists batch progress per job name.
//
// Reads never fail: a missing handle, a read error or an absent row all
// yield 0. Writes are best-effort; a lost cursor update risks re-harvesting
// a target, never data corruption.
type CursorStore interface {
	// Cursor returns the persisted cursor for job, or 0.
	Cursor(ctx context.Context, job string) int

	// SetCursor persists the cursor for job. Failures are logged and
	// swallowed.
	SetCursor(ctx context.Context, job string, value int)
}

// OccurrenceStore reads raw windowed flavor occurrence rows. It may be
// entirely absent in some deployments; callers hold a nil interface then.
type OccurrenceStore interface {
	// RowsSince returns per-(slug, flavor) counts over the trailing
	// windowDays.
	RowsSince(ctx context.Context, windowDays int) ([]model.OccurrenceRow, error)
}

// SnapshotStore persists harvest snapshots and the occurrence rows derived
// from them.
type SnapshotStore interface {
	// PutSnapshot upserts the snapshot for its (slug, day) key.
	PutSnapshot(ctx context.Context, snap model.Snapshot) error
}

// StoreIndex maps slugs to descriptive store fields.
type StoreIndex interface {
	// Info returns the index entry for slug, or ErrNotFound.
	Info(ctx context.Context, slug string) (model.StoreInfo, error)

	// StatesBySlug returns the slug -> state mapping for every indexed
	// store.
	StatesBySlug(ctx context.Context) (map[string]string, error)
}
