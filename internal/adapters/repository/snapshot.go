package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/scooplab/custard/internal/domain/model"
	"github.com/scooplab/custard/pkg/metrics"
)

// PutSnapshot upserts the harvest snapshot for its (slug, day) key and
// refreshes the occurrence rows derived from it. Re-harvesting the same
// target on the same day replaces, never duplicates.
func (d *DB) PutSnapshot(ctx context.Context, snap model.Snapshot) error {
	if d == nil || d.db == nil {
		return ErrUnconfigured
	}
	blob, err := json.Marshal(snap.Flavors)
	if err != nil {
		return fmt.Errorf("encode flavors: %w", err)
	}

	ctx, cancel := d.bound(ctx)
	defer cancel()

	start := time.Now()
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots(id, slug, day, flavors_json, captured_at)
		 VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(slug, day) DO UPDATE SET
		   id = excluded.id,
		   flavors_json = excluded.flavors_json,
		   captured_at = excluded.captured_at`,
		snap.ID, snap.Slug, snap.Day, string(blob), snap.CapturedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	for _, f := range snap.Flavors {
		day := f.Date
		if day == "" {
			day = snap.Day
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO occurrences(slug, flavor, display_name, day)
			 VALUES(?, ?, ?, ?)
			 ON CONFLICT(slug, flavor, day) DO UPDATE SET display_name = excluded.display_name`,
			snap.Slug, f.Name, f.Title, day,
		)
		if err != nil {
			return fmt.Errorf("store occurrence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordSnapshotStored()
	return nil
}

// RowsSince returns per-(slug, flavor) occurrence counts over the trailing
// windowDays.
func (d *DB) RowsSince(ctx context.Context, windowDays int) ([]model.OccurrenceRow, error) {
	if d == nil || d.db == nil {
		return nil, ErrUnconfigured
	}
	if windowDays <= 0 {
		windowDays = 1
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays).Format("2006-01-02")

	ctx, cancel := d.bound(ctx)
	defer cancel()

	start := time.Now()
	rows, err := d.db.QueryContext(ctx,
		`SELECT slug, flavor, MIN(display_name), COUNT(*)
		 FROM occurrences
		 WHERE day >= ?
		 GROUP BY slug, flavor
		 ORDER BY slug, flavor`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("occurrence window query: %w", err)
	}
	defer rows.Close()

	var out []model.OccurrenceRow
	for rows.Next() {
		var r model.OccurrenceRow
		if err := rows.Scan(&r.Slug, &r.Flavor, &r.DisplayName, &r.Count); err != nil {
			return nil, fmt.Errorf("scan occurrence row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate occurrence rows: %w", err)
	}
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	return out, nil
}
