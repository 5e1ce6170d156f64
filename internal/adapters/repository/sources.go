package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// ForecastSlugs lists every slug with an active forecast record. Presence
// is the only criterion; no time filter applies.
func (d *DB) ForecastSlugs(ctx context.Context) ([]string, error) {
	if d == nil || d.db == nil {
		return nil, ErrUnconfigured
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `SELECT slug FROM forecasts`)
	if err != nil {
		return nil, fmt.Errorf("forecast scan: %w", err)
	}
	defer rows.Close()

	return scanSlugs(rows)
}

// IndexedSlugs reads the materialized subscription index blob. An absent or
// unparsable blob is an error so the caller can fall back to the scan.
func (d *DB) IndexedSlugs(ctx context.Context) ([]string, error) {
	if d == nil || d.db == nil {
		return nil, ErrUnconfigured
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()

	var blob string
	err := d.db.QueryRowContext(ctx,
		`SELECT slugs_json FROM subscription_index WHERE id = 1`,
	).Scan(&blob)
	if err != nil {
		return nil, fmt.Errorf("subscription index read: %w", err)
	}

	var slugs []string
	if err := json.Unmarshal([]byte(blob), &slugs); err != nil {
		return nil, fmt.Errorf("subscription index decode: %w", err)
	}
	return slugs, nil
}

// ScanSlugs enumerates distinct subscribed slugs from the itemized records.
func (d *DB) ScanSlugs(ctx context.Context) ([]string, error) {
	if d == nil || d.db == nil {
		return nil, ErrUnconfigured
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `SELECT DISTINCT slug FROM subscriptions`)
	if err != nil {
		return nil, fmt.Errorf("subscription scan: %w", err)
	}
	defer rows.Close()

	return scanSlugs(rows)
}

// PutForecast records an active forecast for slug.
func (d *DB) PutForecast(ctx context.Context, slug string) error {
	if d == nil || d.db == nil {
		return ErrUnconfigured
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO forecasts(slug, updated_at) VALUES(?, datetime('now'))
		 ON CONFLICT(slug) DO UPDATE SET updated_at = excluded.updated_at`,
		slug,
	)
	return err
}

// PutSubscription records an alert subscription for slug.
func (d *DB) PutSubscription(ctx context.Context, slug string) error {
	if d == nil || d.db == nil {
		return ErrUnconfigured
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO subscriptions(slug, created_at) VALUES(?, datetime('now'))`,
		slug,
	)
	return err
}

// PutSubscriptionIndex replaces the materialized subscription index blob.
func (d *DB) PutSubscriptionIndex(ctx context.Context, slugs []string) error {
	if d == nil || d.db == nil {
		return ErrUnconfigured
	}
	blob, err := json.Marshal(slugs)
	if err != nil {
		return fmt.Errorf("encode subscription index: %w", err)
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()

	_, err = d.db.ExecContext(ctx,
		`INSERT INTO subscription_index(id, slugs_json, updated_at) VALUES(1, ?, datetime('now'))
		 ON CONFLICT(id) DO UPDATE SET slugs_json = excluded.slugs_json, updated_at = excluded.updated_at`,
		string(blob),
	)
	return err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSlugs(rows rowScanner) ([]string, error) {
	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slugs = append(slugs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slugs, nil
}
