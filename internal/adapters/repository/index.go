package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/scooplab/custard/internal/domain/model"
)

// Info returns the store index entry for slug.
func (d *DB) Info(ctx context.Context, slug string) (model.StoreInfo, error) {
	if d == nil || d.db == nil {
		return model.StoreInfo{}, ErrUnconfigured
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()

	var info model.StoreInfo
	err := d.db.QueryRowContext(ctx,
		`SELECT slug, name, city, state FROM store_index WHERE slug = ?`, slug,
	).Scan(&info.Slug, &info.Name, &info.City, &info.State)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StoreInfo{}, ErrNotFound
	}
	if err != nil {
		return model.StoreInfo{}, fmt.Errorf("store index read: %w", err)
	}
	return info, nil
}

// StatesBySlug returns the slug -> state mapping for every indexed store.
// Stores without a state are omitted.
func (d *DB) StatesBySlug(ctx context.Context) (map[string]string, error) {
	if d == nil || d.db == nil {
		return nil, ErrUnconfigured
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		`SELECT slug, state FROM store_index WHERE state != ''`)
	if err != nil {
		return nil, fmt.Errorf("store index scan: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var slug, state string
		if err := rows.Scan(&slug, &state); err != nil {
			return nil, fmt.Errorf("scan store index row: %w", err)
		}
		out[slug] = state
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store index rows: %w", err)
	}
	return out, nil
}

// PutStoreInfo upserts a store index entry.
func (d *DB) PutStoreInfo(ctx context.Context, info model.StoreInfo) error {
	if d == nil || d.db == nil {
		return ErrUnconfigured
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO store_index(slug, name, city, state) VALUES(?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
		   name = excluded.name, city = excluded.city, state = excluded.state`,
		info.Slug, info.Name, info.City, info.State,
	)
	return err
}
