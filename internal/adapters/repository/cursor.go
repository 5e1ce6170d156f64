package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/scooplab/custard/pkg/logger"
	"github.com/scooplab/custard/pkg/metrics"
)

// Cursor returns the persisted cursor for job. A nil handle, a read error
// or an absent row all yield 0 so a tick can always proceed from the start
// of the set.
func (d *DB) Cursor(ctx context.Context, job string) int {
	if d == nil || d.db == nil {
		return 0
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()

	start := time.Now()
	var position int
	err := d.db.QueryRowContext(ctx,
		`SELECT position FROM cron_cursors WHERE job = ?`, job,
	).Scan(&position)
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))

	if errors.Is(err, sql.ErrNoRows) {
		return 0
	}
	if err != nil {
		d.log.Warn(ctx, "cursor read failed, starting from 0",
			logger.String("job", job), logger.Error(err))
		metrics.RecordErrorByComponent("repository", "cursor_read")
		return 0
	}
	if position < 0 {
		return 0
	}
	return position
}

// SetCursor persists the cursor for job. A write failure is logged and
// swallowed: losing an update risks re-harvesting a target, which the
// idempotent harvest action absorbs.
func (d *DB) SetCursor(ctx context.Context, job string, value int) {
	if d == nil || d.db == nil {
		return
	}
	if value < 0 {
		value = 0
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()

	start := time.Now()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO cron_cursors(job, position) VALUES(?, ?)
		 ON CONFLICT(job) DO UPDATE SET position = excluded.position`,
		job, value,
	)
	metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		d.log.Warn(ctx, "cursor write failed",
			logger.String("job", job), logger.Int("value", value), logger.Error(err))
		metrics.RecordErrorByComponent("repository", "cursor_write")
		return
	}
	metrics.UpdateCursorPosition(job, value)
}
