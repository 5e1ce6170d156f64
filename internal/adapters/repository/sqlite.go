package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scooplab/custard/pkg/logger"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// Default repository configuration constants.
const (
	defaultQueryTimeout = 2 * time.Second
	defaultBusyTimeout  = 5 * time.Second
)

// DB is the SQLite-backed repository. It implements CursorStore,
// OccurrenceStore, SnapshotStore, StoreIndex and the target-source read
// interfaces.
type DB struct {
	db           *sql.DB
	log          logger.Logger
	queryTimeout time.Duration
	busyTimeout  time.Duration
}

// Open opens (or creates) the SQLite database at path and applies the
// schema.
func Open(path string, opts ...Option) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrUnconfigured
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{
		db:           db,
		log:          logger.Nop(),
		queryTimeout: defaultQueryTimeout,
		busyTimeout:  defaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", d.busyTimeout.Milliseconds()))
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := d.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return d, nil
}

func (d *DB) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, string(b))
	return err
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// bound derives a deadline-bounded context for one repository operation, so
// a wedged database never blocks a caller indefinitely.
func (d *DB) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.queryTimeout)
}
