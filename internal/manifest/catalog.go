// Package manifest keeps a durable ledger of generation runs in a SQLite
// catalog: which spec produced which output, with what seed, and how big
// the result was. The ledger is what lets a benchmark harness trace any
// workload file back to the exact spec and seed that produced it.
package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// RunRecord describes one completed generation run.
type RunRecord struct {
	RunID      string
	SpecPath   string
	OutputPath string
	Seed       int64
	Operations int64
	Bytes      int64
	Duration   time.Duration
	CreatedAt  time.Time
}

// Catalog records and lists generation runs.
type Catalog interface {
	// RegisterRun adds a completed run to the catalog.
	RegisterRun(ctx context.Context, rec *RunRecord) error

	// GetRun retrieves a single run by ID.
	GetRun(ctx context.Context, runID string) (*RunRecord, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)

	// Close closes the catalog database connection.
	Close() error
}

// SQLiteCatalog implements Catalog using SQLite.
type SQLiteCatalog struct {
	db *sql.DB
	mu sync.Mutex
}

// NewCatalog opens (creating if needed) the catalog at dbPath.
func NewCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to open database: %w", err)
	}
	// Single writer keeps SQLite happy under WAL.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	c := &SQLiteCatalog{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCatalog) initSchema() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			spec_path   TEXT NOT NULL,
			output_path TEXT NOT NULL,
			seed        INTEGER NOT NULL,
			operations  INTEGER NOT NULL,
			bytes       INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`)
	if err != nil {
		return fmt.Errorf("manifest: failed to initialize schema: %w", err)
	}
	return nil
}

// RegisterRun adds a completed run to the catalog.
func (c *SQLiteCatalog) RegisterRun(ctx context.Context, rec *RunRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, spec_path, output_path, seed, operations, bytes, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.SpecPath, rec.OutputPath, rec.Seed,
		rec.Operations, rec.Bytes, rec.Duration.Milliseconds(), createdAt,
	)
	if err != nil {
		return fmt.Errorf("manifest: failed to register run %s: %w", rec.RunID, err)
	}
	return nil
}

// GetRun retrieves a single run by ID.
func (c *SQLiteCatalog) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT run_id, spec_path, output_path, seed, operations, bytes, duration_ms, created_at
		FROM runs WHERE run_id = ?`, runID)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (c *SQLiteCatalog) ListRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT run_id, spec_path, output_path, seed, operations, bytes, duration_ms, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to list runs: %w", err)
	}
	defer rows.Close()

	var recs []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Close closes the catalog database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var durationMS int64
	err := row.Scan(&rec.RunID, &rec.SpecPath, &rec.OutputPath, &rec.Seed,
		&rec.Operations, &rec.Bytes, &durationMS, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to scan run: %w", err)
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return &rec, nil
}
