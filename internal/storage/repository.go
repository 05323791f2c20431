// Package storage persists pipeline runs in SQLite so the dashboard API can
// serve the latest summary without re-running the ETL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoRuns is returned when no pipeline run has been persisted yet.
var ErrNoRuns = errors.New("no pipeline runs recorded")

// Run is one persisted pipeline run with its serialized summary payload.
type Run struct {
	ID                   int64
	CreatedAt            time.Time
	WindowStart          string
	WindowEnd            string
	FactRows             int
	TotalOrders          int
	TotalRevenueCentavos int64
	Payload              []byte
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun inserts a run record and returns its id.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run Run) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (window_start, window_end, fact_rows, total_orders, total_revenue_centavos, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.WindowStart, run.WindowEnd, run.FactRows, run.TotalOrders, run.TotalRevenueCentavos, string(run.Payload))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// LatestRun returns the most recently persisted run, or ErrNoRuns.
func (r *SQLiteRepository) LatestRun(ctx context.Context) (Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, window_start, window_end, fact_rows, total_orders, total_revenue_centavos, payload
		 FROM runs ORDER BY id DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("query latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit run records, newest first, without payloads.
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at, window_start, window_end, fact_rows, total_orders, total_revenue_centavos
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(&run.ID, &createdAt, &run.WindowStart, &run.WindowEnd,
			&run.FactRows, &run.TotalOrders, &run.TotalRevenueCentavos); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = parseDBTime(createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var createdAt string
	var payload string
	if err := row.Scan(&run.ID, &createdAt, &run.WindowStart, &run.WindowEnd,
		&run.FactRows, &run.TotalOrders, &run.TotalRevenueCentavos, &payload); err != nil {
		return Run{}, err
	}
	run.CreatedAt = parseDBTime(createdAt)
	run.Payload = []byte(payload)
	return run, nil
}

func parseDBTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
