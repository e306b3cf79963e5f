package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"PriceLens/internal/model"
)

const defaultRecentLimit = 20

// SQLiteRecorder persists run summaries to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets the API read history while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL UNIQUE,
			symbol       TEXT NOT NULL,
			started_at   INTEGER NOT NULL,
			duration_ms  INTEGER,
			bars         INTEGER,
			windows      INTEGER,
			status       TEXT NOT NULL,
			message      TEXT,
			scaler_min   REAL,
			scaler_scale REAL,
			mae          REAL,
			rmse         REAL,
			mape         REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON runs(symbol, started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(ctx context.Context, rec *model.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO runs
		(run_id, symbol, started_at, duration_ms, bars, windows, status, message,
		 scaler_min, scaler_scale, mae, rmse, mape)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, rec.Symbol, rec.StartedAt.UnixMilli(), rec.DurationMs,
		rec.Bars, rec.Windows, rec.Status, rec.Message,
		rec.ScalerMin, rec.ScalerScale, rec.MAE, rec.RMSE, rec.MAPE,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}
	return nil
}

func (r *SQLiteRecorder) RecentRuns(ctx context.Context, symbol string, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := r.db.QueryContext(ctx, `SELECT
		run_id, symbol, started_at, duration_ms, bars, windows, status, message,
		scaler_min, scaler_scale, mae, rmse, mape
		FROM runs
		WHERE (? = '' OR symbol = ?)
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, symbol, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []model.RunRecord
	for rows.Next() {
		var (
			rec     model.RunRecord
			started int64
			message sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &rec.Symbol, &started, &rec.DurationMs,
			&rec.Bars, &rec.Windows, &rec.Status, &message,
			&rec.ScalerMin, &rec.ScalerScale, &rec.MAE, &rec.RMSE, &rec.MAPE); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started).UTC()
		rec.Message = message.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
