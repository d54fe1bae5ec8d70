// Package sqlite keeps a durable history of completed scans so past
// recommendations survive restarts and can be reviewed later.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"marketscan/internal/model"
)

// Config configures the scan recorder.
type Config struct {
	DBPath string // e.g. "data/scans.db"

	// KeepScans caps how many scans are retained per timeframe.
	// Zero picks the default below.
	KeepScans int
}

const defaultKeepScans = 500

// Recorder persists scans and serves history queries.
type Recorder struct {
	db        *sql.DB
	keepScans int
}

// DB returns the underlying sql.DB for health checks.
func (r *Recorder) DB() *sql.DB { return r.db }

// New opens the database in WAL mode and creates the schema.
func New(cfg Config) (*Recorder, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer keeps SQLITE_BUSY out of the picture.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	keep := cfg.KeepScans
	if keep <= 0 {
		keep = defaultKeepScans
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Recorder{db: db, keepScans: keep}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			id          TEXT    PRIMARY KEY,
			timeframe   TEXT    NOT NULL,
			filters     TEXT    NOT NULL,
			universe    INTEGER NOT NULL,
			results     INTEGER NOT NULL,
			skipped     INTEGER NOT NULL,
			top_symbol  TEXT,
			top_score   REAL,
			started_at  INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scans_tf_started ON scans (timeframe, started_at DESC);

		CREATE TABLE IF NOT EXISTS scan_results (
			scan_id        TEXT    NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
			symbol         TEXT    NOT NULL,
			price          REAL    NOT NULL,
			total_score    REAL    NOT NULL,
			recommendation TEXT    NOT NULL,
			data           TEXT    NOT NULL,
			PRIMARY KEY (scan_id, symbol)
		);
	`)
	return err
}

// RecordScan writes a scan and all its results in one transaction,
// then prunes history beyond the retention cap for that timeframe.
func (r *Recorder) RecordScan(ctx context.Context, scan *model.ScanResult) error {
	filters, err := json.Marshal(scan.Filters)
	if err != nil {
		return fmt.Errorf("sqlite: marshal filters: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}

	summary := scan.Summarize()
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO scans (id, timeframe, filters, universe, results, skipped, top_symbol, top_score, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, string(scan.Filters.Timeframe), string(filters),
		scan.Universe, len(scan.Results), len(scan.Skipped),
		summary.TopSymbol, summary.TopScore,
		scan.StartedAt.Unix(), scan.Duration.Milliseconds(),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite: insert scan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO scan_results (scan_id, symbol, price, total_score, recommendation, data)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite: prepare results: %w", err)
	}
	defer stmt.Close()

	for _, res := range scan.Results {
		data, err := json.Marshal(res)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite: marshal result %s: %w", res.Symbol, err)
		}
		if _, err := stmt.ExecContext(ctx, scan.ID, res.Symbol, res.Price, res.TotalScore, string(res.Recommendation), string(data)); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite: insert result %s: %w", res.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}

	r.prune(ctx, string(scan.Filters.Timeframe))
	return nil
}

func (r *Recorder) prune(ctx context.Context, timeframe string) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM scans WHERE timeframe = ? AND id NOT IN (
			SELECT id FROM scans WHERE timeframe = ? ORDER BY started_at DESC LIMIT ?
		)`, timeframe, timeframe, r.keepScans)
	if err != nil {
		log.Printf("[sqlite] prune scans warning: %v", err)
		return
	}
	// Foreign keys are off by default in go-sqlite3; clean orphans by hand.
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM scan_results WHERE scan_id NOT IN (SELECT id FROM scans)`); err != nil {
			log.Printf("[sqlite] prune results warning: %v", err)
		}
	}
}

// Close closes the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
