package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"marketscan/internal/model"
)

// RecentScans returns summaries of the most recent scans, newest
// first. tf narrows to one timeframe when non-empty.
func (r *Recorder) RecentScans(ctx context.Context, tf model.Timeframe, limit int) ([]model.Summary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, timeframe, results, skipped, top_symbol, top_score, started_at
		FROM scans`
	args := []any{}
	if tf != "" {
		query += ` WHERE timeframe = ?`
		args = append(args, string(tf))
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: recent scans: %w", err)
	}
	defer rows.Close()

	var out []model.Summary
	for rows.Next() {
		var (
			s         model.Summary
			timeframe string
			topSymbol sql.NullString
			topScore  sql.NullFloat64
			startedAt int64
		)
		if err := rows.Scan(&s.ID, &timeframe, &s.Results, &s.Skipped, &topSymbol, &topScore, &startedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan row: %w", err)
		}
		s.Timeframe = model.Timeframe(timeframe)
		s.TopSymbol = topSymbol.String
		s.TopScore = topScore.Float64
		s.StartedAt = time.Unix(startedAt, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// ScanResults loads the full per-symbol results of a recorded scan,
// highest score first. Returns an empty slice for unknown IDs.
func (r *Recorder) ScanResults(ctx context.Context, scanID string) ([]*model.AnalysisResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM scan_results WHERE scan_id = ? ORDER BY total_score DESC, symbol ASC`, scanID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan results %s: %w", scanID, err)
	}
	defer rows.Close()

	var out []*model.AnalysisResult
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("sqlite: result row: %w", err)
		}
		var res model.AnalysisResult
		if err := json.Unmarshal([]byte(data), &res); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal result: %w", err)
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}

// SymbolHistory returns a symbol's recommendation trail across past
// scans on one timeframe, newest first.
func (r *Recorder) SymbolHistory(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]*model.AnalysisResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT sr.data FROM scan_results sr
		JOIN scans s ON s.id = sr.scan_id
		WHERE sr.symbol = ? AND s.timeframe = ?
		ORDER BY s.started_at DESC LIMIT ?`,
		symbol, string(tf), limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: symbol history %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []*model.AnalysisResult
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("sqlite: history row: %w", err)
		}
		var res model.AnalysisResult
		if err := json.Unmarshal([]byte(data), &res); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal history: %w", err)
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}
