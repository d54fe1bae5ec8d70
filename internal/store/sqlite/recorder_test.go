package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"marketscan/internal/model"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := New(Config{DBPath: filepath.Join(t.TempDir(), "scans.db"), KeepScans: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return rec
}

func sampleScan(id string, tf model.Timeframe, startedAt time.Time) *model.ScanResult {
	return &model.ScanResult{
		ID:      id,
		Filters: model.ScanFilters{Timeframe: tf, MinScore: 2},
		Results: []*model.AnalysisResult{
			{
				Symbol:         "BTCUSDT",
				Price:          42000,
				TotalScore:     5,
				Recommendation: model.Buy,
				Passes:         true,
				Meta:           model.AnalysisMeta{ScanID: id, Timeframe: tf},
			},
			{
				Symbol:         "ETHUSDT",
				Price:          2500,
				TotalScore:     3,
				Recommendation: model.Buy,
				Passes:         true,
				Meta:           model.AnalysisMeta{ScanID: id, Timeframe: tf},
			},
		},
		Skipped:   []model.SymbolSkip{{Symbol: "XRPUSDT", Reason: "fetch failed"}},
		Universe:  100,
		StartedAt: startedAt,
		Duration:  3 * time.Second,
	}
}

func TestRecordAndReadBack(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()

	scan := sampleScan("scan-1", model.TF1h, time.Now().UTC().Truncate(time.Second))
	if err := rec.RecordScan(ctx, scan); err != nil {
		t.Fatalf("RecordScan: %v", err)
	}

	summaries, err := rec.RecentScans(ctx, model.TF1h, 10)
	if err != nil {
		t.Fatalf("RecentScans: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	s := summaries[0]
	if s.ID != "scan-1" || s.Results != 2 || s.Skipped != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.TopSymbol != "BTCUSDT" || s.TopScore != 5 {
		t.Errorf("top = %s/%v, want BTCUSDT/5", s.TopSymbol, s.TopScore)
	}

	results, err := rec.ScanResults(ctx, "scan-1")
	if err != nil {
		t.Fatalf("ScanResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Symbol != "BTCUSDT" || results[1].Symbol != "ETHUSDT" {
		t.Errorf("order = %s, %s", results[0].Symbol, results[1].Symbol)
	}
	if results[0].Recommendation != model.Buy {
		t.Errorf("recommendation = %s", results[0].Recommendation)
	}
}

func TestRecentScansFiltersByTimeframe(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()
	base := time.Now().UTC()

	if err := rec.RecordScan(ctx, sampleScan("h1", model.TF1h, base)); err != nil {
		t.Fatalf("RecordScan h1: %v", err)
	}
	if err := rec.RecordScan(ctx, sampleScan("d1", model.TF1d, base.Add(time.Minute))); err != nil {
		t.Fatalf("RecordScan d1: %v", err)
	}

	hourly, err := rec.RecentScans(ctx, model.TF1h, 10)
	if err != nil {
		t.Fatalf("RecentScans: %v", err)
	}
	if len(hourly) != 1 || hourly[0].ID != "h1" {
		t.Errorf("hourly = %+v, want only h1", hourly)
	}

	all, err := rec.RecentScans(ctx, "", 10)
	if err != nil {
		t.Fatalf("RecentScans all: %v", err)
	}
	if len(all) != 2 || all[0].ID != "d1" {
		t.Errorf("all = %+v, want d1 first", all)
	}
}

func TestRetentionPrunesOldScans(t *testing.T) {
	rec := openTestRecorder(t) // KeepScans = 3
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		scan := sampleScan("scan-"+string(rune('a'+i)), model.TF1h, base.Add(time.Duration(i)*time.Minute))
		if err := rec.RecordScan(ctx, scan); err != nil {
			t.Fatalf("RecordScan %d: %v", i, err)
		}
	}

	summaries, err := rec.RecentScans(ctx, model.TF1h, 100)
	if err != nil {
		t.Fatalf("RecentScans: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("got %d scans after prune, want 3", len(summaries))
	}
	// Oldest two are gone along with their results.
	if res, _ := rec.ScanResults(ctx, "scan-a"); len(res) != 0 {
		t.Errorf("results for pruned scan still present: %d", len(res))
	}
}

func TestSymbolHistory(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		scan := sampleScan("scan-"+string(rune('1'+i)), model.TF4h, base.Add(time.Duration(i)*time.Hour))
		if err := rec.RecordScan(ctx, scan); err != nil {
			t.Fatalf("RecordScan: %v", err)
		}
	}

	hist, err := rec.SymbolHistory(ctx, "BTCUSDT", model.TF4h, 2)
	if err != nil {
		t.Fatalf("SymbolHistory: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("got %d entries, want 2 (limited)", len(hist))
	}
	if hist[0].Meta.ScanID != "scan-3" {
		t.Errorf("newest entry from %s, want scan-3", hist[0].Meta.ScanID)
	}
}
