package scanengine

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"marketscan/config"
	"marketscan/internal/gateway"
	"marketscan/internal/metrics"
	"marketscan/internal/model"
	"marketscan/internal/ringbuf"
	sqlitestore "marketscan/internal/store/sqlite"
)

// newAPITestService wires just enough of the service to exercise the
// read-side HTTP handlers: SQLite history, the recent ring, and the
// hub. No Redis, no exchange.
func newAPITestService(t *testing.T) *Service {
	t.Helper()
	recorder, err := sqlitestore.New(sqlitestore.Config{DBPath: filepath.Join(t.TempDir(), "scans.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	t.Cleanup(func() { recorder.Close() })

	return &Service{
		cfg:        &config.Config{MinScore: 2, Limit: 50},
		timeframes: []model.Timeframe{model.TF1h},
		recorder:   recorder,
		hub:        gateway.NewHub(),
		recent:     ringbuf.New(8),
		health:     metrics.NewHealthStatus(),
	}
}

func recordedScan(t *testing.T, svc *Service, id string, tf model.Timeframe) *model.ScanResult {
	t.Helper()
	scan := &model.ScanResult{
		ID:      id,
		Filters: model.ScanFilters{Timeframe: tf},
		Results: []*model.AnalysisResult{
			{Symbol: "BTCUSDT", TotalScore: 5, Recommendation: model.Buy,
				Meta: model.AnalysisMeta{ScanID: id, Timeframe: tf}},
		},
		Universe:  10,
		StartedAt: time.Now().UTC(),
	}
	if err := svc.recorder.RecordScan(context.Background(), scan); err != nil {
		t.Fatalf("RecordScan: %v", err)
	}
	svc.recent.Push(scan.Summarize())
	svc.hub.BroadcastScan(scan)
	return scan
}

func TestLatestScanEndpoint(t *testing.T) {
	svc := newAPITestService(t)
	recordedScan(t, svc, "scan-1", model.TF1h)
	mux := svc.routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/scan/latest?timeframe=1h", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var scan model.ScanResult
	if err := json.Unmarshal(rec.Body.Bytes(), &scan); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if scan.ID != "scan-1" {
		t.Errorf("scan id = %s", scan.ID)
	}
}

func TestLatestScanEndpoint_Errors(t *testing.T) {
	svc := newAPITestService(t)
	mux := svc.routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/scan/latest?timeframe=3m", nil))
	if rec.Code != 400 {
		t.Errorf("invalid timeframe status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/scan/latest?timeframe=1h", nil))
	if rec.Code != 404 {
		t.Errorf("empty state status = %d", rec.Code)
	}
}

func TestRecentScansEndpoint(t *testing.T) {
	svc := newAPITestService(t)
	recordedScan(t, svc, "scan-1", model.TF1h)
	recordedScan(t, svc, "scan-2", model.TF1h)
	mux := svc.routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/scans/recent?limit=1", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var summaries []model.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != "scan-2" {
		t.Errorf("summaries = %+v, want newest only", summaries)
	}
}

func TestScanHistoryEndpoints(t *testing.T) {
	svc := newAPITestService(t)
	recordedScan(t, svc, "scan-1", model.TF1h)
	mux := svc.routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/scans/history?timeframe=1h", nil))
	if rec.Code != 200 {
		t.Fatalf("history status = %d", rec.Code)
	}
	var summaries []model.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/scans/scan-1/results", nil))
	if rec.Code != 200 {
		t.Fatalf("results status = %d", rec.Code)
	}
	var results []*model.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(results) != 1 || results[0].Symbol != "BTCUSDT" {
		t.Errorf("results = %+v", results)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/scans/nope/results", nil))
	if rec.Code != 404 {
		t.Errorf("unknown scan status = %d", rec.Code)
	}
}

func TestSymbolHistoryEndpoint(t *testing.T) {
	svc := newAPITestService(t)
	recordedScan(t, svc, "scan-1", model.TF1h)
	mux := svc.routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/symbols/BTCUSDT/history?timeframe=1h", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var results []*model.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(results) != 1 || results[0].Meta.ScanID != "scan-1" {
		t.Errorf("results = %+v", results)
	}
}
