package scanengine

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketscan/internal/model"
)

// routes builds the HTTP mux for the scan engine API.
func (svc *Service) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /scan", svc.handleScan)
	mux.HandleFunc("GET /scan/latest", svc.handleLatestScan)
	mux.HandleFunc("GET /scans/recent", svc.handleRecentScans)
	mux.HandleFunc("GET /scans/history", svc.handleScanHistory)
	mux.HandleFunc("GET /scans/{id}/results", svc.handleScanResults)
	mux.HandleFunc("GET /symbols/{symbol}/history", svc.handleSymbolHistory)
	mux.HandleFunc("GET /ws", svc.hub.HandleWS)
	mux.Handle("GET /healthz", svc.health)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// handleScan runs a scan synchronously with the posted filters.
// Omitted fields fall back to the configured defaults.
func (svc *Service) handleScan(w http.ResponseWriter, r *http.Request) {
	filters := svc.cfg.DefaultFilters(svc.timeframes[0])
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}

	scan, err := svc.RunScan(r.Context(), filters)
	if err != nil {
		if errors.Is(err, model.ErrInvalidTimeframe) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("scan request failed", "err", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

// handleLatestScan serves the newest completed scan for a timeframe,
// preferring the in-memory copy and falling back to Redis so results
// survive a restart.
func (svc *Service) handleLatestScan(w http.ResponseWriter, r *http.Request) {
	tf, err := model.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if scan, ok := svc.hub.LatestScans()[tf]; ok {
		writeJSON(w, http.StatusOK, scan)
		return
	}

	if svc.store != nil {
		scan, err := svc.store.LatestScan(r.Context(), tf)
		if err != nil {
			slog.Warn("latest scan lookup failed", "timeframe", tf, "err", err)
		} else if scan != nil {
			writeJSON(w, http.StatusOK, scan)
			return
		}
	}
	writeError(w, http.StatusNotFound, "no scan recorded for "+string(tf))
}

// handleRecentScans serves the in-memory ring of recent summaries.
func (svc *Service) handleRecentScans(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	summaries := svc.recent.Recent(limit)
	if summaries == nil {
		summaries = []model.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleScanHistory serves durable scan history from SQLite.
func (svc *Service) handleScanHistory(w http.ResponseWriter, r *http.Request) {
	var tf model.Timeframe
	if raw := r.URL.Query().Get("timeframe"); raw != "" {
		parsed, err := model.ParseTimeframe(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		tf = parsed
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	summaries, err := svc.recorder.RecentScans(r.Context(), tf, limit)
	if err != nil {
		slog.Error("scan history query failed", "err", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if summaries == nil {
		summaries = []model.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleScanResults serves the full ranked results of one past scan.
func (svc *Service) handleScanResults(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	results, err := svc.recorder.ScanResults(r.Context(), id)
	if err != nil {
		slog.Error("scan results query failed", "scan_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "results unavailable")
		return
	}
	if len(results) == 0 {
		writeError(w, http.StatusNotFound, "unknown scan id "+id)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// handleSymbolHistory serves one symbol's recommendation trail.
func (svc *Service) handleSymbolHistory(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	tf, err := model.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := svc.recorder.SymbolHistory(r.Context(), symbol, tf, limit)
	if err != nil {
		slog.Error("symbol history query failed", "symbol", symbol, "err", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if results == nil {
		results = []*model.AnalysisResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
