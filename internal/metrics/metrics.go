// Package metrics provides Prometheus instrumentation and dependency
// health reporting for the scan engine.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the scan engine.
type Metrics struct {
	ScansTotal       *prometheus.CounterVec // labels: timeframe
	ScanDuration     prometheus.Histogram
	SymbolsAnalyzed  prometheus.Counter
	SymbolsSkipped   prometheus.Counter
	SymbolsFiltered  prometheus.Counter
	AnalyzeDuration  prometheus.Histogram
	CandleFetchDur   prometheus.Histogram
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	ResultsPublished prometheus.Counter
	AlertsSent       prometheus.Counter
	WSClients        prometheus.Gauge

	// Redis circuit breaker: 0=closed, 1=open, 2=half-open
	RedisBreakerState prometheus.Gauge
	RedisBreakerTrips prometheus.Counter
}

// New registers and returns all scan engine metrics.
func New() *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanengine_scans_total",
			Help: "Completed scans by timeframe",
		}, []string{"timeframe"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanengine_scan_duration_seconds",
			Help:    "Wall-clock duration of a full universe scan",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		SymbolsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanengine_symbols_analyzed_total",
			Help: "Symbols run through the full indicator pipeline",
		}),
		SymbolsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanengine_symbols_skipped_total",
			Help: "Symbols skipped because candle data could not be fetched",
		}),
		SymbolsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanengine_symbols_filtered_total",
			Help: "Symbols excluded by scan filters before analysis",
		}),
		AnalyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanengine_analyze_duration_seconds",
			Help:    "Per-symbol indicator pipeline latency",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
		CandleFetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanengine_candle_fetch_duration_seconds",
			Help:    "Candle supplier fetch latency per symbol",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanengine_candle_cache_hits_total",
			Help: "Candle series served from the Redis cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanengine_candle_cache_misses_total",
			Help: "Candle series fetched from the exchange",
		}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanengine_results_published_total",
			Help: "Scan results published to Redis",
		}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanengine_alerts_sent_total",
			Help: "Notification alerts delivered",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scanengine_ws_clients",
			Help: "Currently connected WebSocket clients",
		}),
		RedisBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scanengine_redis_breaker_state",
			Help: "Redis circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		RedisBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanengine_redis_breaker_trips_total",
			Help: "Times the Redis circuit breaker opened",
		}),
	}

	prometheus.MustRegister(
		m.ScansTotal, m.ScanDuration,
		m.SymbolsAnalyzed, m.SymbolsSkipped, m.SymbolsFiltered,
		m.AnalyzeDuration, m.CandleFetchDur,
		m.CacheHits, m.CacheMisses,
		m.ResultsPublished, m.AlertsSent, m.WSClients,
		m.RedisBreakerState, m.RedisBreakerTrips,
	)
	return m
}

// HealthStatus tracks dependency health for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt       time.Time
	RedisConnected  bool
	RedisLatencyMs  float64
	SQLiteOK        bool
	SQLiteLatencyMs float64
	LastScanAt      time.Time
	LastScanID      string
	LastCheckAt     time.Time
}

// NewHealthStatus creates a health tracker stamped with the start time.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

// SetLastScan records the most recent completed scan.
func (h *HealthStatus) SetLastScan(id string, at time.Time) {
	h.mu.Lock()
	h.LastScanAt = at
	h.LastScanID = id
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a ping and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks until ctx is done.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.RedisConnected && !h.SQLiteOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	lastScan := ""
	if !h.LastScanAt.IsZero() {
		lastScan = h.LastScanAt.Format(time.RFC3339)
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastScanID      string  `json:"last_scan_id,omitempty"`
		LastScanAt      string  `json:"last_scan_at,omitempty"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastScanID:      h.LastScanID,
		LastScanAt:      lastScan,
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}
