// Package scanner runs the full per-symbol analysis pipeline across a
// market universe and reduces the output to a ranked, filtered result
// list.
//
// Per-symbol work is stateless and fans out across a bounded worker pool;
// a per-symbol fetch failure becomes a recorded skip, never a scan
// failure. The only hard error a scan returns is invalid configuration,
// rejected before any work is issued.
package scanner

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketscan/internal/metrics"
	"marketscan/internal/model"
	"marketscan/internal/scoring"
)

// SymbolInfo describes one tradable symbol in the universe.
type SymbolInfo struct {
	Symbol         string
	QuoteVolume24h float64
}

// Supplier provides candle series keyed by (symbol, timeframe). A supplier
// may block or fail per symbol; the scanner isolates those failures.
type Supplier interface {
	Candles(ctx context.Context, symbol string, tf model.Timeframe, limit int) (model.Series, error)
}

// Universe lists the symbols eligible for scanning.
type Universe interface {
	Symbols(ctx context.Context) ([]SymbolInfo, error)
}

const (
	defaultWorkers     = 8
	defaultCandleLimit = 168 // multi-day context on hourly bars
)

// Option tunes a Scanner.
type Option func(*Scanner)

// WithWorkers sets the fan-out width for per-symbol analysis.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithCandleLimit sets how many candles are requested per symbol.
func WithCandleLimit(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.candleLimit = n
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scanner) { s.prom = m }
}

// Scanner orchestrates universe scans. Safe for concurrent use; each scan
// owns its own transient state.
type Scanner struct {
	engine      *scoring.Engine
	supplier    Supplier
	universe    Universe
	workers     int
	candleLimit int
	prom        *metrics.Metrics
}

// New creates a Scanner around a scoring engine, a candle supplier and a
// symbol universe.
func New(engine *scoring.Engine, supplier Supplier, universe Universe, opts ...Option) *Scanner {
	s := &Scanner{
		engine:      engine,
		supplier:    supplier,
		universe:    universe,
		workers:     defaultWorkers,
		candleLimit: defaultCandleLimit,
	}
	if min := engine.MinCandles(); s.candleLimit < min {
		s.candleLimit = min
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan analyzes every eligible symbol on the requested timeframe and
// returns the survivors ordered by total score descending. Invalid
// filters fail fast; bad market data for individual symbols is recorded
// in Skipped.
func (s *Scanner) Scan(ctx context.Context, filters model.ScanFilters) (*model.ScanResult, error) {
	if err := ValidateFilters(filters); err != nil {
		return nil, err
	}

	start := time.Now()
	scanID := uuid.NewString()

	infos, err := s.universe.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanner: list universe: %w", err)
	}
	universeSize := len(infos)

	eligible := make([]SymbolInfo, 0, len(infos))
	for _, info := range infos {
		if filters.ExcludeStablecoins && IsStablecoin(info.Symbol) {
			s.countFiltered()
			continue
		}
		if filters.MinLiquidity > 0 && info.QuoteVolume24h < filters.MinLiquidity {
			s.countFiltered()
			continue
		}
		eligible = append(eligible, info)
	}

	results, skipped := s.analyzeAll(ctx, scanID, eligible, filters)

	// Rank survivors by score, symbol as a deterministic tie-break.
	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		return results[i].Symbol < results[j].Symbol
	})
	if filters.Limit > 0 && len(results) > filters.Limit {
		results = results[:filters.Limit]
	}

	scan := &model.ScanResult{
		ID:        scanID,
		Filters:   filters,
		Results:   results,
		Skipped:   skipped,
		Universe:  universeSize,
		StartedAt: start,
		Duration:  time.Since(start),
	}

	if s.prom != nil {
		s.prom.ScansTotal.WithLabelValues(filters.Timeframe.String()).Inc()
		s.prom.ScanDuration.Observe(scan.Duration.Seconds())
	}
	log.Printf("[scanner] scan %s: %d/%d symbols passed (%d skipped) in %s",
		scanID[:8], len(results), universeSize, len(skipped), scan.Duration.Round(time.Millisecond))
	return scan, nil
}

// analyzeAll fans the per-symbol pipeline out over the worker pool.
// Cancellation stops new work from being issued; symbols already in
// flight finish so no partial result is ever published.
func (s *Scanner) analyzeAll(ctx context.Context, scanID string, infos []SymbolInfo, filters model.ScanFilters) ([]*model.AnalysisResult, []model.SymbolSkip) {
	jobs := make(chan SymbolInfo)
	resultCh := make(chan *model.AnalysisResult, len(infos))
	skipCh := make(chan model.SymbolSkip, len(infos))

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for info := range jobs {
				if res, skip := s.analyzeOne(ctx, scanID, info, filters); skip != nil {
					skipCh <- *skip
				} else if res != nil {
					resultCh <- res
				}
			}
		}()
	}

feed:
	for _, info := range infos {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- info:
		}
	}
	close(jobs)
	wg.Wait()
	close(resultCh)
	close(skipCh)

	results := make([]*model.AnalysisResult, 0, len(infos))
	for res := range resultCh {
		results = append(results, res)
	}
	skipped := make([]model.SymbolSkip, 0)
	for skip := range skipCh {
		skipped = append(skipped, skip)
	}
	return results, skipped
}

// analyzeOne runs the pipeline for a single symbol. Returns a skip record
// instead of a result when candle data is unavailable, or (nil, nil) when
// the result falls below the score floor.
func (s *Scanner) analyzeOne(ctx context.Context, scanID string, info SymbolInfo, filters model.ScanFilters) (*model.AnalysisResult, *model.SymbolSkip) {
	fetchStart := time.Now()
	series, err := s.supplier.Candles(ctx, info.Symbol, filters.Timeframe, s.candleLimit)
	if s.prom != nil {
		s.prom.CandleFetchDur.Observe(time.Since(fetchStart).Seconds())
	}
	if err != nil {
		if s.prom != nil {
			s.prom.SymbolsSkipped.Inc()
		}
		return nil, &model.SymbolSkip{Symbol: info.Symbol, Reason: err.Error()}
	}
	if series.Len() == 0 {
		if s.prom != nil {
			s.prom.SymbolsSkipped.Inc()
		}
		return nil, &model.SymbolSkip{Symbol: info.Symbol, Reason: "no candles returned"}
	}

	analyzeStart := time.Now()
	res := s.engine.Analyze(series)
	if s.prom != nil {
		s.prom.AnalyzeDuration.Observe(time.Since(analyzeStart).Seconds())
		s.prom.SymbolsAnalyzed.Inc()
	}

	res.Passes = res.TotalScore >= filters.MinScore
	res.Meta.ScanID = scanID
	res.Meta.ComputedAt = time.Now().UTC()

	if !res.Passes {
		return nil, nil
	}
	return res, nil
}

func (s *Scanner) countFiltered() {
	if s.prom != nil {
		s.prom.SymbolsFiltered.Inc()
	}
}
