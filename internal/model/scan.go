package model

import (
	"encoding/json"
	"time"
)

// ScanFilters configures one scan invocation. The struct is read-only for
// the duration of the scan.
type ScanFilters struct {
	Timeframe          Timeframe `json:"timeframe"`
	MinScore           float64   `json:"min_score"`
	ExcludeStablecoins bool      `json:"exclude_stablecoins"`
	MinLiquidity       float64   `json:"min_liquidity,omitempty"` // 24h quote volume floor, 0 = no floor
	Limit              int       `json:"limit,omitempty"`         // cap on returned results, 0 = unlimited
}

// SymbolSkip records a symbol dropped from a scan because its candle data
// could not be fetched. Skips are informational; they never fail the scan.
type SymbolSkip struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// ScanResult is the ordered outcome of one scan over a symbol universe.
// Filters are echoed back for traceability.
type ScanResult struct {
	ID        string            `json:"id"`
	Filters   ScanFilters       `json:"filters"`
	Results   []*AnalysisResult `json:"results"` // descending TotalScore
	Skipped   []SymbolSkip      `json:"skipped,omitempty"`
	Universe  int               `json:"universe"` // symbols considered before filtering
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
}

// JSON returns the JSON-encoded scan result.
func (s *ScanResult) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}

// Summary is a compact view of a scan for history listings.
type Summary struct {
	ID        string    `json:"id"`
	Timeframe Timeframe `json:"timeframe"`
	Results   int       `json:"results"`
	Skipped   int       `json:"skipped"`
	TopSymbol string    `json:"top_symbol,omitempty"`
	TopScore  float64   `json:"top_score,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Summarize reduces a full scan result to its Summary.
func (s *ScanResult) Summarize() Summary {
	sum := Summary{
		ID:        s.ID,
		Timeframe: s.Filters.Timeframe,
		Results:   len(s.Results),
		Skipped:   len(s.Skipped),
		StartedAt: s.StartedAt,
	}
	if len(s.Results) > 0 {
		sum.TopSymbol = s.Results[0].Symbol
		sum.TopScore = s.Results[0].TotalScore
	}
	return sum
}
