package model

import (
	"encoding/json"
	"time"
)

// Signal is the qualitative reading of a single indicator.
type Signal string

const (
	SignalBullish Signal = "bullish"
	SignalNeutral Signal = "neutral"
	SignalBearish Signal = "bearish"
)

// Indicator map keys. These names are part of the downstream contract
// (narrative consumers key off them), so they never change casually.
const (
	IndEMACrossover = "ema_crossover"
	IndRSI          = "rsi"
	IndMACD         = "macd"
	IndMFI          = "mfi"
	IndOBV          = "obv"
	IndBollinger    = "bollinger"
	IndATR          = "atr"
	IndVWAP         = "vwap"
)

// IndicatorResult is the normalized output of one indicator for one symbol.
// Value is nil when the series was too short to compute the indicator; a
// nil Value always pairs with SignalNeutral and Score 0.
type IndicatorResult struct {
	Value       *float64 `json:"value"`
	Signal      Signal   `json:"signal"`
	Score       float64  `json:"score"`
	Tier        int      `json:"tier"`
	Description string   `json:"description"`
}

// Float is a convenience constructor for optional float fields.
func Float(v float64) *float64 { return &v }

// TrendBias classifies price structure relative to the EMA stack and VWAP.
type TrendBias string

const (
	TrendBullish TrendBias = "bullish"
	TrendBearish TrendBias = "bearish"
	TrendNeutral TrendBias = "neutral"
)

// MomentumState classifies oscillator momentum.
type MomentumState string

const (
	MomentumStrong     MomentumState = "strong"
	MomentumWeak       MomentumState = "weak"
	MomentumOversold   MomentumState = "oversold"
	MomentumOverbought MomentumState = "overbought"
	MomentumNeutral    MomentumState = "neutral"
)

// VolumeContext classifies volume-flow direction.
type VolumeContext string

const (
	VolumeIncreasing VolumeContext = "increasing"
	VolumeDecreasing VolumeContext = "decreasing"
	VolumeNeutral    VolumeContext = "neutral"
)

// VolatilityState classifies current volatility regime.
type VolatilityState string

const (
	VolatilityHigh   VolatilityState = "high"
	VolatilityLow    VolatilityState = "low"
	VolatilityNormal VolatilityState = "normal"
)

// MarketStates is the four-axis classification emitted alongside the raw
// indicator map. Field names and value sets are a stable contract for the
// narrative-generation consumer.
type MarketStates struct {
	TrendBias       TrendBias       `json:"trend_bias"`
	MomentumState   MomentumState   `json:"momentum_state"`
	VolumeContext   VolumeContext   `json:"volume_context"`
	VolatilityState VolatilityState `json:"volatility_state"`
}

// Recommendation is the discrete trading call derived from the composite
// score. Values are ordered; Rank gives the ordering for monotonicity
// checks and sorting.
type Recommendation string

const (
	StrongSell Recommendation = "strong_sell"
	Sell       Recommendation = "sell"
	Hold       Recommendation = "hold"
	Buy        Recommendation = "buy"
	StrongBuy  Recommendation = "strong_buy"
)

// Rank returns the position of the recommendation in the strong_sell(0) …
// strong_buy(4) ordering. Unknown values rank as hold.
func (r Recommendation) Rank() int {
	switch r {
	case StrongSell:
		return 0
	case Sell:
		return 1
	case Hold:
		return 2
	case Buy:
		return 3
	case StrongBuy:
		return 4
	default:
		return 2
	}
}

// AnalysisMeta carries provenance for one analysis.
type AnalysisMeta struct {
	ScanID        string    `json:"scan_id"`
	Timeframe     Timeframe `json:"timeframe"`
	CandleCount   int       `json:"candle_count"`
	ConfigVersion string    `json:"config_version"`
	ComputedAt    time.Time `json:"computed_at"`
}

// AnalysisResult is the full per-symbol output of the pipeline. It is
// built once per scan and never mutated afterwards.
type AnalysisResult struct {
	Symbol         string                     `json:"symbol"`
	Price          float64                    `json:"price"`
	Indicators     map[string]IndicatorResult `json:"indicators"`
	States         MarketStates               `json:"states"`
	TotalScore     float64                    `json:"total_score"`
	Recommendation Recommendation             `json:"recommendation"`
	Passes         bool                       `json:"passes"`
	PassesDetail   map[string]bool            `json:"passes_detail"`
	Meta           AnalysisMeta               `json:"meta"`
}

// Indicator returns the named indicator result and whether it was computed.
// A present entry with a nil Value still means "no signal".
func (a *AnalysisResult) Indicator(name string) (IndicatorResult, bool) {
	r, ok := a.Indicators[name]
	return r, ok
}

// JSON returns the JSON-encoded result (ignoring errors for hot-path usage).
func (a *AnalysisResult) JSON() []byte {
	b, _ := json.Marshal(a)
	return b
}
