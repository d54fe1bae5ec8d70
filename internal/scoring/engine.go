package scoring

import (
	"fmt"

	"marketscan/internal/indicator"
	"marketscan/internal/model"
)

// Engine runs the full per-symbol pipeline: indicator bank →
// normalization → state classification → composite score. An Engine is
// immutable after construction and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine validates the config and builds an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's scoring configuration.
func (e *Engine) Config() Config { return e.cfg }

// Analyze computes the full AnalysisResult for one candle series. A series
// too short for some indicator yields a neutral result for that indicator,
// never an error; only the scan-level Meta fields (scan ID, timestamp) are
// left for the caller to fill.
func (e *Engine) Analyze(s model.Series) *model.AnalysisResult {
	p := e.cfg.Periods
	t := e.cfg.Thresholds

	price := s.LastClose()

	cross := indicator.Crossover(s, p.EMAFast, p.EMASlow)
	rsi := indicator.RSI(s, p.RSI)
	macd := indicator.MACD(s, p.MACDFast, p.MACDSlow, p.MACDSignal)
	mfi := indicator.MFI(s, p.MFI)
	obv := indicator.OBV(s)
	obvTrend, obvTrendOK := indicator.OBVTrend(s, p.OBVTrendWindow)
	bands := indicator.Bollinger(s, p.Bollinger, t.BollingerK, t.SqueezeWidth)
	atrPct := indicator.ATRPercent(s, p.ATR)
	vwap := indicator.VWAP(s)

	indicators := map[string]model.IndicatorResult{
		model.IndEMACrossover: e.normalizeTrend(cross),
		model.IndRSI:          e.normalizeRSI(rsi),
		model.IndMACD:         e.normalizeMACD(macd),
		model.IndMFI:          e.normalizeMFI(mfi),
		model.IndOBV:          e.normalizeOBV(obv, obvTrend, obvTrendOK),
		model.IndBollinger:    e.normalizeBollinger(bands),
		model.IndATR:          e.normalizeATR(atrPct),
		model.IndVWAP:         e.normalizeVWAP(price, vwap),
	}

	var emaFast, emaSlow *float64
	if cross != nil {
		emaFast, emaSlow = model.Float(cross.Fast), model.Float(cross.Slow)
	}
	states := model.MarketStates{
		TrendBias:       e.classifyTrend(price, emaFast, emaSlow, vwap),
		MomentumState:   e.classifyMomentum(rsi, macd),
		VolumeContext:   e.classifyVolume(s, obvTrend, obvTrendOK),
		VolatilityState: e.classifyVolatility(bands, atrPct),
	}

	total := e.compositeScore(indicators)

	detail := make(map[string]bool, len(compositeSubset))
	for _, name := range compositeSubset {
		detail[name] = indicators[name].Signal == model.SignalBullish
	}

	return &model.AnalysisResult{
		Symbol:         s.Symbol,
		Price:          price,
		Indicators:     indicators,
		States:         states,
		TotalScore:     total,
		Recommendation: e.Recommend(total),
		PassesDetail:   detail,
		Meta: model.AnalysisMeta{
			Timeframe:     s.Timeframe,
			CandleCount:   s.Len(),
			ConfigVersion: e.cfg.Version,
		},
	}
}

// MinCandles exposes the config's recommended minimum series length.
func (e *Engine) MinCandles() int { return e.cfg.MinCandles() }
