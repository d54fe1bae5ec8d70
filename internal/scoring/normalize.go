package scoring

import (
	"fmt"

	"marketscan/internal/indicator"
	"marketscan/internal/model"
)

// Display/weight tiers. Tier 1 indicators drive the composite score and
// the headline read; tier 3 is context only.
const (
	tierPrimary   = 1
	tierSecondary = 2
	tierContext   = 3
)

// neutralResult is the typed "no signal" value for an uncomputable
// indicator: nil value, neutral signal, zero score.
func neutralResult(tier int, desc string) model.IndicatorResult {
	return model.IndicatorResult{
		Signal:      model.SignalNeutral,
		Tier:        tier,
		Description: desc,
	}
}

// clamp bounds a sub-score to ±cfg.Scores.Clamp so no single indicator
// can dominate the composite sum.
func (e *Engine) clamp(v float64) float64 {
	c := e.cfg.Scores.Clamp
	if v > c {
		return c
	}
	if v < -c {
		return -c
	}
	return v
}

func (e *Engine) normalizeTrend(cross *indicator.CrossoverResult) model.IndicatorResult {
	if cross == nil {
		return neutralResult(tierPrimary, "insufficient history for EMA stack")
	}
	res := model.IndicatorResult{
		Value:  model.Float(cross.Fast - cross.Slow),
		Signal: cross.Signal,
		Tier:   tierPrimary,
	}
	switch cross.Signal {
	case model.SignalBullish:
		res.Score = e.clamp(e.cfg.Scores.TrendStack)
		res.Description = fmt.Sprintf("price above rising EMA stack (%d>%d)", e.cfg.Periods.EMAFast, e.cfg.Periods.EMASlow)
	case model.SignalBearish:
		res.Score = e.clamp(-e.cfg.Scores.TrendStack)
		res.Description = fmt.Sprintf("price below falling EMA stack (%d<%d)", e.cfg.Periods.EMAFast, e.cfg.Periods.EMASlow)
	default:
		res.Description = "EMA stack contradictory"
	}
	return res
}

func (e *Engine) normalizeRSI(rsi *float64) model.IndicatorResult {
	if rsi == nil {
		return neutralResult(tierPrimary, "insufficient history for RSI")
	}
	t := e.cfg.Thresholds
	res := model.IndicatorResult{Value: rsi, Signal: model.SignalNeutral, Tier: tierPrimary}
	switch {
	case *rsi < t.RSIOversold:
		// Oversold scores positive: reversal candidate.
		res.Signal = model.SignalBullish
		res.Score = e.clamp(e.cfg.Scores.RSIExtreme)
		res.Description = fmt.Sprintf("RSI %.1f oversold, reversal candidate", *rsi)
	case *rsi > t.RSIOverbought:
		res.Signal = model.SignalBearish
		res.Score = e.clamp(-e.cfg.Scores.RSIExtreme)
		res.Description = fmt.Sprintf("RSI %.1f overbought", *rsi)
	case *rsi > t.RSIStrong:
		res.Signal = model.SignalBullish
		res.Score = e.clamp(e.cfg.Scores.RSIMild)
		res.Description = fmt.Sprintf("RSI %.1f, healthy bullish momentum", *rsi)
	case *rsi < t.RSIWeak:
		res.Signal = model.SignalBearish
		res.Score = e.clamp(-e.cfg.Scores.RSIMild)
		res.Description = fmt.Sprintf("RSI %.1f, weak momentum", *rsi)
	default:
		res.Description = fmt.Sprintf("RSI %.1f, mid-range", *rsi)
	}
	return res
}

func (e *Engine) normalizeMACD(m *indicator.MACDResult) model.IndicatorResult {
	if m == nil {
		return neutralResult(tierPrimary, "insufficient history for MACD")
	}
	res := model.IndicatorResult{Value: model.Float(m.Line), Signal: model.SignalNeutral, Tier: tierPrimary}
	switch {
	case m.Line > 0 && m.Histogram > 0:
		res.Signal = model.SignalBullish
		res.Score = e.clamp(e.cfg.Scores.MACDStrong)
		res.Description = "MACD positive and rising above signal"
	case m.Line > 0:
		res.Signal = model.SignalBullish
		res.Score = e.clamp(e.cfg.Scores.MACDMild)
		res.Description = "MACD positive"
	case m.Line < 0 && m.Histogram < 0:
		res.Signal = model.SignalBearish
		res.Score = e.clamp(-e.cfg.Scores.MACDStrong)
		res.Description = "MACD negative and falling below signal"
	case m.Line < 0:
		res.Signal = model.SignalBearish
		res.Score = e.clamp(-e.cfg.Scores.MACDMild)
		res.Description = "MACD negative"
	default:
		res.Description = "MACD flat"
	}
	return res
}

func (e *Engine) normalizeMFI(mfi *float64) model.IndicatorResult {
	if mfi == nil {
		return neutralResult(tierSecondary, "insufficient history for MFI")
	}
	t := e.cfg.Thresholds
	res := model.IndicatorResult{Value: mfi, Signal: model.SignalNeutral, Tier: tierSecondary}
	switch {
	case *mfi < t.MFIOversold:
		res.Signal = model.SignalBullish
		res.Score = e.clamp(e.cfg.Scores.MFIExtreme)
		res.Description = fmt.Sprintf("MFI %.1f, money flow oversold", *mfi)
	case *mfi > t.MFIOverbought:
		res.Signal = model.SignalBearish
		res.Score = e.clamp(-e.cfg.Scores.MFIExtreme)
		res.Description = fmt.Sprintf("MFI %.1f, money flow overbought", *mfi)
	default:
		res.Description = fmt.Sprintf("MFI %.1f, balanced money flow", *mfi)
	}
	return res
}

func (e *Engine) normalizeOBV(obv *float64, trend indicator.Trend, trendOK bool) model.IndicatorResult {
	if obv == nil {
		return neutralResult(tierSecondary, "insufficient history for OBV")
	}
	res := model.IndicatorResult{Value: obv, Signal: model.SignalNeutral, Tier: tierSecondary, Description: "OBV flat"}
	if !trendOK {
		return res
	}
	switch trend {
	case indicator.TrendUp:
		res.Signal = model.SignalBullish
		res.Score = e.clamp(e.cfg.Scores.OBVTrend)
		res.Description = "OBV rising, volume backs the move"
	case indicator.TrendDown:
		res.Signal = model.SignalBearish
		res.Score = e.clamp(-e.cfg.Scores.OBVTrend)
		res.Description = "OBV falling, volume leaving"
	}
	return res
}

func (e *Engine) normalizeBollinger(b *indicator.Bands) model.IndicatorResult {
	if b == nil {
		return neutralResult(tierSecondary, "insufficient history for Bollinger bands")
	}
	res := model.IndicatorResult{Value: model.Float(b.Width), Signal: model.SignalNeutral, Tier: tierSecondary}
	if b.Squeeze {
		// Compression is a precursor setup, not a direction call.
		res.Score = e.clamp(e.cfg.Scores.Squeeze)
		res.Description = fmt.Sprintf("band squeeze, width %.4f below %.4f", b.Width, e.cfg.Thresholds.SqueezeWidth)
	} else {
		res.Description = fmt.Sprintf("band width %.4f", b.Width)
	}
	return res
}

func (e *Engine) normalizeATR(atrPct *float64) model.IndicatorResult {
	if atrPct == nil {
		return neutralResult(tierContext, "insufficient history for ATR")
	}
	t := e.cfg.Thresholds
	res := model.IndicatorResult{Value: atrPct, Signal: model.SignalNeutral, Tier: tierContext}
	switch {
	case *atrPct < t.ATRLowPct:
		res.Description = fmt.Sprintf("ATR %.2f%%, low volatility", *atrPct)
	case *atrPct > t.ATRHighPct:
		res.Description = fmt.Sprintf("ATR %.2f%%, high volatility", *atrPct)
	default:
		res.Description = fmt.Sprintf("ATR %.2f%%, normal volatility", *atrPct)
	}
	return res
}

func (e *Engine) normalizeVWAP(price float64, vwap *float64) model.IndicatorResult {
	if vwap == nil {
		return neutralResult(tierContext, "no volume for VWAP")
	}
	res := model.IndicatorResult{Value: vwap, Signal: model.SignalNeutral, Tier: tierContext}
	switch {
	case price > *vwap:
		res.Signal = model.SignalBullish
		res.Score = e.clamp(e.cfg.Scores.VWAPBias)
		res.Description = "price above VWAP"
	case price < *vwap:
		res.Signal = model.SignalBearish
		res.Score = e.clamp(-e.cfg.Scores.VWAPBias)
		res.Description = "price below VWAP"
	default:
		res.Description = "price at VWAP"
	}
	return res
}
