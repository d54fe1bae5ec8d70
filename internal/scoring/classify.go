package scoring

import (
	"marketscan/internal/indicator"
	"marketscan/internal/model"
)

// classifyTrend derives trend bias from price, the fast/slow EMA pair and
// VWAP.
//
// The EMA stack decides: bullish when price > fast > slow, bearish on the
// mirror ordering. A contradictory stack (price above the fast EMA while
// the fast sits below the slow, or the mirror) always reads neutral; VWAP
// never overrides that. For a clean stack, VWAP only reinforces: a bullish
// stack with price below VWAP (or bearish with price above) drops back to
// neutral, but VWAP alone never creates a bias.
func (e *Engine) classifyTrend(price float64, emaFast, emaSlow, vwap *float64) model.TrendBias {
	if emaFast == nil || emaSlow == nil {
		return model.TrendNeutral
	}
	switch {
	case price > *emaFast && *emaFast > *emaSlow:
		if vwap != nil && price < *vwap {
			return model.TrendNeutral
		}
		return model.TrendBullish
	case price < *emaFast && *emaFast < *emaSlow:
		if vwap != nil && price > *vwap {
			return model.TrendNeutral
		}
		return model.TrendBearish
	}
	return model.TrendNeutral
}

// classifyMomentum derives momentum state from RSI and MACD. RSI extremes
// take precedence over MACD entirely; otherwise both agreeing give the
// strong/weak read, with MACD sign alone as the fallback.
func (e *Engine) classifyMomentum(rsi *float64, macd *indicator.MACDResult) model.MomentumState {
	t := e.cfg.Thresholds
	if rsi != nil {
		if *rsi < t.RSIOversold {
			return model.MomentumOversold
		}
		if *rsi > t.RSIOverbought {
			return model.MomentumOverbought
		}
	}
	if rsi != nil && macd != nil {
		if *rsi > t.RSIStrong && macd.Line > 0 {
			return model.MomentumStrong
		}
		if *rsi < t.RSIWeak && macd.Line < 0 {
			return model.MomentumWeak
		}
	}
	if macd != nil {
		if macd.Line > 0 {
			return model.MomentumStrong
		}
		if macd.Line < 0 {
			return model.MomentumWeak
		}
	}
	return model.MomentumNeutral
}

// classifyVolume derives volume context. An OBV trend label, when present,
// wins unconditionally; otherwise the current average volume is compared
// against the previous window's average. Neutral when neither signal is
// available or they are equal.
func (e *Engine) classifyVolume(s model.Series, obvTrend indicator.Trend, obvTrendOK bool) model.VolumeContext {
	if obvTrendOK {
		switch obvTrend {
		case indicator.TrendUp:
			return model.VolumeIncreasing
		case indicator.TrendDown:
			return model.VolumeDecreasing
		}
	}

	window := e.cfg.Periods.OBVTrendWindow
	if s.Len() < 2*window {
		return model.VolumeNeutral
	}
	candles := s.Candles
	curr, prev := 0.0, 0.0
	for _, c := range candles[len(candles)-window:] {
		curr += c.Volume
	}
	for _, c := range candles[len(candles)-2*window : len(candles)-window] {
		prev += c.Volume
	}
	switch {
	case curr > prev:
		return model.VolumeIncreasing
	case curr < prev:
		return model.VolumeDecreasing
	}
	return model.VolumeNeutral
}

// classifyVolatility derives the volatility regime. A Bollinger squeeze
// forces "low" outright, ahead of whatever ATR says; otherwise the ATR%
// thresholds decide.
func (e *Engine) classifyVolatility(bands *indicator.Bands, atrPct *float64) model.VolatilityState {
	if bands != nil && bands.Squeeze {
		return model.VolatilityLow
	}
	if atrPct != nil {
		t := e.cfg.Thresholds
		if *atrPct < t.ATRLowPct {
			return model.VolatilityLow
		}
		if *atrPct > t.ATRHighPct {
			return model.VolatilityHigh
		}
	}
	return model.VolatilityNormal
}
