package indicator

import (
	"math"

	"marketscan/internal/model"
)

// ATR computes the Average True Range with Wilder's smoothing. True range
// per bar is max(high−low, |high−prevClose|, |low−prevClose|). Needs
// period+1 candles; returns nil otherwise.
func ATR(s model.Series, period int) *float64 {
	if period <= 0 || s.Len() < period+1 {
		return nil
	}
	candles := s.Candles

	trueRange := func(c, prev model.Candle) float64 {
		hl := c.High - c.Low
		hc := math.Abs(c.High - prev.Close)
		lc := math.Abs(c.Low - prev.Close)
		return math.Max(hl, math.Max(hc, lc))
	}

	// Seed with the SMA of the first period true ranges.
	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trueRange(candles[i], candles[i-1])
	}
	p := float64(period)
	atr /= p

	for i := period + 1; i < len(candles); i++ {
		atr = (atr*(p-1) + trueRange(candles[i], candles[i-1])) / p
	}
	return &atr
}

// ATRPercent expresses ATR as a percentage of the last close so volatility
// is comparable across symbols at different price scales. Returns nil when
// ATR cannot be computed or the last close is 0.
func ATRPercent(s model.Series, period int) *float64 {
	atr := ATR(s, period)
	if atr == nil {
		return nil
	}
	close := s.LastClose()
	if close == 0 {
		return nil
	}
	pct := *atr / close * 100
	return &pct
}
