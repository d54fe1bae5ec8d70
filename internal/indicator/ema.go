package indicator

import "marketscan/internal/model"

// EMA returns the exponential moving average of the close over the given
// period. Works with any non-empty series (accuracy improves once history
// reaches the period); returns nil only for an empty series.
func EMA(s model.Series, period int) *float64 {
	if s.Len() == 0 || period <= 0 {
		return nil
	}
	ema := emaSeries(s.Closes(), period)
	v := ema[len(ema)-1]
	return &v
}

// CrossoverResult carries the fast/slow EMA pair and the stacking label.
type CrossoverResult struct {
	Fast   float64
	Slow   float64
	Signal model.Signal
}

// Crossover compares a fast EMA against a slow EMA and the current price.
// Bullish when price > fast > slow, bearish when price < fast < slow, and
// neutral on any other ordering (contradictory stacking). Returns nil when
// the series is shorter than the slow period, since a crossover read off a
// partial slow EMA whipsaws too much to act on.
func Crossover(s model.Series, fastPeriod, slowPeriod int) *CrossoverResult {
	if s.Len() < slowPeriod || fastPeriod <= 0 || slowPeriod <= fastPeriod {
		return nil
	}
	closes := s.Closes()
	fast := emaSeries(closes, fastPeriod)
	slow := emaSeries(closes, slowPeriod)

	price := closes[len(closes)-1]
	f := fast[len(fast)-1]
	sl := slow[len(slow)-1]

	res := &CrossoverResult{Fast: f, Slow: sl, Signal: model.SignalNeutral}
	switch {
	case price > f && f > sl:
		res.Signal = model.SignalBullish
	case price < f && f < sl:
		res.Signal = model.SignalBearish
	}
	return res
}
