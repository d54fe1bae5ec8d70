package indicator

import "marketscan/internal/model"

// MACDResult holds the MACD line, its signal-line EMA and the histogram.
type MACDResult struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// MACD computes the Moving Average Convergence Divergence: a fast EMA minus
// a slow EMA of the close, with a signal EMA over the resulting line.
// Needs at least slowPeriod candles; returns nil otherwise. The sign of
// Line is what momentum classification consumes.
func MACD(s model.Series, fastPeriod, slowPeriod, signalPeriod int) *MACDResult {
	if fastPeriod <= 0 || slowPeriod <= fastPeriod || signalPeriod <= 0 {
		return nil
	}
	if s.Len() < slowPeriod {
		return nil
	}
	closes := s.Closes()
	fast := emaSeries(closes, fastPeriod)
	slow := emaSeries(closes, slowPeriod)

	// MACD line exists from the point the slow EMA is seeded.
	line := make([]float64, 0, len(closes)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(closes); i++ {
		line = append(line, fast[i]-slow[i])
	}

	sig := emaSeries(line, signalPeriod)

	res := &MACDResult{
		Line:   line[len(line)-1],
		Signal: sig[len(sig)-1],
	}
	res.Histogram = res.Line - res.Signal
	return res
}
