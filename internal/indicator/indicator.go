// Package indicator provides technical indicator calculations over candle
// series.
//
// Every function is pure: it reads only the series it is given and is
// deterministic on identical input. A series shorter than an indicator's
// lookback is not an error: functions return nil (or ok=false) and the
// caller treats that as "no signal". Change-based indicators (RSI, MFI,
// ATR) need period+1 candles; window indicators (SMA, Bollinger) need
// period candles.
package indicator

import "marketscan/internal/model"

// Trend is a coarse direction label derived from an indicator's slope.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// emaSeries computes an EMA over values with the standard 2/(period+1)
// multiplier. When at least period values exist the EMA is seeded with the
// SMA of the first period values; otherwise it is seeded with the first
// value so short histories still produce an estimate. Returns a slice the
// same length as values; entries before the seed index repeat the seed.
func emaSeries(values []float64, period int) []float64 {
	if len(values) == 0 || period <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	mult := 2.0 / float64(period+1)

	seedIdx := 0
	if len(values) >= period {
		sum := 0.0
		for i := 0; i < period; i++ {
			sum += values[i]
		}
		seedIdx = period - 1
		for i := 0; i <= seedIdx; i++ {
			out[i] = sum / float64(period)
		}
	} else {
		out[0] = values[0]
	}

	for i := seedIdx + 1; i < len(values); i++ {
		out[i] = values[i]*mult + out[i-1]*(1-mult)
	}
	return out
}

// sma computes the simple mean of values. Returns 0 for an empty slice.
func sma(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// lastCloses returns the close column of the trailing n candles.
func lastCloses(s model.Series, n int) []float64 {
	t := s.Tail(n)
	return t.Closes()
}
