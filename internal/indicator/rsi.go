package indicator

import "marketscan/internal/model"

// RSI computes the Relative Strength Index over the close using Wilder's
// smoothing. Needs period+1 candles (period deltas); returns nil otherwise.
// A window with no losses reads exactly 100, no gains exactly 0; the
// 100/(1+rs) form never divides by zero here.
func RSI(s model.Series, period int) *float64 {
	if period <= 0 || s.Len() < period+1 {
		return nil
	}
	closes := s.Closes()

	// Initial averages over the first period deltas.
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	p := float64(period)
	avgGain /= p
	avgLoss /= p

	// Wilder smoothing over the remainder.
	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	var rsi float64
	switch {
	case avgLoss == 0 && avgGain == 0:
		rsi = 50 // flat window: no direction either way
	case avgLoss == 0:
		rsi = 100
	default:
		rs := avgGain / avgLoss
		rsi = 100 - (100 / (1 + rs))
	}
	return &rsi
}
