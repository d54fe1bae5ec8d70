package indicator

import (
	"math"

	"marketscan/internal/model"
)

// Bands holds one Bollinger band reading.
type Bands struct {
	Middle  float64
	Upper   float64
	Lower   float64
	Width   float64 // (upper − lower) / middle, 0 when middle is 0
	Squeeze bool    // width below the squeeze threshold
}

// Bollinger computes rolling-mean ± k·stddev bands over the trailing
// period closes. Width contraction below squeezeThreshold sets the
// Squeeze flag, a low-volatility compression read. Needs period candles;
// returns nil otherwise.
func Bollinger(s model.Series, period int, k, squeezeThreshold float64) *Bands {
	if period <= 1 || s.Len() < period {
		return nil
	}
	closes := lastCloses(s, period)
	mean := sma(closes)

	variance := 0.0
	for _, c := range closes {
		d := c - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(closes)))

	b := &Bands{
		Middle: mean,
		Upper:  mean + k*stddev,
		Lower:  mean - k*stddev,
	}
	if mean != 0 {
		b.Width = (b.Upper - b.Lower) / mean
	}
	b.Squeeze = b.Width < squeezeThreshold
	return b
}
