package indicator

import "marketscan/internal/model"

// MFI computes the Money Flow Index over the trailing period: raw money
// flow (typical price × volume) is accumulated into positive or negative
// buckets depending on whether the typical price rose or fell versus the
// previous bar, and MFI = 100 − 100/(1+positive/negative).
//
// Needs period+1 candles; returns nil otherwise. The zero-division cases
// are load-bearing: an all-rising window returns exactly 100 and an
// all-falling window exactly 0, never NaN or Inf.
func MFI(s model.Series, period int) *float64 {
	if period <= 0 || s.Len() < period+1 {
		return nil
	}
	candles := s.Tail(period + 1).Candles

	positive, negative := 0.0, 0.0
	prevTP := candles[0].TypicalPrice()
	for _, c := range candles[1:] {
		tp := c.TypicalPrice()
		flow := tp * c.Volume
		switch {
		case tp > prevTP:
			positive += flow
		case tp < prevTP:
			negative += flow
		}
		prevTP = tp
	}

	var mfi float64
	switch {
	case positive == 0 && negative == 0:
		mfi = 50 // zero volume or perfectly flat window
	case negative == 0:
		mfi = 100
	case positive == 0:
		mfi = 0
	default:
		ratio := positive / negative
		mfi = 100 - (100 / (1 + ratio))
	}
	return &mfi
}
