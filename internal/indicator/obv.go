package indicator

import "marketscan/internal/model"

// OBV computes On-Balance Volume: a running volume total that adds the
// bar's volume when the close rises, subtracts it when the close falls,
// and holds on a flat close. Needs at least 2 candles; returns nil
// otherwise.
func OBV(s model.Series) *float64 {
	if s.Len() < 2 {
		return nil
	}
	candles := s.Candles
	obv := 0.0
	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			obv += candles[i].Volume
		case candles[i].Close < candles[i-1].Close:
			obv -= candles[i].Volume
		}
	}
	return &obv
}

// OBVTrend labels the recent OBV slope by comparing the current OBV
// against its value window bars earlier. ok is false when the series is
// too short or the slope is exactly flat.
func OBVTrend(s model.Series, window int) (Trend, bool) {
	if window <= 0 || s.Len() < window+2 {
		return "", false
	}
	now := OBV(s)
	then := OBV(model.Series{
		Symbol:    s.Symbol,
		Timeframe: s.Timeframe,
		Candles:   s.Candles[:s.Len()-window],
	})
	if now == nil || then == nil {
		return "", false
	}
	switch {
	case *now > *then:
		return TrendUp, true
	case *now < *then:
		return TrendDown, true
	}
	return "", false
}
