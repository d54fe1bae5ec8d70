package indicator

import "marketscan/internal/model"

// VWAP computes the volume-weighted average price over the whole series:
// Σ(typicalPrice × volume) / Σ(volume). Returns nil for an empty series or
// one with zero total volume.
func VWAP(s model.Series) *float64 {
	if s.Len() == 0 {
		return nil
	}
	pv, vol := 0.0, 0.0
	for _, c := range s.Candles {
		pv += c.TypicalPrice() * c.Volume
		vol += c.Volume
	}
	if vol == 0 {
		return nil
	}
	v := pv / vol
	return &v
}
