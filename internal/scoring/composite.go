package scoring

import "marketscan/internal/model"

// compositeSubset names the indicators whose sub-scores sum into the
// composite. MFI, ATR and VWAP stay out: ATR/VWAP are context reads and
// MFI largely duplicates RSI's contribution on volume-weighted terms.
var compositeSubset = []string{
	model.IndEMACrossover,
	model.IndRSI,
	model.IndMACD,
	model.IndOBV,
	model.IndBollinger,
}

// compositeScore sums the normalized sub-scores of the composite subset.
// Missing indicators contribute 0 through their neutral result.
func (e *Engine) compositeScore(indicators map[string]model.IndicatorResult) float64 {
	total := 0.0
	for _, name := range compositeSubset {
		total += indicators[name].Score
	}
	return total
}

// Recommend maps a composite score to a recommendation through the
// configured monotonic thresholds. Every real number maps to exactly one
// band, with hold around zero.
func (e *Engine) Recommend(total float64) model.Recommendation {
	r := e.cfg.Recommend
	switch {
	case total >= r.StrongBuy:
		return model.StrongBuy
	case total >= r.Buy:
		return model.Buy
	case total <= r.StrongSell:
		return model.StrongSell
	case total <= r.Sell:
		return model.Sell
	default:
		return model.Hold
	}
}
