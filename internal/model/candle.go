package model

import (
	"encoding/json"
	"time"
)

// Candle represents one OHLCV bar for a symbol on a fixed timeframe.
// Prices and volumes are floats as returned by the exchange.
type Candle struct {
	OpenTime    time.Time `json:"open_time"` // bucket start time (UTC)
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`       // base-asset volume
	QuoteVolume float64   `json:"quote_volume"` // quote-asset volume
}

// TypicalPrice returns (high + low + close) / 3, the input to money-flow
// style indicators.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3.0
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// Series is an ordered candle sequence for one (symbol, timeframe) pair.
// Insertion order is chronological; timestamps are strictly increasing.
// A Series is never mutated after construction.
type Series struct {
	Symbol    string    `json:"symbol"`
	Timeframe Timeframe `json:"timeframe"`
	Candles   []Candle  `json:"candles"`
}

// NewSeries builds a Series, dropping any candle whose timestamp does not
// strictly advance past its predecessor. Out-of-order kline payloads are
// rare but show up on gap backfills.
func NewSeries(symbol string, tf Timeframe, candles []Candle) Series {
	clean := make([]Candle, 0, len(candles))
	var last time.Time
	for _, c := range candles {
		if len(clean) > 0 && !c.OpenTime.After(last) {
			continue
		}
		clean = append(clean, c)
		last = c.OpenTime
	}
	return Series{Symbol: symbol, Timeframe: tf, Candles: clean}
}

// Len returns the number of candles in the series.
func (s Series) Len() int { return len(s.Candles) }

// Last returns the most recent candle. ok is false for an empty series.
func (s Series) Last() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s Series) LastClose() float64 {
	if c, ok := s.Last(); ok {
		return c.Close
	}
	return 0
}

// Closes extracts the close column. The slice is freshly allocated.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Tail returns the trailing n candles as a sub-series (shared backing array).
// Returns the whole series when it is shorter than n.
func (s Series) Tail(n int) Series {
	if n >= len(s.Candles) {
		return s
	}
	return Series{Symbol: s.Symbol, Timeframe: s.Timeframe, Candles: s.Candles[len(s.Candles)-n:]}
}
