package model

import (
	"fmt"
	"time"
)

// Timeframe identifies a candle bucket duration. The string values match
// the exchange kline interval notation so they can go straight onto the
// wire without translation.
type Timeframe string

const (
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
	TF1w  Timeframe = "1w"
)

// ErrInvalidTimeframe is returned when a request names a timeframe outside
// the supported set.
var ErrInvalidTimeframe = fmt.Errorf("invalid timeframe (want one of %v)", Timeframes())

// Timeframes returns all supported timeframes, shortest first.
func Timeframes() []Timeframe {
	return []Timeframe{TF15m, TF1h, TF4h, TF1d, TF1w}
}

// ParseTimeframe validates a raw timeframe string.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if !tf.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
	}
	return tf, nil
}

// Valid reports whether the timeframe is one of the supported set.
func (tf Timeframe) Valid() bool {
	switch tf {
	case TF15m, TF1h, TF4h, TF1d, TF1w:
		return true
	}
	return false
}

// Duration returns the bucket length of the timeframe.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TF15m:
		return 15 * time.Minute
	case TF1h:
		return time.Hour
	case TF4h:
		return 4 * time.Hour
	case TF1d:
		return 24 * time.Hour
	case TF1w:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

func (tf Timeframe) String() string { return string(tf) }
