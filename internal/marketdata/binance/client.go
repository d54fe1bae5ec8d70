// Package binance fetches spot market data over the Binance REST API
// and maps it onto the engine's candle model.
//
// All calls run through a shared token-bucket limiter so a wide scan
// cannot trip the exchange's request-weight budget.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	libbinance "github.com/adshao/go-binance/v2"
	"golang.org/x/time/rate"

	"marketscan/internal/model"
)

// Binance allows roughly 6000 request-weight per minute; klines cost
// 1-2 weight each. 15 req/s with a small burst stays far under that
// even with aggressive worker counts.
const (
	defaultRequestsPerSec = 15
	defaultBurst          = 5
)

// intervals maps engine timeframes to Binance kline interval strings.
var intervals = map[model.Timeframe]string{
	model.TF15m: "15m",
	model.TF1h:  "1h",
	model.TF4h:  "4h",
	model.TF1d:  "1d",
	model.TF1w:  "1w",
}

// Client wraps the Binance spot REST client behind the scanner's
// Supplier and Universe interfaces.
type Client struct {
	api     *libbinance.Client
	limiter *rate.Limiter
	quote   string
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit overrides the default request rate.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithQuoteAsset restricts the universe to pairs quoted in the given
// asset, e.g. "USDT". Empty means all spot pairs.
func WithQuoteAsset(quote string) Option {
	return func(c *Client) { c.quote = strings.ToUpper(quote) }
}

// New builds a public-data client. API credentials are optional for
// klines and exchange info; pass empty strings for anonymous access.
func New(apiKey, secretKey string, opts ...Option) *Client {
	c := &Client{
		api:     libbinance.NewClient(apiKey, secretKey),
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSec), defaultBurst),
		quote:   "USDT",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Candles fetches the most recent limit klines for symbol at tf.
func (c *Client) Candles(ctx context.Context, symbol string, tf model.Timeframe, limit int) (model.Series, error) {
	interval, ok := intervals[tf]
	if !ok {
		return model.Series{}, fmt.Errorf("binance: %w: %q", model.ErrInvalidTimeframe, tf)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return model.Series{}, fmt.Errorf("binance: rate limiter: %w", err)
	}

	klines, err := c.api.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return model.Series{}, fmt.Errorf("binance: klines %s %s: %w", symbol, tf, err)
	}

	candles := make([]model.Candle, 0, len(klines))
	for _, k := range klines {
		candle, err := toCandle(k)
		if err != nil {
			return model.Series{}, fmt.Errorf("binance: klines %s %s: %w", symbol, tf, err)
		}
		candles = append(candles, candle)
	}
	return model.NewSeries(symbol, tf, candles), nil
}

func toCandle(k *libbinance.Kline) (model.Candle, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("parse open %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("parse high %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("parse low %q: %w", k.Low, err)
	}
	closePx, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("parse close %q: %w", k.Close, err)
	}
	vol, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("parse volume %q: %w", k.Volume, err)
	}
	quoteVol, err := strconv.ParseFloat(k.QuoteAssetVolume, 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("parse quote volume %q: %w", k.QuoteAssetVolume, err)
	}
	return model.Candle{
		OpenTime:    time.UnixMilli(k.OpenTime).UTC(),
		Open:        open,
		High:        high,
		Low:         low,
		Close:       closePx,
		Volume:      vol,
		QuoteVolume: quoteVol,
	}, nil
}
