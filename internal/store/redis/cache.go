package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"marketscan/internal/model"
)

// ErrCacheMiss is returned when no cached series exists for the key.
var ErrCacheMiss = errors.New("redis: cache miss")

func seriesKey(tf model.Timeframe, symbol string) string {
	return "candles:" + string(tf) + ":" + symbol
}

// seriesTTL keeps a cached series for half its candle interval, so an
// entry is never more than one candle stale, floored at a minute to
// keep back-to-back scans cheap.
func seriesTTL(tf model.Timeframe) time.Duration {
	ttl := tf.Duration() / 2
	if ttl < time.Minute {
		ttl = time.Minute
	}
	if ttl > 6*time.Hour {
		ttl = 6 * time.Hour
	}
	return ttl
}

// CacheSeries stores a candle series under candles:{tf}:{symbol}.
func (s *Store) CacheSeries(ctx context.Context, series model.Series) error {
	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("redis: marshal series %s: %w", series.Symbol, err)
	}
	return s.breaker.Do(func() error {
		return s.client.Set(ctx, seriesKey(series.Timeframe, series.Symbol), data, seriesTTL(series.Timeframe)).Err()
	})
}

// CachedSeries loads a cached series. Returns ErrCacheMiss when the
// key is absent and ErrBreakerOpen while Redis is unavailable; callers
// treat both as a miss and fetch from the exchange.
func (s *Store) CachedSeries(ctx context.Context, tf model.Timeframe, symbol string) (model.Series, error) {
	var data string
	err := s.breaker.Do(func() error {
		var err error
		data, err = s.client.Get(ctx, seriesKey(tf, symbol)).Result()
		if err == goredis.Nil {
			data = ""
			return nil
		}
		return err
	})
	if err != nil {
		return model.Series{}, fmt.Errorf("redis: get series %s %s: %w", symbol, tf, err)
	}
	if data == "" {
		return model.Series{}, ErrCacheMiss
	}

	var series model.Series
	if err := json.Unmarshal([]byte(data), &series); err != nil {
		return model.Series{}, fmt.Errorf("redis: unmarshal series %s %s: %w", symbol, tf, err)
	}
	return series, nil
}
