package scanengine

import (
	"context"
	"errors"
	"log/slog"

	"marketscan/internal/metrics"
	"marketscan/internal/model"
	"marketscan/internal/scanner"
	redisstore "marketscan/internal/store/redis"
)

// cachingSupplier serves candle series from the Redis cache and falls
// back to the exchange on a miss. Cache failures only cost the cached
// read: the exchange path stays available either way.
type cachingSupplier struct {
	exchange scanner.Supplier
	store    *redisstore.Store // nil disables caching entirely
	prom     *metrics.Metrics
}

func newCachingSupplier(exchange scanner.Supplier, store *redisstore.Store, prom *metrics.Metrics) *cachingSupplier {
	return &cachingSupplier{exchange: exchange, store: store, prom: prom}
}

func (c *cachingSupplier) Candles(ctx context.Context, symbol string, tf model.Timeframe, limit int) (model.Series, error) {
	if c.store != nil {
		series, err := c.store.CachedSeries(ctx, tf, symbol)
		switch {
		case err == nil && series.Len() >= limit:
			c.prom.CacheHits.Inc()
			return series, nil
		case err != nil && !errors.Is(err, redisstore.ErrCacheMiss) && !errors.Is(err, redisstore.ErrBreakerOpen):
			slog.Debug("candle cache read failed", "symbol", symbol, "err", err)
		}
	}
	c.prom.CacheMisses.Inc()

	series, err := c.exchange.Candles(ctx, symbol, tf, limit)
	if err != nil {
		return model.Series{}, err
	}

	if c.store != nil {
		if err := c.store.CacheSeries(ctx, series); err != nil && !errors.Is(err, redisstore.ErrBreakerOpen) {
			slog.Debug("candle cache write failed", "symbol", symbol, "err", err)
		}
	}
	return series, nil
}
