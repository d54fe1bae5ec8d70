// Package redis caches candle history and fans out finished scans.
//
// The store is an availability optimization, not a source of truth: a
// cache miss falls back to the exchange and a down Redis degrades the
// scanner to direct fetches. All calls run through a circuit breaker
// so a flapping Redis cannot add per-symbol timeouts to a wide scan.
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// Config configures the Redis store.
type Config struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int

	// Breaker tuning; zero values pick the defaults below.
	BreakerMaxFailures  int
	BreakerResetTimeout time.Duration
}

const (
	defaultMaxFailures  = 5
	defaultResetTimeout = 10 * time.Second
)

// Store wraps a Redis client with a circuit breaker.
type Store struct {
	client  *goredis.Client
	breaker *Breaker
}

// New creates a Store and pings the server.
func New(cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	resetTimeout := cfg.BreakerResetTimeout
	if resetTimeout <= 0 {
		resetTimeout = defaultResetTimeout
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Store{
		client:  client,
		breaker: NewBreaker(maxFailures, resetTimeout),
	}, nil
}

// Breaker exposes the circuit breaker, mainly so callers can hook
// state transitions into metrics.
func (s *Store) Breaker() *Breaker { return s.breaker }

// Client returns the underlying client for health checks.
func (s *Store) Client() *goredis.Client { return s.client }

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
