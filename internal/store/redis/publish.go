package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"marketscan/internal/model"
)

const (
	// ScanChannel carries summaries of completed scans for pub/sub
	// subscribers (dashboards, sibling processes).
	ScanChannel = "scan:results"

	latestScanTTL = 24 * time.Hour
)

func latestScanKey(tf model.Timeframe) string {
	return "scan:latest:" + string(tf)
}

// PublishScan stores the full scan under scan:latest:{tf} and
// publishes its summary on ScanChannel, pipelined into one roundtrip.
func (s *Store) PublishScan(ctx context.Context, scan *model.ScanResult) error {
	full, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("redis: marshal scan %s: %w", scan.ID, err)
	}
	summary, err := json.Marshal(scan.Summarize())
	if err != nil {
		return fmt.Errorf("redis: marshal scan summary %s: %w", scan.ID, err)
	}

	err = s.breaker.Do(func() error {
		pipe := s.client.Pipeline()
		pipe.Set(ctx, latestScanKey(scan.Filters.Timeframe), full, latestScanTTL)
		pipe.Publish(ctx, ScanChannel, summary)
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("redis: publish scan %s: %w", scan.ID, err)
	}
	log.Printf("[redis] published scan %s (%s, %d results)", scan.ID, scan.Filters.Timeframe, len(scan.Results))
	return nil
}

// LatestScan loads the most recent scan for tf. Returns nil without
// error when no scan has been stored yet.
func (s *Store) LatestScan(ctx context.Context, tf model.Timeframe) (*model.ScanResult, error) {
	var data string
	err := s.breaker.Do(func() error {
		var err error
		data, err = s.client.Get(ctx, latestScanKey(tf)).Result()
		if err == goredis.Nil {
			data = ""
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("redis: get latest scan %s: %w", tf, err)
	}
	if data == "" {
		return nil, nil
	}

	var scan model.ScanResult
	if err := json.Unmarshal([]byte(data), &scan); err != nil {
		return nil, fmt.Errorf("redis: unmarshal latest scan %s: %w", tf, err)
	}
	return &scan, nil
}
