package config

import (
	"testing"

	"marketscan/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.RedisAddr)
	}
	if cfg.QuoteAsset != "USDT" {
		t.Errorf("quote asset = %q", cfg.QuoteAsset)
	}
	if !cfg.ExcludeStablecoins {
		t.Error("stablecoin exclusion should default on")
	}
	tfs, err := cfg.ParseTimeframes()
	if err != nil {
		t.Fatalf("ParseTimeframes: %v", err)
	}
	if len(tfs) != 2 || tfs[0] != model.TF1h || tfs[1] != model.TF4h {
		t.Errorf("timeframes = %v", tfs)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCAN_TIMEFRAMES", "15m,1d")
	t.Setenv("SCAN_MIN_SCORE", "4")
	t.Setenv("SCAN_LIMIT", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tfs, err := cfg.ParseTimeframes()
	if err != nil {
		t.Fatalf("ParseTimeframes: %v", err)
	}
	if len(tfs) != 2 || tfs[0] != model.TF15m || tfs[1] != model.TF1d {
		t.Errorf("timeframes = %v", tfs)
	}

	filters := cfg.DefaultFilters(model.TF15m)
	if filters.MinScore != 4 || filters.Limit != 10 {
		t.Errorf("filters = %+v", filters)
	}
	if filters.Timeframe != model.TF15m {
		t.Errorf("timeframe = %s", filters.Timeframe)
	}
}

func TestInvalidTimeframeRejected(t *testing.T) {
	t.Setenv("SCAN_TIMEFRAMES", "1h,3m")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported timeframe")
	}
}
