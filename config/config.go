// Package config loads application configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"marketscan/internal/model"
)

// Config holds all daemon configuration. Every field maps to a
// SCAN_-prefixed environment variable via envconfig.
type Config struct {
	// Binance credentials. Optional: klines and exchange info are
	// public endpoints.
	BinanceAPIKey    string `envconfig:"BINANCE_API_KEY"`
	BinanceSecretKey string `envconfig:"BINANCE_SECRET_KEY"`
	QuoteAsset       string `envconfig:"QUOTE_ASSET" default:"USDT"`

	// Infrastructure
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisDisabled bool   `envconfig:"REDIS_DISABLED"` // run without a cache
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"data/scans.db"`
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":8080"`

	// Scoring overrides, YAML. Empty means built-in defaults.
	ScoringConfigPath string `envconfig:"SCORING_CONFIG"`

	// Scheduled scans: cron expression plus the timeframes each run
	// covers. Empty cron disables the scheduler.
	ScanCron   string   `envconfig:"CRON" default:"5 * * * *"`
	Timeframes []string `envconfig:"TIMEFRAMES" default:"1h,4h"`

	// Default scan filters
	MinScore           float64 `envconfig:"MIN_SCORE" default:"2"`
	ExcludeStablecoins bool    `envconfig:"EXCLUDE_STABLECOINS" default:"true"`
	MinLiquidity       float64 `envconfig:"MIN_LIQUIDITY" default:"0"`
	Limit              int     `envconfig:"LIMIT" default:"50"`

	// Scanner tuning
	Workers     int `envconfig:"WORKERS" default:"8"`
	CandleLimit int `envconfig:"CANDLE_LIMIT" default:"168"`

	// Alerting. Both channels are optional.
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `envconfig:"TELEGRAM_CHAT_ID"`
	AlertWebhookURL  string `envconfig:"ALERT_WEBHOOK_URL"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env (when present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("SCAN", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := cfg.ParseTimeframes(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseTimeframes validates and converts the configured timeframes.
func (c *Config) ParseTimeframes() ([]model.Timeframe, error) {
	out := make([]model.Timeframe, 0, len(c.Timeframes))
	for _, raw := range c.Timeframes {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		tf, err := model.ParseTimeframe(raw)
		if err != nil {
			return nil, fmt.Errorf("config: timeframe %q: %w", raw, err)
		}
		out = append(out, tf)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("config: no timeframes configured")
	}
	return out, nil
}

// DefaultFilters builds the filters used by scheduled scans for tf.
func (c *Config) DefaultFilters(tf model.Timeframe) model.ScanFilters {
	return model.ScanFilters{
		Timeframe:          tf,
		MinScore:           c.MinScore,
		ExcludeStablecoins: c.ExcludeStablecoins,
		MinLiquidity:       c.MinLiquidity,
		Limit:              c.Limit,
	}
}
