// Package scanengine is the top-level orchestrator for the market
// scanner daemon. It wires the exchange client, scoring engine,
// scanner, stores, gateway, and alerting, runs scheduled scans, and
// serves the HTTP API.
package scanengine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"marketscan/config"
	"marketscan/internal/gateway"
	"marketscan/internal/logger"
	"marketscan/internal/marketdata/binance"
	"marketscan/internal/metrics"
	"marketscan/internal/model"
	"marketscan/internal/notification"
	"marketscan/internal/ringbuf"
	"marketscan/internal/scanner"
	"marketscan/internal/scoring"
	redisstore "marketscan/internal/store/redis"
	sqlitestore "marketscan/internal/store/sqlite"
)

const recentScansKept = 64

// Service wires all subsystems and manages their lifecycle.
type Service struct {
	cfg        *config.Config
	timeframes []model.Timeframe

	engine   *scoring.Engine
	exchange *binance.Client
	scanner  *scanner.Scanner
	store    *redisstore.Store // nil when Redis is disabled
	recorder *sqlitestore.Recorder
	hub      *gateway.Hub
	alerter  *notification.Alerter
	recent   *ringbuf.Ring
	prom     *metrics.Metrics
	health   *metrics.HealthStatus
	sched    *cron.Cron
}

// New builds the service from configuration. It connects to Redis and
// SQLite up front so startup fails fast on broken infrastructure.
func New(cfg *config.Config) (*Service, error) {
	timeframes, err := cfg.ParseTimeframes()
	if err != nil {
		return nil, err
	}

	scoringCfg, err := scoring.LoadConfig(cfg.ScoringConfigPath)
	if err != nil {
		return nil, err
	}
	engine, err := scoring.NewEngine(scoringCfg)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		cfg:        cfg,
		timeframes: timeframes,
		engine:     engine,
		prom:       metrics.New(),
		health:     metrics.NewHealthStatus(),
		hub:        gateway.NewHub(),
		recent:     ringbuf.New(recentScansKept),
	}

	svc.exchange = binance.New(cfg.BinanceAPIKey, cfg.BinanceSecretKey,
		binance.WithQuoteAsset(cfg.QuoteAsset))

	if !cfg.RedisDisabled {
		svc.store, err = redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		svc.store.Breaker().OnStateChange = func(from, to redisstore.BreakerState) {
			slog.Warn("redis breaker state change", "from", from.String(), "to", to.String())
			svc.prom.RedisBreakerState.Set(float64(to))
			if to == redisstore.BreakerOpen {
				svc.prom.RedisBreakerTrips.Inc()
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		if svc.store != nil {
			svc.store.Close()
		}
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	svc.recorder, err = sqlitestore.New(sqlitestore.Config{DBPath: cfg.SQLitePath})
	if err != nil {
		if svc.store != nil {
			svc.store.Close()
		}
		return nil, err
	}

	svc.hub.OnClientCountChange = func(n int) {
		svc.prom.WSClients.Set(float64(n))
	}

	svc.alerter = notification.NewAlerter(svc.buildNotifiers()...)
	svc.alerter.OnSent = func(string) { svc.prom.AlertsSent.Inc() }

	supplier := newCachingSupplier(svc.exchange, svc.store, svc.prom)
	svc.scanner = scanner.New(engine, supplier, svc.exchange,
		scanner.WithWorkers(cfg.Workers),
		scanner.WithCandleLimit(cfg.CandleLimit),
		scanner.WithMetrics(svc.prom),
	)

	return svc, nil
}

func (svc *Service) buildNotifiers() []notification.Notifier {
	var notifiers []notification.Notifier
	if svc.cfg.TelegramBotToken != "" && svc.cfg.TelegramChatID != "" {
		notifiers = append(notifiers, notification.NewTelegramNotifier(svc.cfg.TelegramBotToken, svc.cfg.TelegramChatID))
	}
	if svc.cfg.AlertWebhookURL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(svc.cfg.AlertWebhookURL))
	}
	return notifiers
}

// Run starts all subsystems and blocks until ctx is cancelled.
func (svc *Service) Run(ctx context.Context) error {
	log.Println("[scanengine] starting market scan engine...")

	if svc.store != nil {
		svc.health.StartLivenessChecker(ctx, svc.store.Client(), svc.recorder.DB(), 15*time.Second)
	} else {
		svc.health.StartLivenessChecker(ctx, nil, svc.recorder.DB(), 15*time.Second)
	}

	if err := svc.startScheduler(); err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:    svc.cfg.HTTPAddr,
		Handler: svc.routes(),
	}
	go func() {
		log.Printf("[scanengine] HTTP server on %s", svc.cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[scanengine] HTTP server error: %v", err)
		}
	}()

	log.Printf("[scanengine] scheduled scans: cron=%q timeframes=%v", svc.cfg.ScanCron, svc.timeframes)
	log.Println("[scanengine] all systems running. Press Ctrl+C to stop.")

	<-ctx.Done()

	svc.shutdown(httpSrv)
	return nil
}

// startScheduler registers the cron job that scans every configured
// timeframe. An empty cron spec disables scheduling (API-only mode).
func (svc *Service) startScheduler() error {
	if svc.cfg.ScanCron == "" {
		log.Println("[scanengine] scheduler disabled, scans run via API only")
		return nil
	}

	svc.sched = cron.New()
	_, err := svc.sched.AddFunc(svc.cfg.ScanCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		for _, tf := range svc.timeframes {
			if _, err := svc.RunScan(ctx, svc.cfg.DefaultFilters(tf)); err != nil {
				slog.Error("scheduled scan failed", "timeframe", tf, "err", err)
			}
		}
	})
	if err != nil {
		return err
	}
	svc.sched.Start()
	return nil
}

// RunScan executes one scan and pushes the result through every sink:
// SQLite history, Redis publish, WebSocket broadcast, alerts, and the
// in-memory recent ring. Sink failures degrade, they do not fail the
// scan.
func (svc *Service) RunScan(ctx context.Context, filters model.ScanFilters) (*model.ScanResult, error) {
	scan, err := svc.scanner.Scan(ctx, filters)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithScanID(ctx, scan.ID)

	if err := svc.recorder.RecordScan(ctx, scan); err != nil {
		slog.Error("scan history write failed", append(logger.WithScan(ctx), "err", err)...)
	}

	if svc.store != nil {
		if err := svc.store.PublishScan(ctx, scan); err != nil {
			slog.Warn("scan publish failed", append(logger.WithScan(ctx), "err", err)...)
		} else {
			svc.prom.ResultsPublished.Add(float64(len(scan.Results)))
		}
	}

	svc.hub.BroadcastScan(scan)
	svc.alerter.ProcessScan(ctx, scan)
	svc.recent.Push(scan.Summarize())
	svc.health.SetLastScan(scan.ID, scan.StartedAt)

	return scan, nil
}

// shutdown stops the scheduler, drains HTTP, and closes stores.
func (svc *Service) shutdown(httpSrv *http.Server) {
	log.Println("[scanengine] shutdown signal received...")

	if svc.sched != nil {
		// Wait for an in-flight scheduled scan to finish.
		<-svc.sched.Stop().Done()
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		log.Printf("[scanengine] HTTP shutdown: %v", err)
	}

	if svc.store != nil {
		svc.store.Close()
	}
	svc.recorder.Close()

	log.Println("[scanengine] shutdown complete.")
}
