package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"marketscan/config"
	"marketscan/internal/logger"
	"marketscan/internal/scanengine"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[scanengine] config: %v", err)
	}
	logger.Init("scanengine", logger.ParseLevel(cfg.LogLevel))
	log.Printf("[scanengine] timeframes: %v, cron: %q", cfg.Timeframes, cfg.ScanCron)

	svc, err := scanengine.New(cfg)
	if err != nil {
		log.Fatalf("[scanengine] init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := svc.Run(ctx); err != nil {
		log.Fatalf("[scanengine] fatal: %v", err)
	}
}
