package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"leverflow/bot"
	"leverflow/config"
	"leverflow/exchange/okx"
	"leverflow/logger"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	interval := flag.Duration("interval", 0, "Run every interval instead of once (0 = single shot)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
		"market":  cfg.Trading.Market(),
	}).Info("starting leverflow")

	if cfg.Metrics.CloudWatch.Enabled {
		logger.InitCloudWatch(cfg.Metrics.CloudWatch.Region, cfg.Metrics.CloudWatch.Namespace, cfg.Metrics.CloudWatch.Dashboard)
	}

	client, err := okx.NewClient(cfg.Exchange)
	if err != nil {
		log.WithError(err).Error("Failed to build exchange client")
		os.Exit(1)
	}
	runner := bot.NewRunner(client, cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	if *interval <= 0 {
		if err := runOnce(ctx, runner, cfg.Exchange.Timeout, log); err != nil {
			os.Exit(1)
		}
		return
	}

	// Periodic mode keeps the single-shot contract per tick: each cycle
	// gets its own deadline and a failed cycle does not stop the next.
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		if err := runOnce(ctx, runner, cfg.Exchange.Timeout, log); err != nil && ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		case <-ticker.C:
		}
	}
}

func runOnce(ctx context.Context, runner *bot.Runner, timeout time.Duration, log *logger.Log) error {
	// A cycle makes up to six HTTP calls.
	cycleCtx, cancel := context.WithTimeout(ctx, 6*timeout)
	defer cancel()

	if err := runner.Run(cycleCtx); err != nil {
		log.WithError(err).WithFields(logger.Fields{"status": "ERROR"}).Error("invocation failed")
		return err
	}
	log.WithFields(logger.Fields{"status": "OK"}).Info("invocation complete")
	return nil
}
