package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"si-notice-monitor/internal/config"
	"si-notice-monitor/internal/crawler"
	"si-notice-monitor/internal/logger"
	"si-notice-monitor/internal/monitor"
	"si-notice-monitor/internal/notice"
	"si-notice-monitor/internal/notifier"
	"si-notice-monitor/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "notice monitor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	notified, err := notice.NewCategorySet(cfg.Source.NotifyCategories...)
	if err != nil {
		return err
	}

	fetcher, err := crawler.NewFetcher(cfg.Source.Mode, cfg.Source.URL, cfg.Source.UserAgent, cfg.Source.Timeout.Duration)
	if err != nil {
		return err
	}

	unlock, err := storage.Lock(cfg.Storage.Path)
	if err != nil {
		log.Error("Snapshot busy", logger.Error(err))
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warn("Release lock failed", logger.Error(err))
		}
	}()

	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	m := &monitor.Monitor{
		Fetcher:                  fetcher,
		Extractor:                crawler.NewExtractor(cfg.Source.URL, notified),
		Store:                    store,
		Notifier:                 notifier.NewSlackNotifier(cfg.Slack.WebhookURL, cfg.Slack.Timeout.Duration),
		Formatter:                notifier.NewFormatter(cfg.Slack.Text, cfg.Slack.DateField, cfg.Slack.CategoryField),
		Log:                      log,
		PersistOnDeliveryFailure: cfg.Storage.Persist(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting run",
		logger.String("url", cfg.Source.URL),
		logger.String("mode", cfg.Source.Mode),
		logger.Strings("notify_categories", notified.Codes()),
		logger.String("store", cfg.Storage.Path),
	)
	_, err = m.Run(ctx)
	return err
}
