// Package monitor runs one check of the announcement page: fetch, extract,
// diff against the snapshot, notify, persist.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"si-notice-monitor/internal/crawler"
	"si-notice-monitor/internal/logger"
	"si-notice-monitor/internal/notice"
	"si-notice-monitor/internal/notifier"
	"si-notice-monitor/internal/storage"
)

// Monitor wires the pipeline stages together.
type Monitor struct {
	Fetcher   crawler.Fetcher
	Extractor *crawler.Extractor
	Store     storage.Store
	Notifier  notifier.Notifier
	Formatter notifier.Formatter
	Log       logger.Logger
	// PersistOnDeliveryFailure saves the snapshot even when delivery failed.
	PersistOnDeliveryFailure bool
}

// Result summarizes a run.
type Result struct {
	RunID    string
	Current  int
	Prior    int
	New      int
	Notified bool
	Saved    bool
}

// Run performs one check. Fetch, extract and load failures return before
// the snapshot is touched.
func (m *Monitor) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	log := m.logger().With(logger.String("run_id", res.RunID))
	start := time.Now()

	body, err := m.Fetcher.Fetch(ctx)
	if err != nil {
		log.Error("Fetch failed", logger.Error(err))
		return res, err
	}
	log.Debug("Fetched page", logger.Int("bytes", len(body)))

	current, err := m.Extractor.ExtractBytes(body)
	if err != nil {
		log.Error("Extract failed", logger.Error(err))
		return res, fmt.Errorf("extract notices: %w", err)
	}
	res.Current = len(current)

	prior, err := m.Store.Load(ctx)
	if err != nil {
		log.Error("Load snapshot failed", logger.Error(err))
		return res, fmt.Errorf("load snapshot: %w", err)
	}
	res.Prior = len(prior)

	news := notice.NewNotices(current, prior)
	res.New = len(news)
	log.Info("Compared notices",
		logger.Int("current", res.Current),
		logger.Int("prior", res.Prior),
		logger.Int("new", res.New),
	)

	var deliveryErr error
	if msg, ok := m.Formatter.Build(news); ok {
		if err := m.Notifier.Notify(ctx, msg); err != nil {
			deliveryErr = err
			log.Error("Notify failed", logger.Error(err), logger.Int("new", res.New))
		} else {
			res.Notified = true
			for _, n := range news {
				log.Info("Notified", logger.String("title", n.Title), logger.String("category", n.Category.Code()))
			}
		}
	}

	if deliveryErr != nil && !m.PersistOnDeliveryFailure {
		log.Warn("Snapshot kept for retry")
		return res, deliveryErr
	}

	if err := m.Store.Save(ctx, current); err != nil {
		log.Error("Save snapshot failed", logger.Error(err))
		return res, errors.Join(deliveryErr, fmt.Errorf("save snapshot: %w", err))
	}
	res.Saved = true

	log.Info("Run finished",
		logger.Bool("notified", res.Notified),
		logger.Duration("elapsed", time.Since(start)),
	)
	return res, deliveryErr
}

func (m *Monitor) logger() logger.Logger {
	if m.Log == nil {
		return logger.NewNop()
	}
	return m.Log
}
