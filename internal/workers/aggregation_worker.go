package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marketpulse/stock-sentiment/internal/aggregate"
	"github.com/marketpulse/stock-sentiment/pkg/logger"
	"github.com/marketpulse/stock-sentiment/pkg/models"
)

// RunNotifier receives the summaries of a completed aggregation run
type RunNotifier interface {
	NotifyRunSummary(summaries []models.TickerSummary) error
}

// AggregationWorker runs the aggregation driver across all configured
// tickers on a schedule
type AggregationWorker struct {
	driver   *aggregate.Driver
	tickers  []string
	notifier RunNotifier
}

// NewAggregationWorker creates new aggregation worker. notifier may be
// nil when notifications are disabled.
func NewAggregationWorker(driver *aggregate.Driver, tickers []string, notifier RunNotifier) *AggregationWorker {
	return &AggregationWorker{
		driver:   driver,
		tickers:  tickers,
		notifier: notifier,
	}
}

// Name returns worker name for logging
func (w *AggregationWorker) Name() string {
	return "sentiment_aggregation"
}

// Run executes one aggregation pass over every configured ticker
func (w *AggregationWorker) Run(ctx context.Context) error {
	started := time.Now()

	summaries, err := w.driver.RunAll(ctx, w.tickers)
	if err != nil {
		return err
	}

	buckets := 0
	diagnostics := 0
	for _, summary := range summaries {
		buckets += len(summary.Aggregates)
		diagnostics += len(summary.Diagnostics)
	}

	logger.Info("aggregation run completed",
		zap.Int("tickers", len(summaries)),
		zap.Int("buckets", buckets),
		zap.Int("diagnostics", diagnostics),
		zap.Duration("elapsed", time.Since(started)),
	)

	if w.notifier != nil {
		if err := w.notifier.NotifyRunSummary(summaries); err != nil {
			// Notification failure never fails the run
			logger.Warn("failed to send run summary", zap.Error(err))
		}
	}

	return nil
}
