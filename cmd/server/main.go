package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/marketpulse/stock-sentiment/internal/adapters/config"
	"github.com/marketpulse/stock-sentiment/internal/adapters/database"
	"github.com/marketpulse/stock-sentiment/internal/adapters/telegram"
	"github.com/marketpulse/stock-sentiment/internal/aggregate"
	"github.com/marketpulse/stock-sentiment/internal/posts"
	"github.com/marketpulse/stock-sentiment/internal/sentiment"
	"github.com/marketpulse/stock-sentiment/internal/server"
	"github.com/marketpulse/stock-sentiment/internal/workers"
	"github.com/marketpulse/stock-sentiment/pkg/logger"
	"github.com/marketpulse/stock-sentiment/pkg/worker"
)

// server runs the long-lived service: the periodic aggregation worker
// plus the HTTP API over the aggregate table.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "received interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("stock sentiment service starting",
		zap.Strings("tickers", cfg.Tickers),
		zap.Duration("interval", cfg.Aggregation.Interval),
	)

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(db.Conn(), cfg.Database.MigrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	postRepo := posts.NewRepository(db.DB())
	aggRepo := aggregate.NewRepository(db.DB())
	scorer := sentiment.NewLexiconScorer()
	driver := aggregate.NewDriver(postRepo, aggRepo, scorer, cfg.Subreddits)

	var notifier workers.RunNotifier
	if cfg.Telegram.Enabled {
		tg, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		notifier = tg
	}

	group := worker.NewGroup(ctx)
	group.Add(workers.NewAggregationWorker(driver, cfg.Tickers, notifier), cfg.Aggregation.Interval)

	api := server.New(cfg.Server.Port, aggRepo, db)

	errChan := make(chan error, 1)
	go func() {
		errChan <- api.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errChan:
		if err != nil {
			logger.Error("api server failed", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api shutdown failed", zap.Error(err))
	}

	group.Shutdown(30 * time.Second)

	logger.Info("service stopped")

	return nil
}
