package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/marketpulse/stock-sentiment/internal/adapters/config"
	"github.com/marketpulse/stock-sentiment/internal/adapters/database"
	"github.com/marketpulse/stock-sentiment/internal/aggregate"
	"github.com/marketpulse/stock-sentiment/internal/posts"
	"github.com/marketpulse/stock-sentiment/internal/sentiment"
	"github.com/marketpulse/stock-sentiment/pkg/logger"
)

// analyzer runs one aggregation pass across all configured tickers and
// prints the per-ticker summaries as JSON.
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
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("sentiment analyzer starting",
		zap.Strings("tickers", cfg.Tickers),
		zap.Strings("subreddits", cfg.Subreddits),
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

	summaries, err := driver.RunAll(ctx, cfg.Tickers)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]interface{}{"results": summaries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summaries: %w", err)
	}
	fmt.Println(string(out))

	return nil
}
