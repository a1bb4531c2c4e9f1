package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/marketpulse/stock-sentiment/internal/adapters/config"
	"github.com/marketpulse/stock-sentiment/internal/adapters/database"
	"github.com/marketpulse/stock-sentiment/internal/adapters/reddit"
	"github.com/marketpulse/stock-sentiment/internal/posts"
	"github.com/marketpulse/stock-sentiment/internal/textproc"
	"github.com/marketpulse/stock-sentiment/pkg/logger"
)

// collector ingests Reddit posts for every configured ticker and
// subreddit, normalizes their text, and stores them. Re-running over
// the same posts is a no-op.
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

	logger.Info("post collector starting",
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

	client := reddit.NewClient(cfg.Reddit.UserAgent, cfg.Reddit.PostLimit, cfg.Reddit.Timeout)
	repo := posts.NewRepository(db.DB())
	normalizer := textproc.NewNormalizer()

	total := 0
	for _, ticker := range cfg.Tickers {
		for _, subreddit := range cfg.Subreddits {
			if err := ctx.Err(); err != nil {
				return err
			}

			items, err := client.SearchPosts(ctx, subreddit, ticker)
			if err != nil {
				// One failing pair never aborts the whole collection
				logger.Warn("failed to fetch posts",
					zap.String("ticker", ticker),
					zap.String("subreddit", subreddit),
					zap.Error(err),
				)
				continue
			}

			// Normalize at ingest so the analyzer never sees raw text
			for i := range items {
				processed := normalizer.Normalize(items[i].Title + " " + items[i].Content)
				items[i].ProcessedContent = &processed
			}

			saved, err := repo.SavePosts(ctx, items)
			if err != nil {
				logger.Warn("failed to save posts",
					zap.String("ticker", ticker),
					zap.String("subreddit", subreddit),
					zap.Error(err),
				)
				continue
			}

			logger.Info("collected posts",
				zap.String("ticker", ticker),
				zap.String("subreddit", subreddit),
				zap.Int("fetched", len(items)),
				zap.Int("new", saved),
			)
			total += saved
		}
	}

	// Backfill normalization for posts ingested before this pipeline
	// stored processed content
	for _, ticker := range cfg.Tickers {
		unprocessed, err := repo.UnprocessedPosts(ctx, ticker)
		if err != nil {
			logger.Warn("failed to fetch unprocessed posts",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
			continue
		}

		for _, post := range unprocessed {
			processed := normalizer.Normalize(post.Title + " " + post.Content)
			if err := repo.SetProcessedContent(ctx, post.PostID, processed); err != nil {
				logger.Warn("failed to backfill processed content",
					zap.String("post_id", post.PostID),
					zap.Error(err),
				)
			}
		}
	}

	logger.Info("collection completed", zap.Int("new_posts", total))

	return nil
}
