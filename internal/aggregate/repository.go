package aggregate

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/marketpulse/stock-sentiment/pkg/models"
)

// Repository handles database operations for sentiment aggregates
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new aggregate repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// UpsertAggregate writes one bucket row keyed by (id, date). The
// single-statement conflict update keeps the write atomic: concurrent
// runs hitting the same key each leave a whole row, never interleaved
// fields. The new computation fully replaces the stored values.
func (r *Repository) UpsertAggregate(ctx context.Context, agg models.SentimentAggregate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ticker_sentiment (id, ticker, subreddit, date, sentiment, sample_size, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id, date)
		DO UPDATE SET
			sentiment = EXCLUDED.sentiment,
			sample_size = EXCLUDED.sample_size,
			calculated_at = EXCLUDED.calculated_at
	`,
		agg.ID,
		agg.Ticker,
		agg.Subreddit,
		agg.Date,
		agg.WeightedSentiment,
		agg.SampleSize,
		agg.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert aggregate %s@%s: %w",
			agg.ID, agg.Date.Format("2006-01-02"), err)
	}

	return nil
}

// Tickers returns all tickers with at least one aggregate row
func (r *Repository) Tickers(ctx context.Context) ([]string, error) {
	tickers := make([]string, 0)
	err := r.db.SelectContext(ctx, &tickers, `
		SELECT DISTINCT ticker FROM ticker_sentiment ORDER BY ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}

	return tickers, nil
}

// Subreddits returns all subreddits with at least one aggregate row,
// including the synthetic "all" bucket
func (r *Repository) Subreddits(ctx context.Context) ([]string, error) {
	subreddits := make([]string, 0)
	err := r.db.SelectContext(ctx, &subreddits, `
		SELECT DISTINCT subreddit FROM ticker_sentiment ORDER BY subreddit
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subreddits: %w", err)
	}

	return subreddits, nil
}

// TickerSentiment returns all aggregate rows for a ticker, newest first
func (r *Repository) TickerSentiment(ctx context.Context, ticker string) ([]models.SentimentAggregate, error) {
	rows := make([]models.SentimentAggregate, 0)
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, ticker, subreddit, date, sentiment, sample_size, calculated_at
		FROM ticker_sentiment
		WHERE ticker = $1
		ORDER BY date DESC, subreddit
	`, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticker sentiment: %w", err)
	}

	return rows, nil
}

// TickerSubredditSentiment returns aggregate rows for one
// ticker/subreddit pair, newest first
func (r *Repository) TickerSubredditSentiment(ctx context.Context, ticker, subreddit string) ([]models.SentimentAggregate, error) {
	rows := make([]models.SentimentAggregate, 0)
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, ticker, subreddit, date, sentiment, sample_size, calculated_at
		FROM ticker_sentiment
		WHERE id = $1
		ORDER BY date DESC
	`, models.AggregateID(ticker, subreddit))
	if err != nil {
		return nil, fmt.Errorf("failed to query ticker/subreddit sentiment: %w", err)
	}

	return rows, nil
}
