package aggregate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marketpulse/stock-sentiment/internal/sentiment"
	"github.com/marketpulse/stock-sentiment/pkg/logger"
	"github.com/marketpulse/stock-sentiment/pkg/models"
)

// PostSource is the post-store surface the driver needs
type PostSource interface {
	UnscoredPosts(ctx context.Context, ticker, subreddit string) ([]models.Post, error)
	ScoredPosts(ctx context.Context, ticker, subreddit string) ([]models.Post, error)
	SetSentiment(ctx context.Context, postID string, sentiment float64) error
}

// AggregateStore is the aggregate-table surface the driver needs
type AggregateStore interface {
	UpsertAggregate(ctx context.Context, agg models.SentimentAggregate) error
}

// Driver orchestrates one aggregation pass per ticker:
// fetch unscored posts, score and persist each, then rebuild every
// bucket from the complete scored set and reconcile it into the
// aggregate table. Unit-level failures are contained per
// subreddit/post/bucket and reported as diagnostics.
type Driver struct {
	posts      PostSource
	aggregates AggregateStore
	scorer     sentiment.Scorer
	subreddits []string
	now        func() time.Time
}

// NewDriver creates new aggregation driver
func NewDriver(posts PostSource, aggregates AggregateStore, scorer sentiment.Scorer, subreddits []string) *Driver {
	return &Driver{
		posts:      posts,
		aggregates: aggregates,
		scorer:     scorer,
		subreddits: subreddits,
		now:        time.Now,
	}
}

// Run executes one aggregation pass for a single ticker. The returned
// error is non-nil only on context cancellation; everything else is
// contained and reported through the summary's diagnostics.
func (d *Driver) Run(ctx context.Context, ticker string) (*models.TickerSummary, error) {
	summary := &models.TickerSummary{
		Ticker:     ticker,
		Aggregates: make([]models.AggregateEntry, 0),
	}

	// Score and persist posts that have not been scored yet. Sentiment
	// is written back per post, so a crash mid-run leaves finished
	// posts durably scored and skipped on retry.
	for _, subreddit := range d.subreddits {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		d.scoreSubreddit(ctx, ticker, subreddit, summary)
	}

	// Rebuild buckets from the complete scored set, including posts
	// scored by earlier runs. Re-deriving from scratch keeps repeated
	// runs idempotent instead of drifting incrementally.
	bucketer := NewBucketer(ticker)
	for _, subreddit := range d.subreddits {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		scored, err := d.posts.ScoredPosts(ctx, ticker, subreddit)
		if err != nil {
			logger.Warn("failed to fetch scored posts",
				zap.String("ticker", ticker),
				zap.String("subreddit", subreddit),
				zap.Error(err),
			)
			summary.Diagnostics = append(summary.Diagnostics, models.Diagnostic{
				Ticker:    ticker,
				Subreddit: subreddit,
				Stage:     models.StageFetch,
				Reason:    err.Error(),
			})
			continue
		}

		for _, post := range scored {
			bucketer.Add(post)
		}
	}
	summary.Diagnostics = append(summary.Diagnostics, bucketer.Warnings()...)

	// Reconcile each bucket independently; one failed upsert never
	// blocks or rolls back sibling buckets
	for _, agg := range bucketer.Buckets(d.now()) {
		if err := d.aggregates.UpsertAggregate(ctx, agg); err != nil {
			logger.Error("failed to reconcile bucket",
				zap.String("aggregate_id", agg.ID),
				zap.Time("date", agg.Date),
				zap.Error(err),
			)
			summary.Diagnostics = append(summary.Diagnostics, models.Diagnostic{
				Ticker:    ticker,
				Subreddit: agg.Subreddit,
				Stage:     models.StageReconcile,
				Reason:    err.Error(),
			})
			continue
		}

		summary.Aggregates = append(summary.Aggregates, models.AggregateEntry{
			Subreddit:         agg.Subreddit,
			Date:              agg.Date.Format("2006-01-02"),
			WeightedSentiment: agg.WeightedSentiment,
			SampleSize:        agg.SampleSize,
		})
	}

	logger.Info("aggregation pass completed",
		zap.String("ticker", ticker),
		zap.Int("buckets", len(summary.Aggregates)),
		zap.Int("diagnostics", len(summary.Diagnostics)),
	)

	return summary, nil
}

// RunAll executes Run for each ticker sequentially. A failing ticker
// never aborts the remaining ones.
func (d *Driver) RunAll(ctx context.Context, tickers []string) ([]models.TickerSummary, error) {
	summaries := make([]models.TickerSummary, 0, len(tickers))
	for _, ticker := range tickers {
		summary, err := d.Run(ctx, ticker)
		if summary != nil {
			summaries = append(summaries, *summary)
		}
		if err != nil {
			// Only context cancellation reaches here
			return summaries, err
		}
	}

	return summaries, nil
}

// scoreSubreddit scores and persists every unscored post for one
// ticker/subreddit pair
func (d *Driver) scoreSubreddit(ctx context.Context, ticker, subreddit string, summary *models.TickerSummary) {
	unscored, err := d.posts.UnscoredPosts(ctx, ticker, subreddit)
	if err != nil {
		logger.Warn("failed to fetch unscored posts",
			zap.String("ticker", ticker),
			zap.String("subreddit", subreddit),
			zap.Error(err),
		)
		summary.Diagnostics = append(summary.Diagnostics, models.Diagnostic{
			Ticker:    ticker,
			Subreddit: subreddit,
			Stage:     models.StageFetch,
			Reason:    err.Error(),
		})
		return
	}

	for _, post := range unscored {
		var text string
		if post.ProcessedContent != nil {
			text = *post.ProcessedContent
		}

		// Score is total: empty or garbled text maps to neutral 0.0
		score := d.scorer.Score(text)

		if err := d.posts.SetSentiment(ctx, post.PostID, score); err != nil {
			logger.Warn("failed to persist post sentiment",
				zap.String("post_id", post.PostID),
				zap.Error(err),
			)
			summary.Diagnostics = append(summary.Diagnostics, models.Diagnostic{
				Ticker:    ticker,
				Subreddit: subreddit,
				Stage:     models.StagePersist,
				Reason:    err.Error(),
			})
		}
	}

	if len(unscored) > 0 {
		logger.Debug("scored posts",
			zap.String("ticker", ticker),
			zap.String("subreddit", subreddit),
			zap.Int("count", len(unscored)),
		)
	}
}
