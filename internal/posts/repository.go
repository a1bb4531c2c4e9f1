package posts

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/marketpulse/stock-sentiment/pkg/models"
)

// Repository handles database operations for reddit posts
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new posts repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SavePosts stores ingested posts. Duplicate post_ids are a no-op, so
// re-ingesting the same posts never creates second rows or overwrites
// an already scored post. Returns the number of newly inserted rows.
func (r *Repository) SavePosts(ctx context.Context, items []models.Post) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reddit_posts (
			post_id, ticker, subreddit, title, content,
			processed_content, score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (post_id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, post := range items {
		res, err := stmt.ExecContext(ctx,
			post.PostID,
			post.Ticker,
			post.Subreddit,
			post.Title,
			post.Content,
			post.ProcessedContent,
			post.Score,
			post.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert post %s: %w", post.PostID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			saved++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	return saved, nil
}

// UnscoredPosts fetches posts for one ticker/subreddit pair that have
// normalized text but no sentiment yet
func (r *Repository) UnscoredPosts(ctx context.Context, ticker, subreddit string) ([]models.Post, error) {
	query := `
		SELECT post_id, ticker, subreddit, title, content,
		       processed_content, score, created_at, sentiment
		FROM reddit_posts
		WHERE ticker = $1 AND subreddit = $2
		  AND processed_content IS NOT NULL
		  AND sentiment IS NULL
	`

	items := make([]models.Post, 0)
	if err := r.db.SelectContext(ctx, &items, query, ticker, subreddit); err != nil {
		return nil, fmt.Errorf("failed to query unscored posts: %w", err)
	}

	return items, nil
}

// ScoredPosts fetches the complete scored set for one ticker/subreddit
// pair, regardless of which run scored them
func (r *Repository) ScoredPosts(ctx context.Context, ticker, subreddit string) ([]models.Post, error) {
	query := `
		SELECT post_id, ticker, subreddit, title, content,
		       processed_content, score, created_at, sentiment
		FROM reddit_posts
		WHERE ticker = $1 AND subreddit = $2
		  AND processed_content IS NOT NULL
		  AND sentiment IS NOT NULL
	`

	items := make([]models.Post, 0)
	if err := r.db.SelectContext(ctx, &items, query, ticker, subreddit); err != nil {
		return nil, fmt.Errorf("failed to query scored posts: %w", err)
	}

	return items, nil
}

// SetSentiment persists the computed sentiment for a single post.
// The scorer is deterministic, so overwriting with the same value
// from a racing run is harmless.
func (r *Repository) SetSentiment(ctx context.Context, postID string, sentiment float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reddit_posts
		SET sentiment = $2
		WHERE post_id = $1
	`, postID, sentiment)
	if err != nil {
		return fmt.Errorf("failed to set sentiment for post %s: %w", postID, err)
	}

	return nil
}

// UnprocessedPosts fetches posts still missing normalized text
func (r *Repository) UnprocessedPosts(ctx context.Context, ticker string) ([]models.Post, error) {
	query := `
		SELECT post_id, ticker, subreddit, title, content,
		       processed_content, score, created_at, sentiment
		FROM reddit_posts
		WHERE ticker = $1 AND processed_content IS NULL
	`

	items := make([]models.Post, 0)
	if err := r.db.SelectContext(ctx, &items, query, ticker); err != nil {
		return nil, fmt.Errorf("failed to query unprocessed posts: %w", err)
	}

	return items, nil
}

// SetProcessedContent stores the normalized text for a single post
func (r *Repository) SetProcessedContent(ctx context.Context, postID, processed string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reddit_posts
		SET processed_content = $2
		WHERE post_id = $1
	`, postID, processed)
	if err != nil {
		return fmt.Errorf("failed to set processed content for post %s: %w", postID, err)
	}

	return nil
}
