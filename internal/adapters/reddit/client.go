package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/marketpulse/stock-sentiment/pkg/logger"
	"github.com/marketpulse/stock-sentiment/pkg/models"
)

const defaultBaseURL = "https://www.reddit.com"

// Client fetches ticker-tagged posts from the public Reddit JSON API
type Client struct {
	baseURL   string
	userAgent string
	limit     int
	http      *http.Client
}

// NewClient creates new Reddit client
func NewClient(userAgent string, limit int, timeout time.Duration) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		userAgent: userAgent,
		limit:     limit,
		http:      &http.Client{Timeout: timeout},
	}
}

// listing mirrors the subset of the Reddit search response we consume
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Score      int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// SearchPosts searches one subreddit for posts mentioning a ticker,
// newest first, and maps them to Post records tagged with that ticker
func (c *Client) SearchPosts(ctx context.Context, subreddit, ticker string) ([]models.Post, error) {
	endpoint := fmt.Sprintf("%s/r/%s/search.json?q=%s&sort=new&restrict_sr=1&limit=%d",
		c.baseURL, url.PathEscape(subreddit), url.QueryEscape(ticker), c.limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Reddit rejects requests without a User-Agent
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from reddit", resp.StatusCode)
	}

	var result listing
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]models.Post, 0, len(result.Data.Children))
	for _, child := range result.Data.Children {
		post := models.Post{
			PostID:    child.Data.ID,
			Ticker:    ticker,
			Subreddit: subreddit,
			Title:     child.Data.Title,
			Content:   child.Data.Selftext,
			Score:     child.Data.Score,
		}
		if child.Data.CreatedUTC > 0 {
			created := time.Unix(int64(child.Data.CreatedUTC), 0).UTC()
			post.CreatedAt = &created
		}
		items = append(items, post)
	}

	logger.Debug("fetched reddit posts",
		zap.String("subreddit", subreddit),
		zap.String("ticker", ticker),
		zap.Int("count", len(items)),
	)

	return items, nil
}
