package models

import "time"

// Post represents single ingested Reddit post tagged with a ticker
type Post struct {
	PostID           string     `json:"post_id" db:"post_id"`
	Ticker           string     `json:"ticker" db:"ticker"`
	Subreddit        string     `json:"subreddit" db:"subreddit"`
	Title            string     `json:"title" db:"title"`
	Content          string     `json:"content" db:"content"`
	ProcessedContent *string    `json:"processed_content,omitempty" db:"processed_content"`
	Score            int        `json:"score" db:"score"`
	CreatedAt        *time.Time `json:"created_at,omitempty" db:"created_at"`
	Sentiment        *float64   `json:"sentiment,omitempty" db:"sentiment"`
}

// IsScored returns true if post already has a persisted sentiment
func (p *Post) IsScored() bool {
	return p.Sentiment != nil
}

// CreatedDate returns the UTC calendar date of the post, truncated to midnight.
// Second return is false when the post carries no creation timestamp.
func (p *Post) CreatedDate() (time.Time, bool) {
	if p.CreatedAt == nil {
		return time.Time{}, false
	}
	t := p.CreatedAt.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}
