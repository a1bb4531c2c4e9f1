package models

import (
	"fmt"
	"time"
)

// AllSubreddits is the reserved synthetic bucket name meaning
// "aggregated across every subreddit for this ticker on this date"
const AllSubreddits = "all"

// SentimentAggregate represents one persisted sentiment bucket,
// identified by (id, date) where id is ticker_subreddit
type SentimentAggregate struct {
	ID                string    `json:"id" db:"id"`
	Ticker            string    `json:"ticker" db:"ticker"`
	Subreddit         string    `json:"subreddit" db:"subreddit"`
	Date              time.Time `json:"date" db:"date"`
	WeightedSentiment float64   `json:"weighted_sentiment" db:"sentiment"`
	SampleSize        int       `json:"sample_size" db:"sample_size"`
	CalculatedAt      time.Time `json:"calculated_at" db:"calculated_at"`
}

// AggregateID builds the composite aggregate identifier
func AggregateID(ticker, subreddit string) string {
	return fmt.Sprintf("%s_%s", ticker, subreddit)
}

// AggregateEntry is one bucket of a per-run summary
type AggregateEntry struct {
	Subreddit         string  `json:"subreddit"`
	Date              string  `json:"date"`
	WeightedSentiment float64 `json:"weighted_sentiment"`
	SampleSize        int     `json:"sample_size"`
}

// Diagnostic records a contained unit-level failure or data warning
// for one ticker/subreddit pair
type Diagnostic struct {
	Ticker    string `json:"ticker"`
	Subreddit string `json:"subreddit,omitempty"`
	Stage     string `json:"stage"`
	Reason    string `json:"reason"`
}

// Diagnostic stages
const (
	StageFetch     = "fetch"
	StagePersist   = "persist"
	StageBucket    = "bucket"
	StageReconcile = "reconcile"
)

// TickerSummary is the per-ticker output of one aggregation run
type TickerSummary struct {
	Ticker      string           `json:"ticker"`
	Aggregates  []AggregateEntry `json:"aggregates"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
}
