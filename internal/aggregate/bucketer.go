package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/marketpulse/stock-sentiment/pkg/models"
)

// Bucketer accumulates scored posts for one ticker into
// (subreddit, date) buckets: score-weighted sentiment sums plus exact
// sample counts. The cross-subreddit "all" bucket is derived from the
// per-subreddit sums at flush time, never recomputed from post text,
// so per-subreddit and "all" rows stay additively consistent.
type Bucketer struct {
	ticker   string
	buckets  map[bucketKey]*accumulator
	warnings []models.Diagnostic
}

type bucketKey struct {
	subreddit string
	date      time.Time
}

type accumulator struct {
	weightedSum float64
	sampleSize  int
}

// NewBucketer creates new bucketer for a single ticker
func NewBucketer(ticker string) *Bucketer {
	return &Bucketer{
		ticker:  ticker,
		buckets: make(map[bucketKey]*accumulator),
	}
}

// Add feeds one scored post into its bucket. Posts that fail data
// integrity checks (no creation date, negative score, missing text or
// sentiment) are excluded entirely and recorded as warnings; they are
// never grouped under a sentinel date.
func (b *Bucketer) Add(post models.Post) {
	if !post.IsScored() {
		b.warn(post.Subreddit, "post has no sentiment, skipping")
		return
	}
	if post.ProcessedContent == nil || *post.ProcessedContent == "" {
		b.warn(post.Subreddit, fmt.Sprintf("post %s has empty processed content", post.PostID))
		return
	}
	if post.Score < 0 {
		b.warn(post.Subreddit, fmt.Sprintf("post %s has negative score %d", post.PostID, post.Score))
		return
	}

	date, ok := post.CreatedDate()
	if !ok {
		b.warn(post.Subreddit, fmt.Sprintf("post %s has no creation date", post.PostID))
		return
	}

	key := bucketKey{subreddit: post.Subreddit, date: date}
	acc := b.buckets[key]
	if acc == nil {
		acc = &accumulator{}
		b.buckets[key] = acc
	}

	// A zero-score post contributes a zero weighted term but is still
	// one observation
	acc.weightedSum += *post.Sentiment * float64(post.Score)
	acc.sampleSize++
}

// Buckets flushes the accumulated aggregates: one row per
// (subreddit, date) plus one derived "all" row per date. Buckets with
// zero samples are never emitted. Output order is deterministic:
// subreddit then date, with "all" rows last.
func (b *Bucketer) Buckets(calculatedAt time.Time) []models.SentimentAggregate {
	all := make(map[time.Time]*accumulator)

	rows := make([]models.SentimentAggregate, 0, len(b.buckets))
	for key, acc := range b.buckets {
		if acc.sampleSize == 0 {
			continue
		}

		rows = append(rows, models.SentimentAggregate{
			ID:                models.AggregateID(b.ticker, key.subreddit),
			Ticker:            b.ticker,
			Subreddit:         key.subreddit,
			Date:              key.date,
			WeightedSentiment: acc.weightedSum / float64(acc.sampleSize),
			SampleSize:        acc.sampleSize,
			CalculatedAt:      calculatedAt,
		})

		total := all[key.date]
		if total == nil {
			total = &accumulator{}
			all[key.date] = total
		}
		total.weightedSum += acc.weightedSum
		total.sampleSize += acc.sampleSize
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Subreddit != rows[j].Subreddit {
			return rows[i].Subreddit < rows[j].Subreddit
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	allDates := make([]time.Time, 0, len(all))
	for date := range all {
		allDates = append(allDates, date)
	}
	sort.Slice(allDates, func(i, j int) bool { return allDates[i].Before(allDates[j]) })

	for _, date := range allDates {
		total := all[date]
		rows = append(rows, models.SentimentAggregate{
			ID:                models.AggregateID(b.ticker, models.AllSubreddits),
			Ticker:            b.ticker,
			Subreddit:         models.AllSubreddits,
			Date:              date,
			WeightedSentiment: total.weightedSum / float64(total.sampleSize),
			SampleSize:        total.sampleSize,
			CalculatedAt:      calculatedAt,
		})
	}

	return rows
}

// Warnings returns accumulated data integrity warnings
func (b *Bucketer) Warnings() []models.Diagnostic {
	return b.warnings
}

func (b *Bucketer) warn(subreddit, reason string) {
	b.warnings = append(b.warnings, models.Diagnostic{
		Ticker:    b.ticker,
		Subreddit: subreddit,
		Stage:     models.StageBucket,
		Reason:    reason,
	})
}
