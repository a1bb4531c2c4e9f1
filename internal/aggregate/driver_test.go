package aggregate

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/marketpulse/stock-sentiment/pkg/logger"
	"github.com/marketpulse/stock-sentiment/pkg/models"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", ""); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// fakePostStore keeps posts in memory keyed by post_id
type fakePostStore struct {
	posts           map[string]*models.Post
	failSubreddits  map[string]bool
	sentimentWrites int
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{
		posts:          make(map[string]*models.Post),
		failSubreddits: make(map[string]bool),
	}
}

func (f *fakePostStore) add(post models.Post) {
	p := post
	f.posts[p.PostID] = &p
}

func (f *fakePostStore) selectPosts(ticker, subreddit string, scored bool) ([]models.Post, error) {
	if f.failSubreddits[subreddit] {
		return nil, fmt.Errorf("connection reset")
	}

	out := make([]models.Post, 0)
	for _, p := range f.posts {
		if p.Ticker != ticker || p.Subreddit != subreddit || p.ProcessedContent == nil {
			continue
		}
		if p.IsScored() == scored {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostID < out[j].PostID })
	return out, nil
}

func (f *fakePostStore) UnscoredPosts(_ context.Context, ticker, subreddit string) ([]models.Post, error) {
	return f.selectPosts(ticker, subreddit, false)
}

func (f *fakePostStore) ScoredPosts(_ context.Context, ticker, subreddit string) ([]models.Post, error) {
	return f.selectPosts(ticker, subreddit, true)
}

func (f *fakePostStore) SetSentiment(_ context.Context, postID string, sentiment float64) error {
	p, ok := f.posts[postID]
	if !ok {
		return fmt.Errorf("post %s not found", postID)
	}
	v := sentiment
	p.Sentiment = &v
	f.sentimentWrites++
	return nil
}

// fakeAggregateStore keeps aggregate rows keyed by (id, date)
type fakeAggregateStore struct {
	rows        map[string]models.SentimentAggregate
	failIDs     map[string]bool
	upsertCalls int
}

func newFakeAggregateStore() *fakeAggregateStore {
	return &fakeAggregateStore{
		rows:    make(map[string]models.SentimentAggregate),
		failIDs: make(map[string]bool),
	}
}

func (f *fakeAggregateStore) key(id string, date time.Time) string {
	return id + "@" + date.Format("2006-01-02")
}

func (f *fakeAggregateStore) UpsertAggregate(_ context.Context, agg models.SentimentAggregate) error {
	f.upsertCalls++
	if f.failIDs[agg.ID] {
		return fmt.Errorf("upsert failed")
	}
	f.rows[f.key(agg.ID, agg.Date)] = agg
	return nil
}

// fixedScorer returns canned scores per text
type fixedScorer struct {
	scores map[string]float64
	calls  int
}

func (s *fixedScorer) Score(text string) float64 {
	s.calls++
	return s.scores[text]
}

func ingestedPost(id, subreddit, processed string, score int, created *time.Time) models.Post {
	return models.Post{
		PostID:           id,
		Ticker:           "AAPL",
		Subreddit:        subreddit,
		ProcessedContent: &processed,
		Score:            score,
		CreatedAt:        created,
	}
}

func TestDriver_Run(t *testing.T) {
	store := newFakePostStore()
	store.add(ingestedPost("p1", "stocks", "great buy", 10, day("2024-01-01")))
	store.add(ingestedPost("p2", "stocks", "terrible crash", 5, day("2024-01-01")))

	aggs := newFakeAggregateStore()
	scorer := &fixedScorer{scores: map[string]float64{
		"great buy":      0.8,
		"terrible crash": -0.6,
	}}

	driver := NewDriver(store, aggs, scorer, []string{"stocks", "wallstreetbets"})
	summary, err := driver.Run(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(summary.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %+v", summary.Diagnostics)
	}

	// stocks bucket plus derived all bucket
	if len(summary.Aggregates) != 2 {
		t.Fatalf("expected 2 aggregates, got %d", len(summary.Aggregates))
	}

	row, ok := aggs.rows["AAPL_stocks@2024-01-01"]
	if !ok {
		t.Fatal("expected AAPL_stocks row for 2024-01-01")
	}
	if row.SampleSize != 2 {
		t.Errorf("expected sample size 2, got %d", row.SampleSize)
	}
	if math.Abs(row.WeightedSentiment-2.5) > 1e-9 {
		t.Errorf("expected weighted sentiment 2.5, got %f", row.WeightedSentiment)
	}

	// Per-post sentiment persisted
	if s := store.posts["p1"].Sentiment; s == nil || *s != 0.8 {
		t.Errorf("post p1 sentiment not persisted, got %v", s)
	}
}

func TestDriver_RunTwiceIsIdempotent(t *testing.T) {
	store := newFakePostStore()
	store.add(ingestedPost("p1", "stocks", "great buy", 10, day("2024-01-01")))
	store.add(ingestedPost("p2", "stocks", "terrible crash", 5, day("2024-01-01")))

	aggs := newFakeAggregateStore()
	scorer := &fixedScorer{scores: map[string]float64{
		"great buy":      0.8,
		"terrible crash": -0.6,
	}}

	driver := NewDriver(store, aggs, scorer, []string{"stocks"})

	if _, err := driver.Run(context.Background(), "AAPL"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	firstRows := make(map[string]models.SentimentAggregate, len(aggs.rows))
	for k, v := range aggs.rows {
		firstRows[k] = v
	}
	writesAfterFirst := store.sentimentWrites

	if _, err := driver.Run(context.Background(), "AAPL"); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	// Already scored posts are not rescored or rewritten
	if store.sentimentWrites != writesAfterFirst {
		t.Errorf("second run rewrote sentiments: %d writes vs %d",
			store.sentimentWrites, writesAfterFirst)
	}

	if len(aggs.rows) != len(firstRows) {
		t.Fatalf("second run changed row count: %d vs %d", len(aggs.rows), len(firstRows))
	}
	for k, want := range firstRows {
		got := aggs.rows[k]
		if got.WeightedSentiment != want.WeightedSentiment || got.SampleSize != want.SampleSize {
			t.Errorf("row %s drifted: got (%f, %d), want (%f, %d)",
				k, got.WeightedSentiment, got.SampleSize,
				want.WeightedSentiment, want.SampleSize)
		}
	}
}

func TestDriver_NewPostReplacesAggregate(t *testing.T) {
	store := newFakePostStore()
	store.add(ingestedPost("p1", "stocks", "great buy", 10, day("2024-01-01")))
	store.add(ingestedPost("p2", "stocks", "terrible crash", 5, day("2024-01-01")))

	aggs := newFakeAggregateStore()
	scorer := &fixedScorer{scores: map[string]float64{
		"great buy":      0.8,
		"terrible crash": -0.6,
		"solid hold":     0.2,
	}}

	driver := NewDriver(store, aggs, scorer, []string{"stocks"})

	if _, err := driver.Run(context.Background(), "AAPL"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Third post lands for the same key; rerun must recompute from all
	// three, replacing the 2-post value rather than blending with it
	store.add(ingestedPost("p3", "stocks", "solid hold", 5, day("2024-01-01")))

	if _, err := driver.Run(context.Background(), "AAPL"); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	row := aggs.rows["AAPL_stocks@2024-01-01"]
	if row.SampleSize != 3 {
		t.Errorf("expected sample size 3, got %d", row.SampleSize)
	}
	// (0.8*10 - 0.6*5 + 0.2*5) / 3 = 6.0 / 3 = 2.0
	if math.Abs(row.WeightedSentiment-2.0) > 1e-9 {
		t.Errorf("expected weighted sentiment 2.0, got %f", row.WeightedSentiment)
	}
}

func TestDriver_SubredditFailureIsolation(t *testing.T) {
	store := newFakePostStore()
	store.add(ingestedPost("p1", "stocks", "great buy", 10, day("2024-01-01")))
	store.add(ingestedPost("p2", "wallstreetbets", "terrible crash", 5, day("2024-01-01")))
	store.failSubreddits["wallstreetbets"] = true

	aggs := newFakeAggregateStore()
	scorer := &fixedScorer{scores: map[string]float64{
		"great buy":      0.8,
		"terrible crash": -0.6,
	}}

	driver := NewDriver(store, aggs, scorer, []string{"stocks", "wallstreetbets"})
	summary, err := driver.Run(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The healthy subreddit still reconciled
	if _, ok := aggs.rows["AAPL_stocks@2024-01-01"]; !ok {
		t.Error("healthy subreddit bucket should still be reconciled")
	}

	// Failure surfaced as fetch diagnostics (score and bucket phases)
	fetchDiags := 0
	for _, diag := range summary.Diagnostics {
		if diag.Subreddit == "wallstreetbets" && diag.Stage == models.StageFetch {
			fetchDiags++
		}
	}
	if fetchDiags == 0 {
		t.Errorf("expected fetch diagnostics for failing subreddit, got %+v", summary.Diagnostics)
	}
}

func TestDriver_UpsertFailureIsolation(t *testing.T) {
	store := newFakePostStore()
	store.add(ingestedPost("p1", "stocks", "great buy", 10, day("2024-01-01")))
	store.add(ingestedPost("p2", "wallstreetbets", "terrible crash", 5, day("2024-01-01")))

	aggs := newFakeAggregateStore()
	aggs.failIDs["AAPL_stocks"] = true
	scorer := &fixedScorer{scores: map[string]float64{
		"great buy":      0.8,
		"terrible crash": -0.6,
	}}

	driver := NewDriver(store, aggs, scorer, []string{"stocks", "wallstreetbets"})
	summary, err := driver.Run(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Sibling buckets written despite the failing one
	if _, ok := aggs.rows["AAPL_wallstreetbets@2024-01-01"]; !ok {
		t.Error("sibling bucket should be written despite failed upsert")
	}
	if _, ok := aggs.rows["AAPL_all@2024-01-01"]; !ok {
		t.Error("all bucket should be written despite failed upsert")
	}

	found := false
	for _, diag := range summary.Diagnostics {
		if diag.Stage == models.StageReconcile && diag.Subreddit == "stocks" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected reconcile diagnostic, got %+v", summary.Diagnostics)
	}
}

func TestDriver_RunAllContinuesAcrossTickers(t *testing.T) {
	store := newFakePostStore()
	store.add(ingestedPost("p1", "stocks", "great buy", 10, day("2024-01-01")))

	tsla := ingestedPost("p2", "stocks", "terrible crash", 5, day("2024-01-01"))
	tsla.Ticker = "TSLA"
	store.add(tsla)

	aggs := newFakeAggregateStore()
	scorer := &fixedScorer{scores: map[string]float64{
		"great buy":      0.8,
		"terrible crash": -0.6,
	}}

	driver := NewDriver(store, aggs, scorer, []string{"stocks"})
	summaries, err := driver.RunAll(context.Background(), []string{"AAPL", "TSLA"})
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].Ticker != "AAPL" || summaries[1].Ticker != "TSLA" {
		t.Errorf("unexpected ticker order: %s, %s", summaries[0].Ticker, summaries[1].Ticker)
	}
	if _, ok := aggs.rows["TSLA_stocks@2024-01-01"]; !ok {
		t.Error("expected TSLA bucket to be reconciled")
	}
}
