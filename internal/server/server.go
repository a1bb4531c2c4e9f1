package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/marketpulse/stock-sentiment/pkg/logger"
	"github.com/marketpulse/stock-sentiment/pkg/models"
)

// AggregateReader is the read surface the API exposes
type AggregateReader interface {
	Tickers(ctx context.Context) ([]string, error)
	Subreddits(ctx context.Context) ([]string, error)
	TickerSentiment(ctx context.Context, ticker string) ([]models.SentimentAggregate, error)
	TickerSubredditSentiment(ctx context.Context, ticker, subreddit string) ([]models.SentimentAggregate, error)
}

// Pinger reports storage health
type Pinger interface {
	Health() error
}

// Server exposes the aggregate table over HTTP
type Server struct {
	server     *http.Server
	aggregates AggregateReader
	db         Pinger
	startTime  time.Time
}

// HealthStatus represents service health
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// New creates new API server
func New(port string, aggregates AggregateReader, db Pinger) *Server {
	s := &Server{
		aggregates: aggregates,
		db:         db,
		startTime:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /tickers", s.handleTickers)
	mux.HandleFunc("GET /subreddits", s.handleSubreddits)
	mux.HandleFunc("GET /sentiment/{ticker}", s.handleTickerSentiment)
	mux.HandleFunc("GET /sentiment/{ticker}/{subreddit}", s.handleTickerSubredditSentiment)

	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start begins serving; blocks until the server stops
func (s *Server) Start() error {
	logger.Info("api server starting", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("api server shutting down")
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying handler (used by tests)
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Checks:    map[string]string{"database": "ok"},
	}

	code := http.StatusOK
	if err := s.db.Health(); err != nil {
		status.Status = "degraded"
		status.Checks["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, status)
}

func (s *Server) handleTickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := s.aggregates.Tickers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"tickers": tickers})
}

func (s *Server) handleSubreddits(w http.ResponseWriter, r *http.Request) {
	subreddits, err := s.aggregates.Subreddits(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"subreddits": subreddits})
}

func (s *Server) handleTickerSentiment(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))

	rows, err := s.aggregates.TickerSentiment(r.Context(), ticker)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":    ticker,
		"sentiment": rows,
	})
}

func (s *Server) handleTickerSubredditSentiment(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	subreddit := r.PathValue("subreddit")

	rows, err := s.aggregates.TickerSubredditSentiment(r.Context(), ticker, subreddit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":    ticker,
		"subreddit": subreddit,
		"sentiment": rows,
	})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	logger.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
