package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

type endpointStats struct {
	count     int
	errors    int
	totalTime time.Duration
}

// statsLogger periodically logs request counts and average latency per
// route pattern.
type statsLogger struct {
	stats         map[string]*endpointStats
	mu            sync.Mutex
	flushInterval time.Duration
	logger        *slog.Logger
}

func newStatsLogger(logger *slog.Logger, flushInterval time.Duration) *statsLogger {
	return &statsLogger{
		stats:         make(map[string]*endpointStats),
		flushInterval: flushInterval,
		logger:        logger,
	}
}

func (sl *statsLogger) run(ctx context.Context) {
	ticker := time.NewTicker(sl.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sl.flushStats()
			return
		case <-ticker.C:
			sl.flushStats()
		}
	}
}

func (sl *statsLogger) flushStats() {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	for endpoint, stats := range sl.stats {
		avgTimeMs := float64(stats.totalTime.Microseconds()) / float64(stats.count) / 1000.0
		sl.logger.Info("endpoint stats",
			"endpoint", endpoint,
			"count", stats.count,
			"errors", stats.errors,
			"avg_time_ms", fmt.Sprintf("%.2f", avgTimeMs),
			"period", sl.flushInterval,
		)
	}
	clear(sl.stats)
}

func (sl *statsLogger) record(endpoint string, status int, duration time.Duration) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	s, exists := sl.stats[endpoint]
	if !exists {
		s = &endpointStats{}
		sl.stats[endpoint] = s
	}
	s.count++
	s.totalTime += duration
	if status >= http.StatusInternalServerError {
		s.errors++
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (sl *statsLogger) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// route pattern is only known after routing
		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		sl.record(fmt.Sprintf("%s %s", r.Method, pattern), rec.status, time.Since(start))
	})
}
