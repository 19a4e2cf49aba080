// Package metrics provides Prometheus instrumentation for the game engine.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cryptotycoon/engine/internal/game"
)

var (
	// CommandsTotal counts player commands by name and result (ok|rejected).
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tycoon_commands_total",
		Help: "Total number of player commands handled",
	}, []string{"command", "result"})

	// CommandLatency tracks how long an accepted command held the engine.
	CommandLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tycoon_command_latency_seconds",
		Help:    "Command execution latency in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"command"})

	// TicksTotal counts ticks that changed state, by tick name.
	TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tycoon_ticks_total",
		Help: "Total number of applied ticks",
	}, []string{"tick"})

	// NewsTotal counts emitted headlines by impact.
	NewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tycoon_news_total",
		Help: "Market news items emitted",
	}, []string{"impact"})

	// AchievementsUnlocked counts unlocks by achievement.
	AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tycoon_achievements_unlocked_total",
		Help: "Achievements unlocked",
	}, []string{"achievement"})

	// ChallengesCompleted counts completed daily challenges.
	ChallengesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tycoon_challenges_completed_total",
		Help: "Daily challenges completed",
	}, []string{"challenge"})

	// PortfolioValue tracks the player's total value in USD.
	PortfolioValue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tycoon_portfolio_value_usd",
		Help: "Current total portfolio value",
	})

	// Cash tracks the player's cash balance in USD.
	Cash = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tycoon_cash_usd",
		Help: "Current cash balance",
	})

	// AssetPrice tracks the latest simulated price per asset.
	AssetPrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tycoon_asset_price_usd",
		Help: "Latest simulated asset price",
	}, []string{"asset"})

	// SavesTotal counts snapshots written to the store.
	SavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tycoon_saves_total",
		Help: "Snapshots saved",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tycoon_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tycoon_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tycoon_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Recorder turns engine updates into metrics. It is a game.Publisher.
type Recorder struct{}

// Publish never blocks: every branch is a counter or gauge update.
func (Recorder) Publish(u game.Update) {
	switch u.Type {
	case game.UpdateCommand:
		CommandsTotal.WithLabelValues(u.Name, "ok").Inc()
		CommandLatency.WithLabelValues(u.Name).Observe(u.Duration.Seconds())
	case game.UpdateRejected:
		CommandsTotal.WithLabelValues(u.Name, "rejected").Inc()
	case game.UpdateTick:
		TicksTotal.WithLabelValues(u.Name).Inc()
	case game.UpdateNews:
		if u.News != nil {
			NewsTotal.WithLabelValues(string(u.News.Impact)).Inc()
		}
	case game.UpdateAchievement:
		AchievementsUnlocked.WithLabelValues(u.Name).Inc()
	case game.UpdateChallenge:
		ChallengesCompleted.WithLabelValues(u.Name).Inc()
	case game.UpdateSave:
		SavesTotal.Inc()
	}

	if u.Summary != nil {
		PortfolioValue.Set(u.Summary.TotalValue.InexactFloat64())
		Cash.Set(u.Summary.Cash.InexactFloat64())
		for id, p := range u.Summary.Prices {
			AssetPrice.WithLabelValues(id).Set(p.InexactFloat64())
		}
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack passes through so WebSocket upgrades work behind the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
