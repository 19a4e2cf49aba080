package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/cryptotycoon/engine/internal/metrics"
)

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	CORSOrigin     string        // Access-Control-Allow-Origin; empty → "*"
	RateLimit      float64       // command requests per second; 0 disables
	RateBurst      int           // limiter bucket size
	RequestTimeout time.Duration // 0 → 30s
	AccessLog      bool          // chi request logger
}

// NewRouter mounts the handler, hub and metrics endpoint on a chi router.
// hub may be nil to disable the WebSocket feed.
func NewRouter(h *Handler, hub *WSHub, cfg RouterConfig) chi.Router {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	if cfg.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(timeout))
	r.Use(metrics.Middleware)
	r.Use(cors(cfg.CORSOrigin))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"tycoon-engine"}`))
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if hub != nil {
			r.Get("/ws", hub.HandleWS)
		}

		r.Get("/state", h.GetState)
		r.Get("/export", h.Export)
		r.Get("/sessions", h.ListSessions)
		r.Get("/transactions", h.ListTransactions)

		// State-changing commands share one limiter.
		r.Group(func(r chi.Router) {
			if cfg.RateLimit > 0 {
				burst := cfg.RateBurst
				if burst < 1 {
					burst = 1
				}
				r.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)))
			}

			r.Post("/game/new", h.NewGame)
			r.Post("/session/start", h.StartSession)
			r.Put("/view", h.SetView)
			r.Patch("/settings", h.UpdateSettings)

			r.Post("/buy", h.Buy)
			r.Post("/sell", h.Sell)
			r.Post("/stake", h.Stake)
			r.Post("/unstake", h.Unstake)
			r.Post("/staking/claim", h.ClaimStakingRewards)
			r.Post("/liquidity/provide", h.ProvideLiquidity)
			r.Post("/liquidity/remove", h.RemoveLiquidity)
			r.Post("/mining/hardware", h.BuyMiningHardware)
			r.Post("/bots/deploy", h.DeployTradingBot)
			r.Post("/bots/stop", h.StopTradingBot)
			r.Post("/nfts/buy", h.BuyNFT)
			r.Post("/nfts/sell", h.SellNFT)

			r.Post("/import", h.Import)
			r.Post("/save", h.Save)
			r.Post("/load", h.Load)
			r.Post("/archive", h.Archive)
			r.Post("/archive/restore", h.RestoreArchive)
		})
	})

	return r
}

// RateLimit rejects requests with 429 once l has no tokens left.
func RateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				writeError(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// cors allows the browser client to call the API cross-origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
