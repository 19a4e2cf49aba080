package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cryptotycoon/engine/internal/game"
	"github.com/cryptotycoon/engine/internal/model"
)

func TestRecorder_Commands(t *testing.T) {
	ok := testutil.ToFloat64(CommandsTotal.WithLabelValues("buy", "ok"))
	rejected := testutil.ToFloat64(CommandsTotal.WithLabelValues("buy", "rejected"))

	var r Recorder
	r.Publish(game.Update{Type: game.UpdateCommand, Name: "buy", Duration: time.Millisecond})
	r.Publish(game.Update{Type: game.UpdateRejected, Name: "buy", Error: "insufficient cash"})

	assert.Equal(t, ok+1, testutil.ToFloat64(CommandsTotal.WithLabelValues("buy", "ok")))
	assert.Equal(t, rejected+1, testutil.ToFloat64(CommandsTotal.WithLabelValues("buy", "rejected")))
}

func TestRecorder_SummaryGauges(t *testing.T) {
	var r Recorder
	r.Publish(game.Update{
		Type: game.UpdateTick,
		Name: "price",
		Summary: &game.Summary{
			Cash:       decimal.NewFromInt(2500),
			TotalValue: decimal.NewFromInt(12000),
			Prices:     map[string]decimal.Decimal{"BTC": decimal.NewFromInt(45000)},
		},
	})

	assert.Equal(t, 2500.0, testutil.ToFloat64(Cash))
	assert.Equal(t, 12000.0, testutil.ToFloat64(PortfolioValue))
	assert.Equal(t, 45000.0, testutil.ToFloat64(AssetPrice.WithLabelValues("BTC")))
}

func TestRecorder_News(t *testing.T) {
	before := testutil.ToFloat64(NewsTotal.WithLabelValues("negative"))
	var r Recorder
	r.Publish(game.Update{Type: game.UpdateNews, News: &model.NewsItem{Impact: model.ImpactNegative}})
	r.Publish(game.Update{Type: game.UpdateNews})
	assert.Equal(t, before+1, testutil.ToFloat64(NewsTotal.WithLabelValues("negative")))
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/v1/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/sessions/{id}", "404"))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/sessions/{id}", "404")))
}
