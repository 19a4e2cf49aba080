package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/random"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func asset(price, vol float64) model.Asset {
	return model.Asset{ID: "BTC", Price: d(price), Volatility: vol, Volume24h: 1000}
}

func params() Params {
	return Params{SentimentInfluence: 0.002, VolatilityScale: 1, HistoryCap: 5, Candles: true, CandleCap: 3}
}

func TestAdvance_MidpointDrawLeavesPriceUnchanged(t *testing.T) {
	// 0.5 maps to a zero uniform draw.
	a := Advance(asset(100, 0.05), model.Neutral, params(), random.NewFixed(0.5), t0)
	if a.Price.InexactFloat64() != 100 {
		t.Errorf("expected price 100, got %s", a.Price)
	}
	if a.Change24h != 0 {
		t.Errorf("expected zero change, got %f", a.Change24h)
	}
	if len(a.History) != 1 || a.History[0].Timestamp != t0 {
		t.Errorf("expected one history point at t0, got %+v", a.History)
	}
}

func TestAdvance_ExtremeDrawsRespectVolatility(t *testing.T) {
	up := Advance(asset(100, 0.05), model.Neutral, params(), random.NewFixed(0.999999), t0)
	if up.Price.InexactFloat64() > 105 || up.Price.InexactFloat64() < 104.99 {
		t.Errorf("max draw should move close to +5%%, got %s", up.Price)
	}
	down := Advance(asset(100, 0.05), model.Neutral, params(), random.NewFixed(0), t0)
	if math.Abs(down.Price.InexactFloat64()-95) > 1e-9 {
		t.Errorf("min draw should move -5%%, got %s", down.Price)
	}
	if down.Change24h > -4.99 {
		t.Errorf("expected change near -5%%, got %f", down.Change24h)
	}
}

func TestAdvance_SentimentDrift(t *testing.T) {
	bull := Advance(asset(100, 0.05), model.Bullish, params(), random.NewFixed(0.5), t0)
	bear := Advance(asset(100, 0.05), model.Bearish, params(), random.NewFixed(0.5), t0)
	if math.Abs(bull.Price.InexactFloat64()-100.2) > 1e-9 {
		t.Errorf("bullish drift should add 0.2%%, got %s", bull.Price)
	}
	if math.Abs(bear.Price.InexactFloat64()-99.8) > 1e-9 {
		t.Errorf("bearish drift should subtract 0.2%%, got %s", bear.Price)
	}
}

func TestAdvance_TrendAppliesAndDecays(t *testing.T) {
	a := asset(100, 0.05)
	a.Trend = 1
	a = Advance(a, model.Neutral, params(), random.NewFixed(0.5), t0)
	if math.Abs(a.Price.InexactFloat64()-100.1) > 1e-9 {
		t.Errorf("trend 1 should add 0.1%%, got %s", a.Price)
	}
	if math.Abs(a.Trend-0.9) > 1e-12 {
		t.Errorf("trend should decay to 0.9, got %f", a.Trend)
	}
}

func TestAdvance_PriceNeverReachesZero(t *testing.T) {
	a := asset(MinPrice, 1)
	rng := random.NewFixed(0)
	for i := 0; i < 50; i++ {
		a = Advance(a, model.Bearish, params(), rng, t0)
		if !a.Price.IsPositive() {
			t.Fatalf("step %d: price must stay positive, got %s", i, a.Price)
		}
	}
}

func TestAdvance_HistoryAndCandlesCapped(t *testing.T) {
	a := asset(100, 0.05)
	rng := random.New(42)
	for i := 0; i < 20; i++ {
		a = Advance(a, model.Neutral, params(), rng, t0.Add(time.Duration(i)*time.Second))
	}
	if len(a.History) != 5 {
		t.Errorf("history should be capped at 5, got %d", len(a.History))
	}
	if a.History[4].Timestamp != t0.Add(19*time.Second) {
		t.Errorf("newest point should be last, got %v", a.History[4].Timestamp)
	}
	if len(a.CandleHistory) != 3 {
		t.Errorf("candles should be capped at 3, got %d", len(a.CandleHistory))
	}
	for i := 1; i < len(a.CandleHistory); i++ {
		if a.CandleHistory[i].Open != a.CandleHistory[i-1].Close {
			t.Errorf("candle %d should open at previous close", i)
		}
	}
}

func TestAdvance_NoCandlesWhenDisabled(t *testing.T) {
	p := params()
	p.Candles = false
	a := Advance(asset(100, 0.05), model.Neutral, p, random.New(1), t0)
	if len(a.CandleHistory) != 0 {
		t.Errorf("expected no candles, got %d", len(a.CandleHistory))
	}
}

func TestAdvance_SeededIsDeterministic(t *testing.T) {
	a1, a2 := asset(100, 0.05), asset(100, 0.05)
	r1, r2 := random.New(7), random.New(7)
	for i := 0; i < 30; i++ {
		a1 = Advance(a1, model.Bullish, params(), r1, t0)
		a2 = Advance(a2, model.Bullish, params(), r2, t0)
	}
	if !a1.Price.Equal(a2.Price) {
		t.Errorf("same seed should give same price: %s vs %s", a1.Price, a2.Price)
	}
}

func TestAdvance_AssetSentimentThreshold(t *testing.T) {
	a := Advance(asset(100, 0.1), model.Neutral, params(), random.NewFixed(0.9), t0)
	if a.Sentiment != model.Bullish {
		t.Errorf("+8%% move should be bullish, got %s", a.Sentiment)
	}
	a = Advance(asset(100, 0.1), model.Neutral, params(), random.NewFixed(0.45), t0)
	if a.Sentiment != model.Neutral {
		t.Errorf("-1%% move should be neutral, got %s", a.Sentiment)
	}
}

func TestCandle_HighLowBracketBody(t *testing.T) {
	c := Candle(100, 102, random.NewFixed(0.5, 0.5, 0.25), t0)
	if c.Open != 100 || c.Close != 102 {
		t.Fatalf("unexpected body %+v", c)
	}
	if c.High < 102 || c.High > 102*1.01 {
		t.Errorf("high out of range: %f", c.High)
	}
	if c.Low > 100 || c.Low < 99 {
		t.Errorf("low out of range: %f", c.Low)
	}
	if c.Volume != 250_000 {
		t.Errorf("expected volume 250000, got %f", c.Volume)
	}
}

func TestNextSentiment(t *testing.T) {
	tests := []struct {
		name     string
		current  model.Sentiment
		bias     model.Sentiment
		prob     float64
		draws    []float64
		want     model.Sentiment
		consumed bool
	}{
		{"no shift no bias", model.Neutral, "", 0.03, []float64{0.5}, model.Neutral, false},
		{"shift redraws", model.Neutral, "", 0.03, []float64{0.01, 0.1}, model.Bullish, false},
		{"shift to bearish", model.Bullish, model.Bullish, 0.03, []float64{0.01, 0.5}, model.Bearish, false},
		{"bias adopted", model.Neutral, model.Bearish, 0.03, []float64{0.5, 0.2}, model.Bearish, true},
		{"bias ignored", model.Neutral, model.Bearish, 0.03, []float64{0.5, 0.7}, model.Neutral, true},
		{"zero prob never shifts", model.Bearish, "", 0, []float64{0}, model.Bearish, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, consumed := NextSentiment(tt.current, tt.bias, tt.prob, random.NewFixed(tt.draws...))
			if got != tt.want || consumed != tt.consumed {
				t.Errorf("got (%s, %v), want (%s, %v)", got, consumed, tt.want, tt.consumed)
			}
		})
	}
}
