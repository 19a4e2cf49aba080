package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/cryptotycoon/engine/internal/model"
)

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRSI_InsufficientHistoryIsNeutral(t *testing.T) {
	for n := 0; n < 15; n++ {
		if got := RSI(series(n, func(i int) float64 { return float64(i + 1) }), RSIPeriod); got != 50 {
			t.Errorf("n=%d: expected 50, got %f", n, got)
		}
	}
}

func TestRSI_Monotonic(t *testing.T) {
	up := series(15, func(i int) float64 { return 100 + float64(i) })
	if got := RSI(up, RSIPeriod); got != 100 {
		t.Errorf("strictly increasing: expected 100, got %f", got)
	}
	down := series(30, func(i int) float64 { return 100 - float64(i) })
	if got := RSI(down, RSIPeriod); got != 0 {
		t.Errorf("strictly decreasing: expected 0, got %f", got)
	}
}

func TestRSI_FlatIsNeutral(t *testing.T) {
	flat := series(20, func(int) float64 { return 42 })
	if got := RSI(flat, RSIPeriod); got != 50 {
		t.Errorf("flat series: expected 50, got %f", got)
	}
}

func TestRSI_UsesMostRecentWindow(t *testing.T) {
	// 15 falling samples followed by 15 rising: only the rise is in view.
	prices := append(series(15, func(i int) float64 { return 100 - float64(i) }),
		series(15, func(i int) float64 { return 90 + float64(i) })...)
	if got := RSI(prices, RSIPeriod); got != 100 {
		t.Errorf("expected 100 from trailing window, got %f", got)
	}
}

func TestRSI_Balanced(t *testing.T) {
	// Alternating +1/-1 deltas: equal average gain and loss.
	prices := series(15, func(i int) float64 { return 100 + float64(i%2) })
	if got := RSI(prices, RSIPeriod); !approx(got, 50) {
		t.Errorf("expected 50, got %f", got)
	}
}

func TestMACD(t *testing.T) {
	if got := MACD(series(25, func(i int) float64 { return float64(i) })); got != 0 {
		t.Errorf("expected 0 below 26 samples, got %f", got)
	}
	prices := series(26, func(i int) float64 { return float64(i) })
	// SMA12 of 14..25 = 19.5, SMA26 of 0..25 = 12.5
	if got := MACD(prices); !approx(got, 7) {
		t.Errorf("expected 7, got %f", got)
	}
}

func TestBollinger(t *testing.T) {
	if got := Bollinger(series(19, func(int) float64 { return 1 }), BollingerPeriod); got != (model.BollingerBands{}) {
		t.Errorf("expected zero bands, got %+v", got)
	}
	prices := series(20, func(i int) float64 { return float64(10 + 2*(i%2)) }) // 10,12,...
	got := Bollinger(prices, BollingerPeriod)
	if !approx(got.Middle, 11) || !approx(got.Upper, 13) || !approx(got.Lower, 9) {
		t.Errorf("expected 13/11/9, got %+v", got)
	}
}

func TestEMA(t *testing.T) {
	if got := EMA(series(3, func(int) float64 { return 5 }), 4); got != 0 {
		t.Errorf("expected 0 below period, got %f", got)
	}
	if got := EMA(series(30, func(int) float64 { return 5 }), EMAPeriod); !approx(got, 5) {
		t.Errorf("constant series: expected 5, got %f", got)
	}
	// period 3, k=0.5: seed (1+2+3)/3=2, then 4 → 3, then 6 → 4.5
	if got := EMA([]float64{1, 2, 3, 4, 6}, 3); !approx(got, 4.5) {
		t.Errorf("expected 4.5, got %f", got)
	}
}

func TestTechnicalScore(t *testing.T) {
	tests := []struct {
		rsi, macd, want float64
	}{
		{50, 1, 60},
		{50, -1, 40},
		{50, 0, 40},
		{95, 1, 100},
		{5, -1, 0},
	}
	for _, tt := range tests {
		if got := TechnicalScore(tt.rsi, tt.macd); got != tt.want {
			t.Errorf("TechnicalScore(%f, %f) = %f, want %f", tt.rsi, tt.macd, got, tt.want)
		}
	}
}

func TestCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	if got := Correlation(x, []float64{2, 4, 6, 8, 10}); !approx(got, 1) {
		t.Errorf("perfect positive: got %f", got)
	}
	if got := Correlation(x, []float64{5, 4, 3, 2, 1}); !approx(got, -1) {
		t.Errorf("perfect negative: got %f", got)
	}
	if got := Correlation(x, []float64{1, 2}); got != 0 {
		t.Errorf("length mismatch: got %f", got)
	}
	if got := Correlation(x, []float64{3, 3, 3, 3, 3}); got != 0 {
		t.Errorf("zero variance: got %f", got)
	}
}

func TestApply(t *testing.T) {
	now := time.Now()
	a := model.Asset{ID: "ETH"}
	for i := 0; i < 30; i++ {
		a.History = append(a.History, model.PricePoint{Price: 100 + float64(i), Timestamp: now})
	}
	btc := series(30, func(i int) float64 { return 1000 + 10*float64(i) })
	Apply(&a, btc)
	if a.RSI != 100 {
		t.Errorf("expected RSI 100, got %f", a.RSI)
	}
	if a.MACD <= 0 {
		t.Errorf("rising series should have positive MACD, got %f", a.MACD)
	}
	if a.TechnicalScore != 100 {
		t.Errorf("expected score 100, got %f", a.TechnicalScore)
	}
	if !approx(a.CorrelationBTC, 1) {
		t.Errorf("expected correlation 1, got %f", a.CorrelationBTC)
	}
}
