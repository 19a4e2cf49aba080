// Package indicator derives technical indicators from an oldest-first price
// series. Every function is pure and total: short or degenerate input yields
// a defined neutral value, never NaN.
package indicator

import (
	"math"

	"github.com/cryptotycoon/engine/internal/model"
)

const (
	RSIPeriod       = 14
	BollingerPeriod = 20
	EMAPeriod       = 20
	MACDFast        = 12
	MACDSlow        = 26
	CorrelationSpan = 20

	// NeutralRSI is returned when there is not enough history.
	NeutralRSI = 50.0
)

// RSI computes the relative strength index over the most recent period
// deltas. Fewer than period+1 samples, or a flat window, yield 50. A window
// with gains and no losses yields 100.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return NeutralRSI
	}
	window := prices[len(prices)-period-1:]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	switch {
	case avgLoss == 0 && avgGain == 0:
		return NeutralRSI
	case avgLoss == 0:
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD is SMA(12) − SMA(26) of the trailing samples. The simple averages
// stand in for exponential ones. Returns 0 below 26 samples.
func MACD(prices []float64) float64 {
	if len(prices) < MACDSlow {
		return 0
	}
	return SMA(prices, MACDFast) - SMA(prices, MACDSlow)
}

// SMA averages the trailing period samples, or returns 0 if there are fewer.
func SMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}
	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// Bollinger returns SMA ± 2σ (population σ) over the trailing period
// samples, or zero bands if there are fewer.
func Bollinger(prices []float64, period int) model.BollingerBands {
	if period <= 0 || len(prices) < period {
		return model.BollingerBands{}
	}
	mid := SMA(prices, period)
	var variance float64
	for _, p := range prices[len(prices)-period:] {
		variance += (p - mid) * (p - mid)
	}
	sd := math.Sqrt(variance / float64(period))
	return model.BollingerBands{Upper: mid + 2*sd, Middle: mid, Lower: mid - 2*sd}
}

// EMA is a true exponential moving average seeded with the SMA of the first
// period samples. Returns 0 below period samples.
func EMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}
	k := 2 / float64(period+1)
	var ema float64
	for _, p := range prices[:period] {
		ema += p
	}
	ema /= float64(period)
	for _, p := range prices[period:] {
		ema = p*k + ema*(1-k)
	}
	return ema
}

// TechnicalScore combines RSI with the MACD sign: +10 when MACD is positive,
// −10 otherwise, clamped to [0, 100].
func TechnicalScore(rsi, macd float64) float64 {
	score := rsi - 10
	if macd > 0 {
		score = rsi + 10
	}
	return math.Max(0, math.Min(100, score))
}

// Correlation is the Pearson coefficient of two equal-length series. It is
// 0 for mismatched lengths, empty input, or zero variance.
func Correlation(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}
	var sx, sy, sxy, sx2, sy2 float64
	for i := range x {
		sx += x[i]
		sy += y[i]
		sxy += x[i] * y[i]
		sx2 += x[i] * x[i]
		sy2 += y[i] * y[i]
	}
	fn := float64(n)
	den := math.Sqrt((fn*sx2 - sx*sx) * (fn*sy2 - sy*sy))
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	r := (fn*sxy - sx*sy) / den
	return math.Max(-1, math.Min(1, r))
}

// Closes extracts the price column of a history.
func Closes(h []model.PricePoint) []float64 {
	out := make([]float64, len(h))
	for i, p := range h {
		out[i] = p.Price
	}
	return out
}

// Apply writes every derived indicator onto a. btc is the reference series
// for CorrelationBTC; pass nil for BTC itself.
func Apply(a *model.Asset, btc []float64) {
	prices := Closes(a.History)
	a.RSI = RSI(prices, RSIPeriod)
	a.MACD = MACD(prices)
	a.Bollinger = Bollinger(prices, BollingerPeriod)
	a.EMA = EMA(prices, EMAPeriod)
	a.TechnicalScore = TechnicalScore(a.RSI, a.MACD)
	if btc != nil {
		a.CorrelationBTC = Correlation(tail(btc, CorrelationSpan), tail(prices, CorrelationSpan))
	}
}

func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
