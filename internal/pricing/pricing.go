// Package pricing implements the synthetic price model: a bounded random
// walk per asset, nudged by the asset's trend and the market-wide sentiment.
//
// Prices are chart data, so the walk runs in float64; the asset's decimal
// price is set from the result at the end of each step.
package pricing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/random"
)

const (
	// MinPrice is the floor clamp. No asset can reach zero or go negative.
	MinPrice = 0.000001

	// TrendWeight scales Asset.Trend into a per-tick drift.
	TrendWeight = 0.001

	// TrendDecay is applied to Asset.Trend after every step so news
	// shocks fade out.
	TrendDecay = 0.9

	// SentimentThreshold is the per-tick percentage move above which an
	// asset is tagged bullish (or below its negative, bearish).
	SentimentThreshold = 3.0

	// NewsAdoptProb is the chance a pending news bias becomes the market
	// sentiment on the next step.
	NewsAdoptProb = 0.5

	candleJitter = 0.01
	candleMaxVol = 1_000_000
	volumeDrift  = 0.05
)

// Params are the ruleset knobs the walk depends on.
type Params struct {
	SentimentInfluence float64
	VolatilityScale    float64
	HistoryCap         int
	Candles            bool
	CandleCap          int
}

// ParamsFor extracts the walk parameters from a ruleset.
func ParamsFor(r model.Ruleset) Params {
	return Params{
		SentimentInfluence: r.SentimentInfluence,
		VolatilityScale:    r.VolatilityScale,
		HistoryCap:         r.HistoryCap,
		Candles:            r.CandlesEnabled,
		CandleCap:          r.CandleCap,
	}
}

// Drift returns the sentiment contribution to one step.
func Drift(s model.Sentiment, influence float64) float64 {
	switch s {
	case model.Bullish:
		return influence
	case model.Bearish:
		return -influence
	default:
		return 0
	}
}

// Advance returns a copy of a moved one step. Random draws are consumed in
// a fixed order (change, then candle high, low, volume, then volume drift)
// so a seeded source reproduces the same path.
func Advance(a model.Asset, market model.Sentiment, p Params, rng random.Source, now time.Time) model.Asset {
	old := a.Price.InexactFloat64()
	if old <= 0 {
		old = MinPrice
	}

	vol := a.Volatility * scale(p.VolatilityScale)
	vol = math.Min(math.Max(vol, 0), 1)

	delta := random.Uniform(rng, vol) + a.Trend*TrendWeight + Drift(market, p.SentimentInfluence)
	next := math.Max(old*(1+delta), MinPrice)

	a.Price = decimal.NewFromFloat(next)
	a.Change24h = (next - old) / old * 100
	a.Sentiment = assetSentiment(a.Change24h)
	a.Trend *= TrendDecay

	a.History = appendCapped(a.History, model.PricePoint{Price: next, Timestamp: now}, p.HistoryCap)

	if p.Candles {
		prevClose := old
		if n := len(a.CandleHistory); n > 0 {
			prevClose = a.CandleHistory[n-1].Close
		}
		a.CandleHistory = appendCapped(a.CandleHistory, Candle(prevClose, next, rng, now), p.CandleCap)
	}

	a.Volume24h *= 1 + random.Uniform(rng, volumeDrift)
	return a
}

// Candle synthesizes an OHLC record between the previous close and the new
// price. High and low are jittered up to 1% outside the body.
func Candle(prevClose, price float64, rng random.Source, now time.Time) model.Candle {
	hi := math.Max(prevClose, price) * (1 + rng.Float64()*candleJitter)
	lo := math.Min(prevClose, price) * (1 - rng.Float64()*candleJitter)
	return model.Candle{
		Open:      prevClose,
		High:      hi,
		Low:       math.Max(lo, MinPrice),
		Close:     price,
		Volume:    rng.Float64() * candleMaxVol,
		Timestamp: now,
	}
}

// NextSentiment decides the market sentiment for the coming step. With
// probability shiftProb it is redrawn uniformly; otherwise a pending news
// bias is adopted half the time. The second return reports whether the bias
// was consumed (it is, whenever one was pending and no redraw happened).
func NextSentiment(current, bias model.Sentiment, shiftProb float64, rng random.Source) (model.Sentiment, bool) {
	if shiftProb > 0 && rng.Float64() < shiftProb {
		return model.Sentiments[rng.IntN(len(model.Sentiments))], false
	}
	if bias.Valid() {
		if rng.Float64() < NewsAdoptProb {
			return bias, true
		}
		return current, true
	}
	return current, false
}

func assetSentiment(change float64) model.Sentiment {
	switch {
	case change > SentimentThreshold:
		return model.Bullish
	case change < -SentimentThreshold:
		return model.Bearish
	default:
		return model.Neutral
	}
}

func scale(s float64) float64 {
	if s <= 0 {
		return 1
	}
	return s
}

func appendCapped[T any](xs []T, x T, limit int) []T {
	xs = append(xs, x)
	if limit > 0 && len(xs) > limit {
		xs = append(xs[:0:0], xs[len(xs)-limit:]...)
	}
	return xs
}
