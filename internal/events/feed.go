// Package events emits random market news. A headline biases the market
// sentiment on the following price step and pushes the trend of the assets
// it names.
package events

import (
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/cryptotycoon/engine/internal/clock"
	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/random"
)

// TrendShock is the trend assigned to assets named in a headline, signed by
// its impact.
const TrendShock = 1.0

// Headline is a catalog entry.
type Headline struct {
	Title     string
	Impact    model.Impact
	Assets    []string
	Sentiment model.Sentiment
}

// Headlines is the static news catalog.
var Headlines = []Headline{
	{"Bitcoin ETF Approved by SEC", model.ImpactPositive, []string{"BTC"}, model.Bullish},
	{"Major Exchange Security Breach", model.ImpactNegative, []string{"BTC", "ETH"}, model.Bearish},
	{"Elon Musk Tweets Doge Meme", model.ImpactPositive, []string{"DOGE"}, model.Bullish},
	{"Ethereum Staking Rewards Increased", model.ImpactPositive, []string{"ETH"}, model.Bullish},
	{"China Bans Crypto Mining Again", model.ImpactNegative, []string{"BTC", "ETH", "ADA"}, model.Bearish},
	{"Solana Network Upgrade Complete", model.ImpactPositive, []string{"SOL"}, model.Bullish},
	{"JPMorgan Adopts Polygon for Payments", model.ImpactPositive, []string{"MATIC"}, model.Bullish},
	{"Chainlink Partners with Google Cloud", model.ImpactPositive, []string{"LINK"}, model.Bullish},
	{"Institutional Investors Buy the Dip", model.ImpactPositive, []string{"BTC", "ETH"}, model.Bullish},
	{"Crypto Market Cap Hits New ATH", model.ImpactPositive, []string{"BTC", "ETH", "ADA", "SOL"}, model.Bullish},
}

// Feed draws news with the ruleset's per-tick probability.
type Feed struct {
	clock     clock.Clock
	rng       random.Source
	headlines []Headline
}

// NewFeed creates a feed over the default catalog.
func NewFeed(c clock.Clock, rng random.Source) *Feed {
	return &Feed{clock: c, rng: rng, headlines: Headlines}
}

// Tick rolls for news. On a hit it prepends the item to s.News (capped at
// the ruleset's NewsCap), records the pending sentiment bias and shocks the
// trend of the affected assets. It returns nil when nothing was emitted.
func (f *Feed) Tick(s *model.GameState) *model.NewsItem {
	if len(f.headlines) == 0 || f.rng.Float64() >= s.Ruleset.NewsProbability {
		return nil
	}
	h := f.headlines[f.rng.IntN(len(f.headlines))]
	item := model.NewsItem{
		ID:             uuid.NewString(),
		Title:          h.Title,
		Impact:         h.Impact,
		AffectedAssets: slices.Clone(h.Assets),
		SentimentBias:  h.Sentiment,
		Timestamp:      f.clock.Now(),
	}

	news := append([]model.NewsItem{item}, s.News...)
	if limit := s.Ruleset.NewsCap; limit > 0 && len(news) > limit {
		news = news[:limit]
	}
	s.News = news
	s.PendingSentimentBias = h.Sentiment

	shock := TrendShock
	if h.Impact == model.ImpactNegative {
		shock = -TrendShock
	}
	for _, id := range h.Assets {
		if a, ok := s.Assets[id]; ok {
			a.Trend = shock
			s.Assets[id] = a
		}
	}

	slog.Info("market news", "title", item.Title, "impact", item.Impact, "assets", item.AffectedAssets)
	return &item
}
