package game

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
)

// UpdateType classifies what produced an Update.
type UpdateType string

const (
	UpdateCommand     UpdateType = "command"
	UpdateRejected    UpdateType = "rejected"
	UpdateTick        UpdateType = "tick"
	UpdateNews        UpdateType = "news"
	UpdateAchievement UpdateType = "achievement"
	UpdateChallenge   UpdateType = "challenge"
	UpdateRestore     UpdateType = "restore"
	UpdateSave        UpdateType = "save"
)

// Summary is the compact view of a state pushed to observers.
type Summary struct {
	Cash        decimal.Decimal            `json:"cash"`
	TotalValue  decimal.Decimal            `json:"total_value"`
	TotalProfit decimal.Decimal            `json:"total_profit"`
	Level       int                        `json:"level"`
	Trades      int                        `json:"trades"`
	Sentiment   model.Sentiment            `json:"market_sentiment"`
	Prices      map[string]decimal.Decimal `json:"prices"`
}

// Summarize extracts a Summary from s.
func Summarize(s *model.GameState) Summary {
	prices := make(map[string]decimal.Decimal, len(s.Assets))
	for id, a := range s.Assets {
		prices[id] = a.Price
	}
	return Summary{
		Cash:        s.Player.Cash,
		TotalValue:  s.Player.TotalValue,
		TotalProfit: s.Player.TotalProfit,
		Level:       s.Player.Level,
		Trades:      s.Player.TradesCount,
		Sentiment:   s.MarketSentiment,
		Prices:      prices,
	}
}

// Update is emitted after every command, tick, unlock and restore.
type Update struct {
	Type        UpdateType            `json:"type"`
	Name        string                `json:"name"` // command or tick name
	SessionID   string                `json:"session_id"`
	At          time.Time             `json:"at"`
	Duration    time.Duration         `json:"duration_ns,omitempty"`
	Summary     *Summary              `json:"summary,omitempty"`
	News        *model.NewsItem       `json:"news,omitempty"`
	Achievement *model.Achievement    `json:"achievement,omitempty"`
	Challenge   *model.DailyChallenge `json:"challenge,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// Publisher observes engine updates. Publish is called outside the engine
// lock and must not block.
type Publisher interface {
	Publish(u Update)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(u Update)

func (f PublisherFunc) Publish(u Update) { f(u) }
