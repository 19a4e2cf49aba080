package model

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SchemaVersion is bumped whenever GameState changes shape incompatibly.
const SchemaVersion = 1

// Settings are UI preferences persisted alongside the game.
type Settings struct {
	Theme             string     `json:"theme"`
	SoundEnabled      bool       `json:"sound_enabled"`
	Notifications     bool       `json:"notifications"`
	AutoSave          bool       `json:"auto_save"`
	Difficulty        Difficulty `json:"difficulty"`
	ChartType         string     `json:"chart_type"`
	AnimationsEnabled bool       `json:"animations_enabled"`
	AutoTrading       bool       `json:"auto_trading"`
}

// DefaultSettings mirrors the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{
		Theme:             "dark",
		SoundEnabled:      true,
		Notifications:     true,
		AutoSave:          true,
		Difficulty:        DifficultyNormal,
		ChartType:         "candlestick",
		AnimationsEnabled: true,
	}
}

// SettingsPatch is a partial settings update; nil fields are left alone.
type SettingsPatch struct {
	Theme             *string `json:"theme,omitempty"`
	SoundEnabled      *bool   `json:"sound_enabled,omitempty"`
	Notifications     *bool   `json:"notifications,omitempty"`
	AutoSave          *bool   `json:"auto_save,omitempty"`
	ChartType         *string `json:"chart_type,omitempty"`
	AnimationsEnabled *bool   `json:"animations_enabled,omitempty"`
	AutoTrading       *bool   `json:"auto_trading,omitempty"`
}

// Apply merges p into s.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.AutoSave != nil {
		s.AutoSave = *p.AutoSave
	}
	if p.ChartType != nil {
		s.ChartType = *p.ChartType
	}
	if p.AnimationsEnabled != nil {
		s.AnimationsEnabled = *p.AnimationsEnabled
	}
	if p.AutoTrading != nil {
		s.AutoTrading = *p.AutoTrading
	}
	return s
}

// GameState is the single aggregate owned by the engine. It is replaced
// whole on every command or tick; nothing outside the engine mutates a live
// instance.
type GameState struct {
	Version   int     `json:"version"`
	SessionID string  `json:"session_id"`
	Ruleset   Ruleset `json:"ruleset"`

	Player       Player                       `json:"player"`
	Assets       map[string]Asset             `json:"assets"`
	Holdings     map[string]Holding           `json:"holdings"`
	Staked       map[string]StakedPosition    `json:"staked"`
	Liquidity    map[string]LiquidityPosition `json:"liquidity"`
	NFTs         map[string]NFTHolding        `json:"nfts"`
	Rigs         []MiningRig                  `json:"mining_rigs"`
	Bots         []TradingBot                 `json:"trading_bots"`
	Transactions []Transaction                `json:"transactions"` // newest first
	News         []NewsItem                   `json:"news"`         // newest first

	Achievements        []Achievement    `json:"achievements"`
	DailyChallenges     []DailyChallenge `json:"daily_challenges"`
	ChallengesCompleted int              `json:"challenges_completed"`

	MarketSentiment      Sentiment `json:"market_sentiment"`
	PendingSentimentBias Sentiment `json:"pending_sentiment_bias,omitempty"`

	CurrentView      string          `json:"current_view"`
	Settings         Settings        `json:"settings"`
	GameStarted      bool            `json:"game_started"`
	SessionStartedAt time.Time       `json:"session_started_at"`
	SessionTrades    int             `json:"session_trades"`
	DayStartValue    decimal.Decimal `json:"day_start_value"`
	DayStartedAt     time.Time       `json:"day_started_at"`
	DayRewards       decimal.Decimal `json:"day_rewards"` // achievement and challenge payouts since DayStartedAt
	LastSellAt       time.Time       `json:"last_sell_at"`
	LastMiningAt     time.Time       `json:"last_mining_at"`
}

// AssetIDs returns asset IDs in stable order so random draws are consumed
// deterministically.
func (s *GameState) AssetIDs() []string {
	return sortedKeys(s.Assets)
}

// HoldingIDs returns held asset IDs in stable order.
func (s *GameState) HoldingIDs() []string {
	return sortedKeys(s.Holdings)
}

// StakedIDs returns staked asset IDs in stable order.
func (s *GameState) StakedIDs() []string {
	return sortedKeys(s.Staked)
}

// PoolIDs returns liquidity pool IDs in stable order.
func (s *GameState) PoolIDs() []string {
	return sortedKeys(s.Liquidity)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy. Handlers mutate the copy and the engine swaps it
// in only when the handler succeeds.
func (s *GameState) Clone() *GameState {
	c := *s

	c.Assets = make(map[string]Asset, len(s.Assets))
	for id, a := range s.Assets {
		a.History = slices.Clone(a.History)
		a.CandleHistory = slices.Clone(a.CandleHistory)
		c.Assets[id] = a
	}
	c.Holdings = maps.Clone(s.Holdings)
	c.Staked = maps.Clone(s.Staked)
	c.Liquidity = maps.Clone(s.Liquidity)
	c.NFTs = maps.Clone(s.NFTs)
	if c.Holdings == nil {
		c.Holdings = map[string]Holding{}
	}
	if c.Staked == nil {
		c.Staked = map[string]StakedPosition{}
	}
	if c.Liquidity == nil {
		c.Liquidity = map[string]LiquidityPosition{}
	}
	if c.NFTs == nil {
		c.NFTs = map[string]NFTHolding{}
	}

	c.Rigs = slices.Clone(s.Rigs)
	c.Bots = slices.Clone(s.Bots)
	for i, b := range c.Bots {
		if b.StartTime != nil {
			t := *b.StartTime
			c.Bots[i].StartTime = &t
		}
	}
	c.Transactions = slices.Clone(s.Transactions)
	c.News = slices.Clone(s.News)
	for i, n := range c.News {
		c.News[i].AffectedAssets = slices.Clone(n.AffectedAssets)
	}
	c.Achievements = slices.Clone(s.Achievements)
	for i, a := range c.Achievements {
		if a.UnlockedAt != nil {
			t := *a.UnlockedAt
			c.Achievements[i].UnlockedAt = &t
		}
	}
	c.DailyChallenges = slices.Clone(s.DailyChallenges)
	return &c
}

// ActivityKind names a domain event that can advance daily challenges.
type ActivityKind string

const (
	ActivityTrade     ActivityKind = "trade"
	ActivityStake     ActivityKind = "stake"
	ActivityMine      ActivityKind = "mine"
	ActivityLiquidity ActivityKind = "liquidity"
	ActivityNFTBuy    ActivityKind = "nft_buy"
	ActivityBotDeploy ActivityKind = "bot_deploy"
)

// Activity is emitted by a successful ledger command or tick.
type Activity struct {
	Kind    ActivityKind
	AssetID string
	TxType  TxType
	Volume  decimal.Decimal // USD notional involved
}
