// Package model defines the core domain types shared across the simulation
// engine. Ledger money (cash, amounts, cost basis, rewards) uses
// shopspring/decimal; price-model and indicator outputs are float64 chart
// data converted at the ledger boundary.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sentiment is a coarse market-wide or per-asset bias.
type Sentiment string

const (
	Bullish Sentiment = "bullish"
	Bearish Sentiment = "bearish"
	Neutral Sentiment = "neutral"
)

// Sentiments lists every valid sentiment in draw order.
var Sentiments = []Sentiment{Bullish, Bearish, Neutral}

// Valid reports whether s is one of the known sentiments.
func (s Sentiment) Valid() bool {
	return s == Bullish || s == Bearish || s == Neutral
}

// PricePoint is one entry of an asset's rolling price history.
type PricePoint struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Candle is a synthesized OHLCV record. Cosmetic only: nothing reads it back
// into the price model.
type Candle struct {
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// BollingerBands holds SMA ± 2σ.
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Asset is one tradable symbol. Price is always positive.
type Asset struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Volatility float64         `json:"volatility"` // fraction, fixed per asset
	Trend      float64         `json:"trend"`      // signed drift bias
	Change24h  float64         `json:"change_24h"`
	Volume24h  float64         `json:"volume_24h"`

	History       []PricePoint `json:"history"`
	CandleHistory []Candle     `json:"candle_history,omitempty"`

	RSI            float64        `json:"rsi"`
	MACD           float64        `json:"macd"`
	EMA            float64        `json:"ema"`
	Bollinger      BollingerBands `json:"bollinger_bands"`
	TechnicalScore float64        `json:"technical_score"`
	CorrelationBTC float64        `json:"correlation_btc"`
	Sentiment      Sentiment      `json:"sentiment"`

	CanStake          bool            `json:"can_stake"`
	CanMine           bool            `json:"can_mine"`
	StakingRewardRate decimal.Decimal `json:"staking_reward_rate"` // APY fraction
	MiningDifficulty  decimal.Decimal `json:"mining_difficulty"`
	MiningEfficiency  decimal.Decimal `json:"mining_efficiency"`
	LiquidityPoolSize decimal.Decimal `json:"liquidity_pool_size"`
}

// Holding is a spot position. Removed from the holdings map when Amount
// reaches zero.
type Holding struct {
	Amount      decimal.Decimal `json:"amount"`
	AvgBuyPrice decimal.Decimal `json:"avg_buy_price"`
	Leverage    int             `json:"leverage"` // fixed when the position opens
	OpenedAt    time.Time       `json:"opened_at"`
}

// StakedPosition accrues rewards from StartTime; rewards are computed on
// demand when claimed.
type StakedPosition struct {
	Amount    decimal.Decimal `json:"amount"`
	CostBasis decimal.Decimal `json:"cost_basis"` // carried from the spot holding
	StartTime time.Time       `json:"start_time"`
}

// LiquidityPosition is a DeFi pool deposit keyed by asset ID.
type LiquidityPosition struct {
	AssetID   string          `json:"asset_id"`
	Amount    decimal.Decimal `json:"amount"`
	Value     decimal.Decimal `json:"value"` // USD at deposit time
	Rewards   decimal.Decimal `json:"rewards"`
	StartTime time.Time       `json:"start_time"`
}

// TxType is the side of a transaction.
type TxType string

const (
	TxBuy  TxType = "buy"
	TxSell TxType = "sell"
)

// Transaction is an immutable trade record. Total is signed: negative for
// buys (cash out), positive for sells (cash in).
type Transaction struct {
	ID        string          `json:"id"`
	Type      TxType          `json:"type"`
	AssetID   string          `json:"asset_id"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	Leverage  int             `json:"leverage"`
	Total     decimal.Decimal `json:"total"`
	Profit    decimal.Decimal `json:"profit"` // realized P&L, sells only
	Timestamp time.Time       `json:"timestamp"`
}

// Player holds cash, derived valuation and lifetime counters. The reward
// counters never decrease.
type Player struct {
	Cash               decimal.Decimal `json:"cash"`
	StartingCash       decimal.Decimal `json:"starting_cash"`
	TotalValue         decimal.Decimal `json:"total_value"`
	TotalProfit        decimal.Decimal `json:"total_profit"`
	TotalProfitPercent decimal.Decimal `json:"total_profit_percent"`
	TradesCount        int             `json:"trades_count"`
	Experience         decimal.Decimal `json:"experience"`
	Level              int             `json:"level"`
	StakingRewards     decimal.Decimal `json:"staking_rewards"`
	MiningRewards      decimal.Decimal `json:"mining_rewards"`
	DefiRewards        decimal.Decimal `json:"defi_rewards"`
	BotRewards         decimal.Decimal `json:"bot_rewards"`
	NFTValue           decimal.Decimal `json:"nft_value"`
	LastLoginDate      string          `json:"last_login_date"`
}

// Achievement is a one-shot unlock. Unlocked only ever goes false→true.
type Achievement struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Reward      decimal.Decimal `json:"reward"`
	Unlocked    bool            `json:"unlocked"`
	UnlockedAt  *time.Time      `json:"unlocked_at,omitempty"`
}

// ChallengeKind selects which domain activity advances a daily challenge.
type ChallengeKind string

const (
	ChallengeTrades    ChallengeKind = "trading"
	ChallengeProfit    ChallengeKind = "profit"
	ChallengeDiversify ChallengeKind = "portfolio"
	ChallengePatience  ChallengeKind = "patience"
	ChallengeVolume    ChallengeKind = "volume"
	ChallengeStaking   ChallengeKind = "staking"
	ChallengeMining    ChallengeKind = "mining"
	ChallengeDeFi      ChallengeKind = "defi"
	ChallengeNFT       ChallengeKind = "nft"
	ChallengeBots      ChallengeKind = "ai"
)

// DailyChallenge progress only grows within a day; the whole set resets on
// calendar-day rollover.
type DailyChallenge struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Kind        ChallengeKind   `json:"type"`
	Progress    decimal.Decimal `json:"progress"`
	Target      decimal.Decimal `json:"target"`
	Reward      decimal.Decimal `json:"reward"`
	Completed   bool            `json:"completed"`
}

// TradingBot is a catalog entry plus its runtime state.
type TradingBot struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Strategy       string          `json:"strategy"`
	RiskLevel      string          `json:"risk_level"`
	MinInvestment  decimal.Decimal `json:"min_investment"`
	ExpectedReturn float64         `json:"expected_return"`
	Active         bool            `json:"active"`
	Investment     decimal.Decimal `json:"investment"`
	Performance    float64         `json:"performance"` // signed fractional return
	Trades         int             `json:"trades"`
	StartTime      *time.Time      `json:"start_time,omitempty"`
}

// Value is what stopping the bot would return right now.
func (b TradingBot) Value() decimal.Decimal {
	if !b.Active {
		return decimal.Zero
	}
	return b.Investment.Mul(decimal.NewFromFloat(1 + b.Performance))
}

// MiningRig is a hardware type and how many the player owns.
type MiningRig struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	HashRate         decimal.Decimal `json:"hash_rate"`
	PowerConsumption decimal.Decimal `json:"power_consumption"` // watts
	Cost             decimal.Decimal `json:"cost"`
	Owned            int             `json:"owned"`
	Efficiency       float64         `json:"efficiency"`
}

// NFTCollection is a static catalog entry.
type NFTCollection struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	FloorPrice decimal.Decimal `json:"floor_price"`
	Items      int             `json:"items"`
	Rarity     string          `json:"rarity"`
	Category   string          `json:"category"`
}

// NFTHolding is one owned NFT.
type NFTHolding struct {
	Key           string          `json:"key"`
	CollectionID  string          `json:"collection_id"`
	NFTID         string          `json:"nft_id"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	PurchasedAt   time.Time       `json:"purchased_at"`
}

// Impact is the direction of a news item.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
)

// NewsItem is an emitted market event.
type NewsItem struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Impact         Impact    `json:"impact"`
	AffectedAssets []string  `json:"affected_assets"`
	SentimentBias  Sentiment `json:"sentiment_bias"`
	Timestamp      time.Time `json:"timestamp"`
}
