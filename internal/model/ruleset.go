package model

import "github.com/shopspring/decimal"

// Variant names one of the three game editions.
type Variant string

const (
	VariantBasic    Variant = "basic"
	VariantEnhanced Variant = "enhanced"
	VariantUltra    Variant = "ultra"
)

// Ruleset selects which command handlers and tick schedules are active and
// carries the numeric knobs that differed between editions.
type Ruleset struct {
	Variant           Variant `json:"variant"`
	LeverageEnabled   bool    `json:"leverage_enabled"`
	MaxLeverage       int     `json:"max_leverage"`
	StakingEnabled    bool    `json:"staking_enabled"`
	MiningEnabled     bool    `json:"mining_enabled"`
	DefiEnabled       bool    `json:"defi_enabled"`
	BotsEnabled       bool    `json:"bots_enabled"`
	NFTEnabled        bool    `json:"nft_enabled"`
	IndicatorsEnabled bool    `json:"indicators_enabled"`
	CandlesEnabled    bool    `json:"candles_enabled"`
	ChallengesEnabled bool    `json:"challenges_enabled"`

	FeeRate            decimal.Decimal `json:"fee_rate"`
	HistoryCap         int             `json:"history_cap"`
	CandleCap          int             `json:"candle_cap"`
	TransactionCap     int             `json:"transaction_cap"`
	NewsCap            int             `json:"news_cap"`
	SentimentShiftProb float64         `json:"sentiment_shift_prob"`
	SentimentInfluence float64         `json:"sentiment_influence"`
	NewsProbability    float64         `json:"news_probability"`
	PowerCostPerKWh    decimal.Decimal `json:"power_cost_per_kwh"`
	DefiRewardRate     decimal.Decimal `json:"defi_reward_rate"` // per DeFi tick
	VolatilityScale    float64         `json:"volatility_scale"`
}

// Has reports whether the named feature is enabled. Unknown names are
// always enabled so catalog entries without a requirement pass.
func (r Ruleset) Has(feature string) bool {
	switch feature {
	case "leverage":
		return r.LeverageEnabled
	case "staking":
		return r.StakingEnabled
	case "mining":
		return r.MiningEnabled
	case "defi":
		return r.DefiEnabled
	case "bots":
		return r.BotsEnabled
	case "nft":
		return r.NFTEnabled
	case "challenges":
		return r.ChallengesEnabled
	default:
		return true
	}
}

// RulesetFor returns the preset for a variant. Unknown variants fall back to
// the ultra preset.
func RulesetFor(v Variant) Ruleset {
	base := Ruleset{
		Variant:         v,
		MaxLeverage:     1,
		FeeRate:         decimal.NewFromFloat(0.001),
		HistoryCap:      50,
		CandleCap:       100,
		TransactionCap:  100,
		NewsCap:         10,
		NewsProbability: 0.10,
		PowerCostPerKWh: decimal.NewFromFloat(0.12),
		DefiRewardRate:  decimal.NewFromFloat(0.0001),
		VolatilityScale: 1,
	}
	switch v {
	case VariantBasic:
		return base
	case VariantEnhanced:
		base.LeverageEnabled = true
		base.MaxLeverage = 5
		base.StakingEnabled = true
		base.IndicatorsEnabled = true
		base.ChallengesEnabled = true
		base.SentimentShiftProb = 0.05
		base.SentimentInfluence = 0.001
		base.NewsProbability = 0.08
		return base
	default:
		base.Variant = VariantUltra
		base.LeverageEnabled = true
		base.MaxLeverage = 5
		base.StakingEnabled = true
		base.MiningEnabled = true
		base.DefiEnabled = true
		base.BotsEnabled = true
		base.NFTEnabled = true
		base.IndicatorsEnabled = true
		base.CandlesEnabled = true
		base.ChallengesEnabled = true
		base.HistoryCap = 100
		base.SentimentShiftProb = 0.03
		base.SentimentInfluence = 0.002
		base.NewsProbability = 0.08
		return base
	}
}

// Difficulty adjusts starting cash, fees and volatility.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// ApplyDifficulty scales the ruleset and returns the starting cash multiplier.
func (r Ruleset) ApplyDifficulty(d Difficulty) (Ruleset, decimal.Decimal) {
	switch d {
	case DifficultyEasy:
		r.FeeRate = r.FeeRate.Div(decimal.NewFromInt(2))
		r.VolatilityScale = 0.75
		return r, decimal.NewFromInt(2)
	case DifficultyHard:
		r.FeeRate = r.FeeRate.Mul(decimal.NewFromInt(2))
		r.VolatilityScale = 1.5
		return r, decimal.NewFromFloat(0.5)
	default:
		return r, decimal.NewFromInt(1)
	}
}
