package game

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/catalog"
	"github.com/cryptotycoon/engine/internal/ledger"
	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/progression"
)

// DefaultStartingCash is the normal-difficulty bankroll.
var DefaultStartingCash = decimal.NewFromInt(10000)

// Options select the edition and bankroll of a new game.
type Options struct {
	Variant      model.Variant
	Difficulty   model.Difficulty
	StartingCash decimal.Decimal // zero means DefaultStartingCash
}

// NewState builds a fresh, not-yet-started game. Every asset is seeded with
// one history point at its catalog price.
func NewState(opts Options, now time.Time, sessionID string) *model.GameState {
	difficulty := opts.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyNormal
	}
	rules, mult := model.RulesetFor(opts.Variant).ApplyDifficulty(difficulty)

	cash := opts.StartingCash
	if !cash.IsPositive() {
		cash = DefaultStartingCash
	}
	cash = cash.Mul(mult)

	assets := catalog.Assets()
	for id, a := range assets {
		a.History = []model.PricePoint{{Price: a.Price.InexactFloat64(), Timestamp: now}}
		assets[id] = a
	}

	settings := model.DefaultSettings()
	settings.Difficulty = difficulty

	s := &model.GameState{
		Version:   model.SchemaVersion,
		SessionID: sessionID,
		Ruleset:   rules,
		Player: model.Player{
			Cash:         cash,
			StartingCash: cash,
			Level:        1,
		},
		Assets:          assets,
		Holdings:        map[string]model.Holding{},
		Staked:          map[string]model.StakedPosition{},
		Liquidity:       map[string]model.LiquidityPosition{},
		NFTs:            map[string]model.NFTHolding{},
		Achievements:    progression.Achievements(rules),
		DailyChallenges: progression.DailyChallenges(rules),
		MarketSentiment: model.Neutral,
		CurrentView:     "dashboard",
		Settings:        settings,
	}
	if rules.MiningEnabled {
		s.Rigs = catalog.MiningRigs()
	}
	if rules.BotsEnabled {
		s.Bots = catalog.TradingBots()
	}
	ledger.Revalue(s)
	s.DayStartValue = s.Player.TotalValue
	return s
}
