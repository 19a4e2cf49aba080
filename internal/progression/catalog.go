package progression

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
)

// HodlDuration is how long a position must stay open for Diamond Hands.
const HodlDuration = 5 * time.Minute

type achievementDef struct {
	model.Achievement
	requires string
	met      func(s *model.GameState, now time.Time) bool
}

func usd(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func atLeast(get func(p model.Player) decimal.Decimal, v int64) func(*model.GameState, time.Time) bool {
	return func(s *model.GameState, _ time.Time) bool {
		return get(s.Player).GreaterThanOrEqual(usd(v))
	}
}

func totalValue(p model.Player) decimal.Decimal  { return p.TotalValue }
func totalProfit(p model.Player) decimal.Decimal { return p.TotalProfit }

var achievementDefs = []achievementDef{
	{
		Achievement: model.Achievement{ID: "first_trade", Name: "First Trade", Description: "Make your first trade", Category: "trading", Reward: usd(50)},
		met:         func(s *model.GameState, _ time.Time) bool { return s.Player.TradesCount >= 1 },
	},
	{
		Achievement: model.Achievement{ID: "profit_1k", Name: "Profit Maker", Description: "Make $1,000 profit", Category: "profit", Reward: usd(100)},
		met:         atLeast(totalProfit, 1_000),
	},
	{
		Achievement: model.Achievement{ID: "portfolio_25k", Name: "Growing Portfolio", Description: "Reach $25,000 total value", Category: "wealth", Reward: usd(250)},
		met:         atLeast(totalValue, 25_000),
	},
	{
		Achievement: model.Achievement{ID: "hodler", Name: "Diamond Hands", Description: "Hold a position for 5 minutes", Category: "patience", Reward: usd(75)},
		met: func(s *model.GameState, now time.Time) bool {
			for _, h := range s.Holdings {
				if now.Sub(h.OpenedAt) >= HodlDuration {
					return true
				}
			}
			return false
		},
	},
	{
		Achievement: model.Achievement{ID: "day_trader", Name: "Day Trader", Description: "Make 10 trades in one session", Category: "trading", Reward: usd(150)},
		met:         func(s *model.GameState, _ time.Time) bool { return s.SessionTrades >= 10 },
	},
	{
		Achievement: model.Achievement{ID: "whale", Name: "Crypto Whale", Description: "Reach $100,000 total value", Category: "wealth", Reward: usd(500)},
		met:         atLeast(totalValue, 100_000),
	},
	{
		Achievement: model.Achievement{ID: "leverage_master", Name: "Leverage Master", Description: "Close a 5x position at a profit", Category: "risk", Reward: usd(200)},
		requires:    "leverage",
		met: func(s *model.GameState, _ time.Time) bool {
			for _, tx := range s.Transactions {
				if tx.Type == model.TxSell && tx.Leverage >= 5 && tx.Profit.IsPositive() {
					return true
				}
			}
			return false
		},
	},
	{
		Achievement: model.Achievement{ID: "staking_pro", Name: "Staking Pro", Description: "Earn $100 from staking", Category: "passive", Reward: usd(100)},
		requires:    "staking",
		met:         atLeast(func(p model.Player) decimal.Decimal { return p.StakingRewards }, 100),
	},
	{
		Achievement: model.Achievement{ID: "challenge_master", Name: "Challenge Master", Description: "Complete 10 daily challenges", Category: "dedication", Reward: usd(300)},
		requires:    "challenges",
		met:         func(s *model.GameState, _ time.Time) bool { return s.ChallengesCompleted >= 10 },
	},
	{
		Achievement: model.Achievement{ID: "mining_tycoon", Name: "Mining Tycoon", Description: "Earn $1000 from mining", Category: "mining", Reward: usd(400)},
		requires:    "mining",
		met:         atLeast(func(p model.Player) decimal.Decimal { return p.MiningRewards }, 1_000),
	},
	{
		Achievement: model.Achievement{ID: "defi_pioneer", Name: "DeFi Pioneer", Description: "Earn $500 from DeFi", Category: "defi", Reward: usd(300)},
		requires:    "defi",
		met:         atLeast(func(p model.Player) decimal.Decimal { return p.DefiRewards }, 500),
	},
	{
		Achievement: model.Achievement{ID: "nft_mogul", Name: "NFT Mogul", Description: "Own $5000 worth of NFTs", Category: "nft", Reward: usd(600)},
		requires:    "nft",
		met:         atLeast(func(p model.Player) decimal.Decimal { return p.NFTValue }, 5_000),
	},
	{
		Achievement: model.Achievement{ID: "ai_overlord", Name: "AI Overlord", Description: "Earn $2000 from trading bots", Category: "ai", Reward: usd(800)},
		requires:    "bots",
		met:         atLeast(func(p model.Player) decimal.Decimal { return p.BotRewards }, 2_000),
	},
	{
		Achievement: model.Achievement{ID: "crypto_god", Name: "Crypto God", Description: "Reach $1,000,000 total value", Category: "legendary", Reward: usd(5_000)},
		met:         atLeast(totalValue, 1_000_000),
	},
}

var achievementIndex = func() map[string]int {
	m := make(map[string]int, len(achievementDefs))
	for i, a := range achievementDefs {
		m[a.ID] = i
	}
	return m
}()

type challengeDef struct {
	model.DailyChallenge
	requires string
}

var challengeDefs = []challengeDef{
	{DailyChallenge: model.DailyChallenge{ID: "daily_trader", Name: "Daily Trader", Description: "Make 3 trades today", Kind: model.ChallengeTrades, Target: usd(3), Reward: usd(100)}},
	{DailyChallenge: model.DailyChallenge{ID: "profit_target", Name: "Profit Target", Description: "Make $500 profit today", Kind: model.ChallengeProfit, Target: usd(500), Reward: usd(200)}},
	{DailyChallenge: model.DailyChallenge{ID: "diversify", Name: "Diversify", Description: "Hold 4 different cryptos", Kind: model.ChallengeDiversify, Target: usd(4), Reward: usd(150)}},
	{DailyChallenge: model.DailyChallenge{ID: "hodler", Name: "HODL Strong", Description: "Don't sell anything for 2 minutes", Kind: model.ChallengePatience, Target: usd(120), Reward: usd(75)}},
	{DailyChallenge: model.DailyChallenge{ID: "volume_trader", Name: "Volume Trader", Description: "Trade $5000 worth today", Kind: model.ChallengeVolume, Target: usd(5_000), Reward: usd(300)}},
	{DailyChallenge: model.DailyChallenge{ID: "staking_master", Name: "Staking Master", Description: "Stake $1000 worth of crypto", Kind: model.ChallengeStaking, Target: usd(1_000), Reward: usd(200)}, requires: "staking"},
	{DailyChallenge: model.DailyChallenge{ID: "mining_mogul", Name: "Mining Mogul", Description: "Mine $100 worth of crypto", Kind: model.ChallengeMining, Target: usd(100), Reward: usd(150)}, requires: "mining"},
	{DailyChallenge: model.DailyChallenge{ID: "defi_explorer", Name: "DeFi Explorer", Description: "Provide liquidity to 2 pools", Kind: model.ChallengeDeFi, Target: usd(2), Reward: usd(250)}, requires: "defi"},
	{DailyChallenge: model.DailyChallenge{ID: "nft_collector", Name: "NFT Collector", Description: "Buy 1 NFT", Kind: model.ChallengeNFT, Target: usd(1), Reward: usd(300)}, requires: "nft"},
	{DailyChallenge: model.DailyChallenge{ID: "bot_master", Name: "Bot Master", Description: "Deploy an AI trading bot", Kind: model.ChallengeBots, Target: usd(1), Reward: usd(400)}, requires: "bots"},
}

// Achievements returns the locked achievement set for a ruleset. Entries
// tied to a disabled feature are left out.
func Achievements(r model.Ruleset) []model.Achievement {
	out := make([]model.Achievement, 0, len(achievementDefs))
	for _, def := range achievementDefs {
		if def.requires == "" || r.Has(def.requires) {
			out = append(out, def.Achievement)
		}
	}
	return out
}

// DailyChallenges returns a fresh challenge set, or nil when the ruleset has
// challenges turned off.
func DailyChallenges(r model.Ruleset) []model.DailyChallenge {
	if !r.ChallengesEnabled {
		return nil
	}
	out := make([]model.DailyChallenge, 0, len(challengeDefs))
	for _, def := range challengeDefs {
		if def.requires == "" || r.Has(def.requires) {
			c := def.DailyChallenge
			c.Progress = decimal.Zero
			out = append(out, c)
		}
	}
	return out
}

// LevelThresholds are the experience totals at which levels 1..10 begin.
var LevelThresholds = []decimal.Decimal{
	usd(0), usd(100), usd(300), usd(600), usd(1_000),
	usd(1_500), usd(2_500), usd(4_000), usd(6_000), usd(10_000),
}

// Level is the number of thresholds experience has reached.
func Level(experience decimal.Decimal) int {
	level := 0
	for _, t := range LevelThresholds {
		if experience.GreaterThanOrEqual(t) {
			level++
		}
	}
	return max(level, 1)
}
