// Package progression evaluates achievements and daily challenges and
// grants their rewards exactly once.
//
// Achievements are predicates over the game state, re-checked on every
// evaluation pass; unlocking is one-way. Daily challenges advance from
// ledger activities and from state observed on each pass, and reset when
// the calendar day changes.
package progression

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/clock"
	"github.com/cryptotycoon/engine/internal/ledger"
	"github.com/cryptotycoon/engine/internal/model"
)

// Engine runs evaluation passes against a caller-owned state.
type Engine struct {
	clock clock.Clock
}

// New creates a progression engine reading time from c.
func New(c clock.Clock) *Engine {
	return &Engine{clock: c}
}

// grant credits a reward to cash and experience and recomputes level and
// valuation.
func grant(s *model.GameState, reward decimal.Decimal) {
	s.Player.Cash = s.Player.Cash.Add(reward)
	s.DayRewards = s.DayRewards.Add(reward)
	s.Player.Experience = s.Player.Experience.Add(reward)
	s.Player.Level = Level(s.Player.Experience)
	ledger.Revalue(s)
}

// EvaluateAchievements unlocks every achievement whose predicate now holds
// and returns the ones unlocked by this pass. Already-unlocked entries are
// never re-granted.
func (e *Engine) EvaluateAchievements(s *model.GameState) []model.Achievement {
	now := e.clock.Now()
	var unlocked []model.Achievement
	for i, a := range s.Achievements {
		if a.Unlocked {
			continue
		}
		idx, ok := achievementIndex[a.ID]
		if !ok || !achievementDefs[idx].met(s, now) {
			continue
		}
		at := now
		a.Unlocked = true
		a.UnlockedAt = &at
		s.Achievements[i] = a
		grant(s, a.Reward)
		unlocked = append(unlocked, a)
		slog.Info("achievement unlocked", "id", a.ID, "reward", a.Reward.String())
	}
	return unlocked
}

// Record advances daily challenges from one ledger activity and returns any
// challenges it completed.
func (e *Engine) Record(s *model.GameState, act model.Activity) []model.DailyChallenge {
	for i := range s.DailyChallenges {
		c := &s.DailyChallenges[i]
		if c.Completed {
			continue
		}
		switch {
		case c.Kind == model.ChallengeTrades && act.Kind == model.ActivityTrade:
			c.Progress = c.Progress.Add(decimal.NewFromInt(1))
		case c.Kind == model.ChallengeVolume && act.Kind == model.ActivityTrade:
			c.Progress = c.Progress.Add(act.Volume.Abs())
		case c.Kind == model.ChallengeStaking && act.Kind == model.ActivityStake:
			c.Progress = c.Progress.Add(act.Volume)
		case c.Kind == model.ChallengeMining && act.Kind == model.ActivityMine:
			c.Progress = c.Progress.Add(act.Volume)
		case c.Kind == model.ChallengeNFT && act.Kind == model.ActivityNFTBuy:
			c.Progress = c.Progress.Add(decimal.NewFromInt(1))
		case c.Kind == model.ChallengeBots && act.Kind == model.ActivityBotDeploy:
			c.Progress = c.Progress.Add(decimal.NewFromInt(1))
		}
	}
	return e.Observe(s)
}

// Observe raises the state-derived challenges (profit, diversification,
// patience, pools) to their current readings, then completes any challenge
// that has reached its target. Progress never decreases within a day.
func (e *Engine) Observe(s *model.GameState) []model.DailyChallenge {
	now := e.clock.Now()
	for i := range s.DailyChallenges {
		c := &s.DailyChallenges[i]
		if c.Completed {
			continue
		}
		var reading decimal.Decimal
		switch c.Kind {
		case model.ChallengeProfit:
			// payouts are not trading profit
			reading = s.Player.TotalValue.Sub(s.DayStartValue).Sub(s.DayRewards)
		case model.ChallengeDiversify:
			reading = decimal.NewFromInt(int64(len(s.Holdings)))
		case model.ChallengeDeFi:
			reading = decimal.NewFromInt(int64(len(s.Liquidity)))
		case model.ChallengePatience:
			since := s.DayStartedAt
			if s.LastSellAt.After(since) {
				since = s.LastSellAt
			}
			if !since.IsZero() && now.After(since) {
				reading = decimal.NewFromInt(int64(now.Sub(since).Seconds()))
			}
		default:
			continue
		}
		if reading.GreaterThan(c.Progress) {
			c.Progress = reading
		}
	}
	return e.complete(s)
}

func (e *Engine) complete(s *model.GameState) []model.DailyChallenge {
	var done []model.DailyChallenge
	for i := range s.DailyChallenges {
		c := &s.DailyChallenges[i]
		if c.Completed || c.Progress.LessThan(c.Target) {
			continue
		}
		c.Completed = true
		s.ChallengesCompleted++
		grant(s, c.Reward)
		done = append(done, *c)
		slog.Info("daily challenge completed", "id", c.ID, "reward", c.Reward.String())
	}
	return done
}

// RolloverDay resets the daily challenges when the calendar day differs from
// the player's last login day. It returns true if a reset happened.
func (e *Engine) RolloverDay(s *model.GameState) bool {
	now := e.clock.Now()
	today := clock.DayKey(now)
	if s.Player.LastLoginDate == today {
		return false
	}
	s.DailyChallenges = DailyChallenges(s.Ruleset)
	s.Player.LastLoginDate = today
	s.DayStartValue = s.Player.TotalValue
	s.DayStartedAt = now
	s.DayRewards = decimal.Zero
	slog.Info("daily challenges reset", "day", today)
	return true
}
