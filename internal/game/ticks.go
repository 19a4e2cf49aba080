package game

import (
	"errors"

	"github.com/cryptotycoon/engine/internal/indicator"
	"github.com/cryptotycoon/engine/internal/ledger"
	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/pricing"
)

// Tick names, also used as metric labels.
const (
	TickPrice   = "price"
	TickStaking = "staking"
	TickMining  = "mining"
	TickDeFi    = "defi"
	TickBots    = "bots"
	TickNews    = "news"
)

// referenceAsset is the series every other asset's correlation is measured
// against.
const referenceAsset = "BTC"

// Ticks are silent no-ops when the session is not started or the ruleset
// disables the feature they drive.

// TickPrices advances the market sentiment and every asset one step, then
// refreshes indicators and valuation.
func (e *Engine) TickPrices() error {
	return e.tick(TickPrice, func(s *model.GameState) (outcome, error) {
		r := s.Ruleset
		next, consumed := pricing.NextSentiment(s.MarketSentiment, s.PendingSentimentBias, r.SentimentShiftProb, e.rng)
		s.MarketSentiment = next
		if consumed {
			s.PendingSentimentBias = ""
		}

		p := pricing.ParamsFor(r)
		now := e.clock.Now()
		ids := s.AssetIDs()
		for _, id := range ids {
			s.Assets[id] = pricing.Advance(s.Assets[id], s.MarketSentiment, p, e.rng, now)
		}

		if r.IndicatorsEnabled {
			var ref []float64
			if btc, ok := s.Assets[referenceAsset]; ok {
				ref = indicator.Closes(btc.History)
			}
			for _, id := range ids {
				a := s.Assets[id]
				if id == referenceAsset {
					indicator.Apply(&a, nil)
				} else {
					indicator.Apply(&a, ref)
				}
				s.Assets[id] = a
			}
		}
		ledger.Revalue(s)
		return did()
	})
}

// TickStaking pays out staking rewards when there is anything staked.
func (e *Engine) TickStaking() error {
	return e.tick(TickStaking, func(s *model.GameState) (outcome, error) {
		if !s.Ruleset.StakingEnabled || len(s.Staked) == 0 {
			return outcome{}, errSkip
		}
		if _, err := e.ledger.ClaimStakingRewards(s); err != nil {
			return outcome{}, err
		}
		return did()
	})
}

// TickMining runs one mining payout.
func (e *Engine) TickMining() error {
	return e.tick(TickMining, func(s *model.GameState) (outcome, error) {
		if !s.Ruleset.MiningEnabled {
			return outcome{}, errSkip
		}
		act, err := e.ledger.Mine(s)
		if err != nil {
			return outcome{}, err
		}
		return did(act)
	})
}

// TickDeFi accrues liquidity pool rewards.
func (e *Engine) TickDeFi() error {
	return e.tick(TickDeFi, func(s *model.GameState) (outcome, error) {
		if !s.Ruleset.DefiEnabled || len(s.Liquidity) == 0 {
			return outcome{}, errSkip
		}
		if _, err := e.ledger.AccrueDeFiRewards(s); err != nil {
			return outcome{}, err
		}
		return did()
	})
}

// TickBots random-walks the performance of deployed bots.
func (e *Engine) TickBots() error {
	return e.tick(TickBots, func(s *model.GameState) (outcome, error) {
		if !s.Ruleset.BotsEnabled || !anyActive(s.Bots) {
			return outcome{}, errSkip
		}
		if err := e.ledger.AdvanceBots(s); err != nil {
			return outcome{}, err
		}
		return did()
	})
}

// TickNews rolls for a news headline.
func (e *Engine) TickNews() error {
	return e.tick(TickNews, func(s *model.GameState) (outcome, error) {
		item := e.feed.Tick(s)
		if item == nil {
			return outcome{}, errSkip
		}
		return outcome{news: item}, nil
	})
}

func (e *Engine) tick(name string, run func(s *model.GameState) (outcome, error)) error {
	_, err := e.apply(step{name: name, kind: UpdateTick, started: true, run: run})
	if errors.Is(err, errSkip) || errors.Is(err, ErrNotStarted) {
		return nil
	}
	return err
}

func anyActive(bots []model.TradingBot) bool {
	for _, b := range bots {
		if b.Active {
			return true
		}
	}
	return false
}
