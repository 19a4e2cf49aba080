package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
)

// Stake moves amount units from the spot holding into the staked position.
// Added stake merges into an existing position without resetting its
// StartTime. The spot holding's cost basis travels with the units.
func (l *Ledger) Stake(s *model.GameState, assetID string, amount decimal.Decimal) (model.Activity, error) {
	if err := requireFeature(s, "staking"); err != nil {
		return model.Activity{}, err
	}
	if err := requirePositive(amount); err != nil {
		return model.Activity{}, err
	}
	asset, err := lookupAsset(s, assetID)
	if err != nil {
		return model.Activity{}, err
	}
	if !asset.CanStake {
		return model.Activity{}, reject(ErrNotStakeable, "%s", assetID)
	}
	h, ok := s.Holdings[assetID]
	if !ok || amount.GreaterThan(h.Amount) {
		return model.Activity{}, reject(ErrInsufficientHolding, "%s %s", amount, assetID)
	}
	if h.Leverage > 1 {
		return model.Activity{}, reject(ErrLeveragedStake, "%s at %dx", assetID, h.Leverage)
	}

	sp, ok := s.Staked[assetID]
	if ok {
		sp.CostBasis = mergeBasis(sp.Amount, sp.CostBasis, 1, amount, h.AvgBuyPrice, 1)
		sp.Amount = sp.Amount.Add(amount)
	} else {
		sp = model.StakedPosition{Amount: amount, CostBasis: h.AvgBuyPrice, StartTime: l.clock.Now()}
	}
	s.Staked[assetID] = sp

	h.Amount = h.Amount.Sub(amount)
	if h.Amount.IsZero() {
		delete(s.Holdings, assetID)
	} else {
		s.Holdings[assetID] = h
	}
	Revalue(s)
	return model.Activity{Kind: model.ActivityStake, AssetID: assetID, Volume: amount.Mul(asset.Price)}, nil
}

// Unstake moves amount units back to spot at the cost basis they were
// staked with. Unclaimed rewards on the unstaked units are forfeited.
func (l *Ledger) Unstake(s *model.GameState, assetID string, amount decimal.Decimal) error {
	if err := requireFeature(s, "staking"); err != nil {
		return err
	}
	if err := requirePositive(amount); err != nil {
		return err
	}
	if _, err := lookupAsset(s, assetID); err != nil {
		return err
	}
	sp, ok := s.Staked[assetID]
	if !ok || amount.GreaterThan(sp.Amount) {
		return reject(ErrInsufficientStake, "%s %s", amount, assetID)
	}

	h, ok := s.Holdings[assetID]
	if ok {
		h.AvgBuyPrice = mergeBasis(h.Amount, h.AvgBuyPrice, h.Leverage, amount, sp.CostBasis, 1)
		h.Amount = h.Amount.Add(amount)
	} else {
		h = model.Holding{Amount: amount, AvgBuyPrice: sp.CostBasis, Leverage: 1, OpenedAt: l.clock.Now()}
	}
	s.Holdings[assetID] = h

	sp.Amount = sp.Amount.Sub(amount)
	if sp.Amount.IsZero() {
		delete(s.Staked, assetID)
	} else {
		s.Staked[assetID] = sp
	}
	Revalue(s)
	return nil
}

// AccruedStakingReward is amount × price × APY × years since StartTime.
func AccruedStakingReward(sp model.StakedPosition, a model.Asset, now time.Time) decimal.Decimal {
	elapsed := now.Sub(sp.StartTime)
	if elapsed <= 0 {
		return decimal.Zero
	}
	years := decimal.NewFromInt(int64(elapsed)).Div(year)
	return sp.Amount.Mul(a.Price).Mul(a.StakingRewardRate).Mul(years)
}

// ClaimStakingRewards pays accrued rewards on every staked position to cash
// and the lifetime counter, then restarts accrual. Rewards do not compound
// into the staked amount. It returns the total paid.
func (l *Ledger) ClaimStakingRewards(s *model.GameState) (decimal.Decimal, error) {
	if err := requireFeature(s, "staking"); err != nil {
		return decimal.Zero, err
	}
	now := l.clock.Now()
	total := decimal.Zero
	for _, id := range s.StakedIDs() {
		sp := s.Staked[id]
		total = total.Add(AccruedStakingReward(sp, s.Assets[id], now))
		sp.StartTime = now
		s.Staked[id] = sp
	}
	s.Player.Cash = s.Player.Cash.Add(total)
	s.Player.StakingRewards = s.Player.StakingRewards.Add(total)
	Revalue(s)
	return total, nil
}
