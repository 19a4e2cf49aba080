package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
)

// ProvideLiquidity deposits amount units of an asset, paid from cash at the
// current price, into the pool keyed by the asset ID.
func (l *Ledger) ProvideLiquidity(s *model.GameState, assetID string, amount decimal.Decimal) (model.Activity, error) {
	if err := requireFeature(s, "defi"); err != nil {
		return model.Activity{}, err
	}
	if err := requirePositive(amount); err != nil {
		return model.Activity{}, err
	}
	asset, err := lookupAsset(s, assetID)
	if err != nil {
		return model.Activity{}, err
	}
	value := amount.Mul(asset.Price)
	if value.GreaterThan(s.Player.Cash) {
		return model.Activity{}, reject(ErrInsufficientFunds, "value %s, cash %s", value, s.Player.Cash)
	}

	pool, ok := s.Liquidity[assetID]
	if !ok {
		pool = model.LiquidityPosition{AssetID: assetID, StartTime: l.clock.Now()}
	}
	if capacity := asset.LiquidityPoolSize; capacity.IsPositive() && pool.Value.Add(value).GreaterThan(capacity) {
		return model.Activity{}, reject(ErrPoolCapacity, "%s pool holds at most %s", assetID, capacity)
	}
	pool.Amount = pool.Amount.Add(amount)
	pool.Value = pool.Value.Add(value)
	s.Liquidity[assetID] = pool
	s.Player.Cash = s.Player.Cash.Sub(value)
	Revalue(s)
	return model.Activity{Kind: model.ActivityLiquidity, AssetID: assetID, Volume: value}, nil
}

// RemoveLiquidity withdraws percentage (0, 100] of a pool: that share of the
// deposit value and of the accrued rewards goes to cash. The rewards share
// also counts toward lifetime DeFi rewards. At 100 the pool is deleted.
func (l *Ledger) RemoveLiquidity(s *model.GameState, poolID string, percentage decimal.Decimal) (decimal.Decimal, error) {
	if err := requireFeature(s, "defi"); err != nil {
		return decimal.Zero, err
	}
	if !percentage.IsPositive() || percentage.GreaterThan(hundred) {
		return decimal.Zero, reject(ErrInvalidPercentage, "%s", percentage)
	}
	pool, ok := s.Liquidity[poolID]
	if !ok {
		return decimal.Zero, reject(ErrUnknownPool, "%q", poolID)
	}

	frac := percentage.Div(hundred)
	outValue := pool.Value.Mul(frac)
	outRewards := pool.Rewards.Mul(frac)
	if percentage.Equal(hundred) {
		outValue, outRewards = pool.Value, pool.Rewards
		delete(s.Liquidity, poolID)
	} else {
		pool.Amount = pool.Amount.Sub(pool.Amount.Mul(frac))
		pool.Value = pool.Value.Sub(outValue)
		pool.Rewards = pool.Rewards.Sub(outRewards)
		s.Liquidity[poolID] = pool
	}

	payout := outValue.Add(outRewards)
	s.Player.Cash = s.Player.Cash.Add(payout)
	s.Player.DefiRewards = s.Player.DefiRewards.Add(outRewards)
	Revalue(s)
	return payout, nil
}

// AccrueDeFiRewards adds value × DefiRewardRate to every pool's rewards and
// returns the total accrued.
func (l *Ledger) AccrueDeFiRewards(s *model.GameState) (decimal.Decimal, error) {
	if err := requireFeature(s, "defi"); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, id := range s.PoolIDs() {
		pool := s.Liquidity[id]
		r := pool.Value.Mul(s.Ruleset.DefiRewardRate)
		pool.Rewards = pool.Rewards.Add(r)
		s.Liquidity[id] = pool
		total = total.Add(r)
	}
	Revalue(s)
	return total, nil
}
