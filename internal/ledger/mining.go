package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
)

// HashRate is Σ hashRate × owned over all rigs.
func HashRate(rigs []model.MiningRig) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rigs {
		total = total.Add(r.HashRate.Mul(decimal.NewFromInt(int64(r.Owned))))
	}
	return total
}

// PowerDraw is the total consumption of owned rigs in watts.
func PowerDraw(rigs []model.MiningRig) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rigs {
		total = total.Add(r.PowerConsumption.Mul(decimal.NewFromInt(int64(r.Owned))))
	}
	return total
}

// MiningYield is what one mining tick produces before power costs:
// Σ over mineable assets of hashRate × efficiency × price / difficulty.
func MiningYield(s *model.GameState) decimal.Decimal {
	hash := HashRate(s.Rigs)
	reward := decimal.Zero
	for _, id := range s.AssetIDs() {
		a := s.Assets[id]
		if !a.CanMine || !a.MiningDifficulty.IsPositive() {
			continue
		}
		reward = reward.Add(hash.Mul(a.MiningEfficiency).Mul(a.Price).Div(a.MiningDifficulty))
	}
	return reward
}

// Mine runs one mining payout. Power cost is kW × hours since the previous
// payout × PowerCostPerKWh; the first payout of a session measures from the
// session start. Net reward is floored at zero and credited to cash and the
// lifetime counter.
func (l *Ledger) Mine(s *model.GameState) (model.Activity, error) {
	if err := requireFeature(s, "mining"); err != nil {
		return model.Activity{}, err
	}
	now := l.clock.Now()
	since := s.LastMiningAt
	if since.IsZero() {
		since = s.SessionStartedAt
	}
	hours := decimal.Zero
	if !since.IsZero() && now.After(since) {
		hours = decimal.NewFromInt(int64(now.Sub(since))).Div(hour)
	}
	powerCost := PowerDraw(s.Rigs).Div(kilo).Mul(hours).Mul(s.Ruleset.PowerCostPerKWh)

	net := MiningYield(s).Sub(powerCost)
	if net.IsNegative() {
		net = decimal.Zero
	}
	s.Player.Cash = s.Player.Cash.Add(net)
	s.Player.MiningRewards = s.Player.MiningRewards.Add(net)
	s.LastMiningAt = now
	Revalue(s)
	return model.Activity{Kind: model.ActivityMine, Volume: net}, nil
}

// BuyMiningHardware buys one unit of a rig type.
func (l *Ledger) BuyMiningHardware(s *model.GameState, rigID string) error {
	if err := requireFeature(s, "mining"); err != nil {
		return err
	}
	for i, r := range s.Rigs {
		if r.ID != rigID {
			continue
		}
		if r.Cost.GreaterThan(s.Player.Cash) {
			return reject(ErrInsufficientFunds, "cost %s, cash %s", r.Cost, s.Player.Cash)
		}
		s.Player.Cash = s.Player.Cash.Sub(r.Cost)
		s.Rigs[i].Owned++
		Revalue(s)
		return nil
	}
	return reject(ErrUnknownRig, "%q", rigID)
}
