package ledger

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/risk"
)

// BuyCost is amount × price × leverage × (1 + fee).
func BuyCost(amount, price decimal.Decimal, leverage int, fee decimal.Decimal) decimal.Decimal {
	return amount.Mul(price).Mul(decimal.NewFromInt(int64(leverage))).Mul(one.Add(fee))
}

// SellRevenue is amount × price × leverage × (1 − fee).
func SellRevenue(amount, price decimal.Decimal, leverage int, fee decimal.Decimal) decimal.Decimal {
	return amount.Mul(price).Mul(decimal.NewFromInt(int64(leverage))).Mul(one.Sub(fee))
}

// Buy opens or adds to a spot position. leverage 0 means 1x. An existing
// position keeps the leverage it was opened with; the new units are folded
// into its basis in proportion to their leveraged notional.
func (l *Ledger) Buy(s *model.GameState, assetID string, amount decimal.Decimal, leverage int) (model.Activity, error) {
	if err := requirePositive(amount); err != nil {
		return model.Activity{}, err
	}
	asset, err := lookupAsset(s, assetID)
	if err != nil {
		return model.Activity{}, err
	}
	leverage = risk.Normalize(leverage)
	if err := risk.NewLeverageLimiter(s.Ruleset).Check(leverage); err != nil {
		return model.Activity{}, invalid("invalid leverage", err)
	}

	cost := BuyCost(amount, asset.Price, leverage, s.Ruleset.FeeRate)
	if cost.GreaterThan(s.Player.Cash) {
		return model.Activity{}, reject(ErrInsufficientFunds, "cost %s, cash %s", cost, s.Player.Cash)
	}

	now := l.clock.Now()
	h, ok := s.Holdings[assetID]
	if ok {
		h.AvgBuyPrice = mergeBasis(h.Amount, h.AvgBuyPrice, h.Leverage, amount, asset.Price, leverage)
		h.Amount = h.Amount.Add(amount)
	} else {
		h = model.Holding{Amount: amount, AvgBuyPrice: asset.Price, Leverage: leverage, OpenedAt: now}
	}
	s.Holdings[assetID] = h
	s.Player.Cash = s.Player.Cash.Sub(cost)

	l.recordTx(s, model.Transaction{
		Type:      model.TxBuy,
		AssetID:   assetID,
		Amount:    amount,
		Price:     asset.Price,
		Leverage:  leverage,
		Total:     cost.Neg(),
		Profit:    decimal.Zero,
		Timestamp: now,
	})
	Revalue(s)

	slog.Debug("buy applied",
		"asset", assetID,
		"amount", amount.String(),
		"price", asset.Price.String(),
		"leverage", leverage,
		"cost", cost.String(),
	)
	return model.Activity{Kind: model.ActivityTrade, AssetID: assetID, TxType: model.TxBuy, Volume: cost}, nil
}

// Sell closes part or all of a spot position at the position's leverage.
// The holding is removed when its amount reaches zero.
func (l *Ledger) Sell(s *model.GameState, assetID string, amount decimal.Decimal) (model.Activity, error) {
	if err := requirePositive(amount); err != nil {
		return model.Activity{}, err
	}
	asset, err := lookupAsset(s, assetID)
	if err != nil {
		return model.Activity{}, err
	}
	h, ok := s.Holdings[assetID]
	if !ok || amount.GreaterThan(h.Amount) {
		return model.Activity{}, reject(ErrInsufficientHolding, "%s %s", amount, assetID)
	}

	revenue := SellRevenue(amount, asset.Price, h.Leverage, s.Ruleset.FeeRate)
	basis := amount.Mul(h.AvgBuyPrice).Mul(decimal.NewFromInt(int64(h.Leverage)))
	profit := revenue.Sub(basis)

	h.Amount = h.Amount.Sub(amount)
	if h.Amount.IsZero() {
		delete(s.Holdings, assetID)
	} else {
		s.Holdings[assetID] = h
	}
	s.Player.Cash = s.Player.Cash.Add(revenue)

	now := l.clock.Now()
	s.LastSellAt = now
	l.recordTx(s, model.Transaction{
		Type:      model.TxSell,
		AssetID:   assetID,
		Amount:    amount,
		Price:     asset.Price,
		Leverage:  h.Leverage,
		Total:     revenue,
		Profit:    profit,
		Timestamp: now,
	})
	Revalue(s)

	slog.Debug("sell applied",
		"asset", assetID,
		"amount", amount.String(),
		"price", asset.Price.String(),
		"revenue", revenue.String(),
		"profit", profit.String(),
	)
	return model.Activity{Kind: model.ActivityTrade, AssetID: assetID, TxType: model.TxSell, Volume: revenue}, nil
}

// mergeBasis folds a buy of (a, p) at leverage l into a position of (a0, p0)
// opened at leverage L. The position keeps L, so the basis is the combined
// leveraged notional divided by (a0+a)·L.
func mergeBasis(a0, p0 decimal.Decimal, posLev int, a, p decimal.Decimal, lev int) decimal.Decimal {
	total := a0.Add(a)
	if total.IsZero() {
		return p
	}
	L := decimal.NewFromInt(int64(posLev))
	notional := a0.Mul(p0).Mul(L).Add(a.Mul(p).Mul(decimal.NewFromInt(int64(lev))))
	return notional.Div(total.Mul(L))
}
