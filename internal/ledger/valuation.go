package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
)

// Breakdown is the portfolio value split by position class.
type Breakdown struct {
	Cash   decimal.Decimal `json:"cash"`
	Spot   decimal.Decimal `json:"spot"`
	Staked decimal.Decimal `json:"staked"`
	DeFi   decimal.Decimal `json:"defi"`
	NFT    decimal.Decimal `json:"nft"`
	Bots   decimal.Decimal `json:"bots"`
}

// Total sums every class.
func (b Breakdown) Total() decimal.Decimal {
	return b.Cash.Add(b.Spot).Add(b.Staked).Add(b.DeFi).Add(b.NFT).Add(b.Bots)
}

// Value computes the breakdown from scratch at current prices. Spot counts
// amount × price × leverage; DeFi counts deposit value plus accrued rewards;
// active bots count at investment × (1 + performance).
func Value(s *model.GameState) Breakdown {
	b := Breakdown{Cash: s.Player.Cash}
	for _, id := range s.HoldingIDs() {
		h := s.Holdings[id]
		b.Spot = b.Spot.Add(h.Amount.Mul(s.Assets[id].Price).Mul(decimal.NewFromInt(int64(h.Leverage))))
	}
	for _, id := range s.StakedIDs() {
		b.Staked = b.Staked.Add(s.Staked[id].Amount.Mul(s.Assets[id].Price))
	}
	for _, id := range s.PoolIDs() {
		p := s.Liquidity[id]
		b.DeFi = b.DeFi.Add(p.Value).Add(p.Rewards)
	}
	for _, n := range s.NFTs {
		b.NFT = b.NFT.Add(n.CurrentValue)
	}
	for _, bot := range s.Bots {
		b.Bots = b.Bots.Add(bot.Value())
	}
	return b
}

// Revalue re-derives totalValue, totalProfit, totalProfitPercent and
// nftValue from current prices. Nothing is accumulated incrementally.
func Revalue(s *model.GameState) {
	b := Value(s)
	s.Player.NFTValue = b.NFT
	s.Player.TotalValue = b.Total()
	s.Player.TotalProfit = s.Player.TotalValue.Sub(s.Player.StartingCash)
	if s.Player.StartingCash.IsPositive() {
		s.Player.TotalProfitPercent = s.Player.TotalProfit.Div(s.Player.StartingCash).Mul(hundred).Round(4)
	} else {
		s.Player.TotalProfitPercent = decimal.Zero
	}
}
