package ledger

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/catalog"
	"github.com/cryptotycoon/engine/internal/clock"
	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/random"
	"github.com/cryptotycoon/engine/internal/risk"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expectDec(t *testing.T, name, want string, got decimal.Decimal) {
	t.Helper()
	if !d(want).Equal(got) {
		t.Errorf("%s: expected %s, got %s", name, want, got)
	}
}

func expectErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("expected %v, got %v", target, err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newState(v model.Variant, cash string) *model.GameState {
	s := &model.GameState{
		Version:          model.SchemaVersion,
		Ruleset:          model.RulesetFor(v),
		Player:           model.Player{Cash: d(cash), StartingCash: d(cash)},
		Assets:           catalog.Assets(),
		Holdings:         map[string]model.Holding{},
		Staked:           map[string]model.StakedPosition{},
		Liquidity:        map[string]model.LiquidityPosition{},
		NFTs:             map[string]model.NFTHolding{},
		Rigs:             catalog.MiningRigs(),
		Bots:             catalog.TradingBots(),
		SessionStartedAt: t0,
	}
	Revalue(s)
	return s
}

func newLedger(draws ...float64) (*Ledger, *clock.Manual) {
	clk := clock.NewManual(t0)
	return New(clk, random.NewFixed(draws...)), clk
}

func setPrice(s *model.GameState, id, price string) {
	a := s.Assets[id]
	a.Price = d(price)
	s.Assets[id] = a
}

// --- Spot trading ---

func TestBuySell_RoundTripScenario(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "10000")

	_, err := l.Buy(s, "BTC", d("0.1"), 1)
	must(t, err)
	expectDec(t, "cash after buy", "5495.5", s.Player.Cash)
	h, ok := s.Holdings["BTC"]
	if !ok {
		t.Fatal("expected BTC holding after buy")
	}
	expectDec(t, "amount", "0.1", h.Amount)
	expectDec(t, "avg buy price", "45000", h.AvgBuyPrice)
	if h.Leverage != 1 {
		t.Errorf("expected leverage 1, got %d", h.Leverage)
	}

	_, err = l.Sell(s, "BTC", d("0.1"))
	must(t, err)
	expectDec(t, "cash after sell", "9991", s.Player.Cash)
	if _, ok := s.Holdings["BTC"]; ok {
		t.Error("holding must be removed at zero")
	}

	if s.Player.TradesCount != 2 {
		t.Errorf("expected 2 trades, got %d", s.Player.TradesCount)
	}
	if len(s.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(s.Transactions))
	}
	if s.Transactions[0].Type != model.TxSell {
		t.Errorf("expected newest transaction first, got %s", s.Transactions[0].Type)
	}
	expectDec(t, "sell total", "4495.5", s.Transactions[0].Total)
	expectDec(t, "buy total", "-4504.5", s.Transactions[1].Total)
	expectDec(t, "total profit", "-9", s.Player.TotalProfit)
}

func TestBuySell_FeeConservation(t *testing.T) {
	tests := []struct {
		asset, price, amount string
		lev                  int
	}{
		{"BTC", "45000", "0.1", 1},
		{"ADA", "0.45", "3", 2},
		{"SHIB", "0.000025", "1234.5678", 5},
		{"ETH", "3200.17", "2.5", 3},
		{"SOL", "95", "0.00000001", 4},
	}
	for _, tt := range tests {
		t.Run(tt.asset, func(t *testing.T) {
			l, _ := newLedger()
			s := newState(model.VariantUltra, "1000000")
			setPrice(s, tt.asset, tt.price)
			start := s.Player.Cash

			_, err := l.Buy(s, tt.asset, d(tt.amount), tt.lev)
			must(t, err)
			notional := d(tt.amount).Mul(d(tt.price)).Mul(decimal.NewFromInt(int64(tt.lev)))
			fee := s.Ruleset.FeeRate
			if debit := start.Sub(s.Player.Cash); !debit.Equal(notional.Mul(one.Add(fee))) {
				t.Errorf("buy debit %s != notional·(1+f)", debit)
			}

			_, err = l.Sell(s, tt.asset, d(tt.amount))
			must(t, err)
			loss := start.Sub(s.Player.Cash)
			if !loss.Equal(notional.Mul(fee).Mul(decimal.NewFromInt(2))) {
				t.Errorf("round-trip loss %s != notional·2f", loss)
			}
			if len(s.Holdings) != 0 {
				t.Errorf("expected no holdings, got %v", s.Holdings)
			}
		})
	}
}

func TestBuy_InsufficientFundsIsNoOp(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "1000")
	before := s.Clone()

	_, err := l.Buy(s, "BTC", d("1"), 1)
	expectErr(t, err, ErrInsufficientFunds)
	if !IsValidation(err) {
		t.Errorf("expected validation error, got %T", err)
	}
	if !reflect.DeepEqual(before, s) {
		t.Error("rejected buy must leave the state untouched")
	}
}

func TestBuy_ExactCashSucceeds(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "4504.5")
	_, err := l.Buy(s, "BTC", d("0.1"), 1)
	must(t, err)
	if !s.Player.Cash.IsZero() {
		t.Errorf("expected zero cash, got %s", s.Player.Cash)
	}
}

func TestBuy_RejectsBadInput(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "10000")

	_, err := l.Buy(s, "BTC", d("0"), 1)
	expectErr(t, err, ErrInvalidAmount)
	_, err = l.Buy(s, "BTC", d("-1"), 1)
	expectErr(t, err, ErrInvalidAmount)
	_, err = l.Buy(s, "XRP", d("1"), 1)
	expectErr(t, err, ErrUnknownAsset)
	_, err = l.Buy(s, "ADA", d("1"), 6)
	expectErr(t, err, risk.ErrLeverageOutOfRange)
	if !IsValidation(err) {
		t.Errorf("leverage rejection should be a validation error, got %T", err)
	}

	basic := newState(model.VariantBasic, "10000")
	_, err = l.Buy(basic, "ADA", d("1"), 2)
	expectErr(t, err, risk.ErrLeverageDisabled)
	if len(s.Transactions) != 0 {
		t.Errorf("expected no transactions, got %d", len(s.Transactions))
	}
}

func TestBuy_LeverageMergeKeepsOpeningLeverage(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "1000000")

	_, err := l.Buy(s, "BTC", d("1"), 2)
	must(t, err)
	setPrice(s, "BTC", "50000")
	_, err = l.Buy(s, "BTC", d("1"), 1)
	must(t, err)

	h := s.Holdings["BTC"]
	if h.Leverage != 2 {
		t.Errorf("expected opening leverage 2, got %d", h.Leverage)
	}
	expectDec(t, "amount", "2", h.Amount)
	// (1·45000·2 + 1·50000·1) / (2·2)
	expectDec(t, "avg buy price", "35000", h.AvgBuyPrice)
	if !h.OpenedAt.Equal(t0) {
		t.Errorf("expected opened at %v, got %v", t0, h.OpenedAt)
	}
}

func TestSell_Rejections(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "10000")

	_, err := l.Sell(s, "BTC", d("0.1"))
	expectErr(t, err, ErrInsufficientHolding)

	_, err = l.Buy(s, "BTC", d("0.1"), 1)
	must(t, err)
	_, err = l.Sell(s, "BTC", d("0.2"))
	expectErr(t, err, ErrInsufficientHolding)
	_, err = l.Sell(s, "BTC", d("0"))
	expectErr(t, err, ErrInvalidAmount)
	if len(s.Transactions) != 1 {
		t.Errorf("expected 1 transaction, got %d", len(s.Transactions))
	}
}

func TestSell_PartialLeveragedProfit(t *testing.T) {
	l, clk := newLedger()
	s := newState(model.VariantUltra, "100000")
	_, err := l.Buy(s, "ETH", d("2"), 5)
	must(t, err)

	setPrice(s, "ETH", "3300")
	clk.Advance(time.Minute)
	_, err = l.Sell(s, "ETH", d("1"))
	must(t, err)

	expectDec(t, "remaining", "1", s.Holdings["ETH"].Amount)
	tx := s.Transactions[0]
	if tx.Leverage != 5 {
		t.Errorf("expected leverage 5 on sell, got %d", tx.Leverage)
	}
	// revenue 1·3300·5·0.999 = 16483.5, basis 1·3200·5 = 16000
	expectDec(t, "revenue", "16483.5", tx.Total)
	expectDec(t, "profit", "483.5", tx.Profit)
	if want := t0.Add(time.Minute); !s.LastSellAt.Equal(want) {
		t.Errorf("expected last sell at %v, got %v", want, s.LastSellAt)
	}
}

func TestTransactions_CappedNewestFirstUniqueIDs(t *testing.T) {
	l, clk := newLedger()
	s := newState(model.VariantUltra, "1000000")
	seen := map[string]bool{}
	for i := 0; i < 120; i++ {
		clk.Advance(time.Second)
		_, err := l.Buy(s, "ADA", d("1"), 1)
		must(t, err)
		id := s.Transactions[0].ID
		if seen[id] {
			t.Fatalf("duplicate transaction id %s", id)
		}
		seen[id] = true
	}
	if len(s.Transactions) != s.Ruleset.TransactionCap {
		t.Errorf("expected %d transactions, got %d", s.Ruleset.TransactionCap, len(s.Transactions))
	}
	if s.Player.TradesCount != 120 {
		t.Errorf("expected 120 trades, got %d", s.Player.TradesCount)
	}
	if !s.Transactions[0].Timestamp.After(s.Transactions[1].Timestamp) {
		t.Error("transactions should be newest first")
	}
}

// --- Staking ---

func TestStake_ClaimAfterOneYear(t *testing.T) {
	l, clk := newLedger()
	s := newState(model.VariantUltra, "10000")

	_, err := l.Buy(s, "ADA", d("50"), 1)
	must(t, err)
	_, err = l.Stake(s, "ADA", d("50"))
	must(t, err)
	if _, ok := s.Holdings["ADA"]; ok {
		t.Error("fully staked holding should be removed")
	}
	cashBefore := s.Player.Cash

	clk.Advance(365 * 24 * time.Hour)
	paid, err := l.ClaimStakingRewards(s)
	must(t, err)

	expectDec(t, "paid", "1.0125", paid)
	expectDec(t, "cash delta", "1.0125", s.Player.Cash.Sub(cashBefore))
	expectDec(t, "staking rewards", "1.0125", s.Player.StakingRewards)
	if !s.Staked["ADA"].StartTime.Equal(clk.Now()) {
		t.Errorf("claim should reset start time, got %v", s.Staked["ADA"].StartTime)
	}
	expectDec(t, "staked amount (no compounding)", "50", s.Staked["ADA"].Amount)

	again, err := l.ClaimStakingRewards(s)
	must(t, err)
	if !again.IsZero() {
		t.Errorf("second claim should pay nothing, got %s", again)
	}
}

func TestStake_MergeKeepsStartTime(t *testing.T) {
	l, clk := newLedger()
	s := newState(model.VariantUltra, "10000")
	_, err := l.Buy(s, "ADA", d("100"), 1)
	must(t, err)
	_, err = l.Stake(s, "ADA", d("40"))
	must(t, err)
	clk.Advance(time.Hour)
	_, err = l.Stake(s, "ADA", d("10"))
	must(t, err)

	sp := s.Staked["ADA"]
	expectDec(t, "staked", "50", sp.Amount)
	if !sp.StartTime.Equal(t0) {
		t.Errorf("expected start time %v, got %v", t0, sp.StartTime)
	}
	expectDec(t, "held", "50", s.Holdings["ADA"].Amount)
}

func TestStake_Rejections(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "100000")
	_, err := l.Buy(s, "DOGE", d("100"), 1)
	must(t, err)
	_, err = l.Stake(s, "DOGE", d("10"))
	expectErr(t, err, ErrNotStakeable)

	_, err = l.Stake(s, "ETH", d("1"))
	expectErr(t, err, ErrInsufficientHolding)

	_, err = l.Buy(s, "SOL", d("1"), 3)
	must(t, err)
	_, err = l.Stake(s, "SOL", d("1"))
	expectErr(t, err, ErrLeveragedStake)

	basic := newState(model.VariantBasic, "10000")
	_, err = l.Stake(basic, "ADA", d("1"))
	expectErr(t, err, ErrFeatureDisabled)
	if len(s.Staked) != 0 {
		t.Errorf("expected nothing staked, got %v", s.Staked)
	}
}

func TestUnstake_RestoresCarriedCostBasis(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "10000")
	_, err := l.Buy(s, "ADA", d("50"), 1)
	must(t, err)
	_, err = l.Stake(s, "ADA", d("50"))
	must(t, err)

	setPrice(s, "ADA", "0.60")
	must(t, l.Unstake(s, "ADA", d("20")))

	h := s.Holdings["ADA"]
	expectDec(t, "held", "20", h.Amount)
	expectDec(t, "basis is restored, not reset to market", "0.45", h.AvgBuyPrice)
	expectDec(t, "still staked", "30", s.Staked["ADA"].Amount)

	must(t, l.Unstake(s, "ADA", d("30")))
	if _, ok := s.Staked["ADA"]; ok {
		t.Error("empty stake should be removed")
	}
	expectDec(t, "held", "50", s.Holdings["ADA"].Amount)

	expectErr(t, l.Unstake(s, "ADA", d("1")), ErrInsufficientStake)
}

// --- DeFi ---

func TestLiquidity_ProvideAccrueRemove(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "10000")

	_, err := l.ProvideLiquidity(s, "ETH", d("1"))
	must(t, err)
	expectDec(t, "cash", "6800", s.Player.Cash)
	expectDec(t, "pool value", "3200", s.Liquidity["ETH"].Value)

	accrued, err := l.AccrueDeFiRewards(s)
	must(t, err)
	expectDec(t, "accrued", "0.32", accrued)
	expectDec(t, "total value", "10000.32", s.Player.TotalValue)

	payout, err := l.RemoveLiquidity(s, "ETH", d("50"))
	must(t, err)
	expectDec(t, "half payout", "1600.16", payout)
	expectDec(t, "defi rewards", "0.16", s.Player.DefiRewards)
	expectDec(t, "pool amount", "0.5", s.Liquidity["ETH"].Amount)
	expectDec(t, "pool value", "1600", s.Liquidity["ETH"].Value)

	payout, err = l.RemoveLiquidity(s, "ETH", d("100"))
	must(t, err)
	expectDec(t, "final payout", "1600.16", payout)
	if _, ok := s.Liquidity["ETH"]; ok {
		t.Error("drained pool should be removed")
	}
	expectDec(t, "cash", "10000.32", s.Player.Cash)
	expectDec(t, "defi rewards", "0.32", s.Player.DefiRewards)
}

func TestLiquidity_Rejections(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "1000")

	_, err := l.ProvideLiquidity(s, "BTC", d("1"))
	expectErr(t, err, ErrInsufficientFunds)
	_, err = l.RemoveLiquidity(s, "BTC", d("10"))
	expectErr(t, err, ErrUnknownPool)

	_, err = l.ProvideLiquidity(s, "ADA", d("100"))
	must(t, err)
	for _, pct := range []string{"0", "-5", "100.01"} {
		_, err = l.RemoveLiquidity(s, "ADA", d(pct))
		if !errors.Is(err, ErrInvalidPercentage) {
			t.Errorf("RemoveLiquidity(%s%%) = %v, want %v", pct, err, ErrInvalidPercentage)
		}
	}

	rich := newState(model.VariantUltra, "10000000")
	_, err = l.ProvideLiquidity(rich, "LINK", d("20000"))
	expectErr(t, err, ErrPoolCapacity)

	enhanced := newState(model.VariantEnhanced, "1000")
	_, err = l.ProvideLiquidity(enhanced, "ADA", d("1"))
	expectErr(t, err, ErrFeatureDisabled)
}

// --- Mining ---

func TestMine_NetOfPowerCost(t *testing.T) {
	l, clk := newLedger()
	s := newState(model.VariantUltra, "10000")
	clk.Advance(time.Hour)

	yield := MiningYield(s)
	if !yield.IsPositive() {
		t.Fatalf("expected positive yield, got %s", yield)
	}

	act, err := l.Mine(s)
	must(t, err)
	// one CPU: 0.1 kW · 1 h · 0.12
	want := yield.Sub(d("0.012"))
	if !want.Equal(act.Volume) {
		t.Errorf("net %s, want %s", act.Volume, want)
	}
	if !s.Player.MiningRewards.Equal(want) {
		t.Errorf("mining rewards %s, want %s", s.Player.MiningRewards, want)
	}
	if !s.LastMiningAt.Equal(clk.Now()) {
		t.Errorf("expected last mining at %v, got %v", clk.Now(), s.LastMiningAt)
	}
}

func TestMine_NeverNegative(t *testing.T) {
	l, clk := newLedger()
	s := newState(model.VariantUltra, "10000")
	for i := range s.Rigs {
		s.Rigs[i].PowerConsumption = d("1000000")
	}
	clk.Advance(24 * time.Hour)

	act, err := l.Mine(s)
	must(t, err)
	if !act.Volume.IsZero() {
		t.Errorf("expected zero net yield, got %s", act.Volume)
	}
	expectDec(t, "cash", "10000", s.Player.Cash)
	if !s.Player.MiningRewards.IsZero() {
		t.Errorf("expected no mining rewards, got %s", s.Player.MiningRewards)
	}
}

func TestBuyMiningHardware(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "10000")

	must(t, l.BuyMiningHardware(s, "gpu_basic"))
	expectDec(t, "cash", "9500", s.Player.Cash)
	expectDec(t, "hash rate", "11", HashRate(s.Rigs))

	expectErr(t, l.BuyMiningHardware(s, "quantum"), ErrInsufficientFunds)
	expectErr(t, l.BuyMiningHardware(s, "abacus"), ErrUnknownRig)
}

// --- Bots ---

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestBots_DeployAdvanceStopProfit(t *testing.T) {
	l, _ := newLedger(0.75)
	s := newState(model.VariantUltra, "10000")

	act, err := l.DeployTradingBot(s, "scalper", d("1000"))
	must(t, err)
	if act.Kind != model.ActivityBotDeploy {
		t.Errorf("expected bot deploy activity, got %s", act.Kind)
	}
	expectDec(t, "cash", "9000", s.Player.Cash)
	expectDec(t, "total value (active bot counts at its value)", "10000", s.Player.TotalValue)

	must(t, l.AdvanceBots(s))
	if !near(s.Bots[0].Performance, 0.005) {
		t.Errorf("expected performance 0.005, got %v", s.Bots[0].Performance)
	}
	if s.Bots[0].Trades != 1 {
		t.Errorf("expected 1 bot trade, got %d", s.Bots[0].Trades)
	}

	returns, err := l.StopTradingBot(s, "scalper")
	must(t, err)
	if !near(returns.InexactFloat64(), 1005) {
		t.Errorf("expected returns 1005, got %s", returns)
	}
	if !near(s.Player.BotRewards.InexactFloat64(), 5) {
		t.Errorf("expected bot rewards 5, got %s", s.Player.BotRewards)
	}
	if s.Bots[0].Active || !s.Bots[0].Investment.IsZero() {
		t.Errorf("stopped bot should be inactive with no investment, got %+v", s.Bots[0])
	}
}

func TestBots_LossDoesNotReduceRewards(t *testing.T) {
	l, _ := newLedger(0.25)
	s := newState(model.VariantUltra, "10000")
	_, err := l.DeployTradingBot(s, "hodler", d("500"))
	must(t, err)
	must(t, l.AdvanceBots(s))

	returns, err := l.StopTradingBot(s, "hodler")
	must(t, err)
	if !near(returns.InexactFloat64(), 497.5) {
		t.Errorf("expected returns 497.5, got %s", returns)
	}
	if !s.Player.BotRewards.IsZero() {
		t.Errorf("a losing bot must not add rewards, got %s", s.Player.BotRewards)
	}
}

func TestBots_PerformanceFloor(t *testing.T) {
	l, _ := newLedger(0)
	s := newState(model.VariantUltra, "10000")
	_, err := l.DeployTradingBot(s, "momentum", d("1500"))
	must(t, err)
	s.Bots[3].Performance = -0.995
	must(t, l.AdvanceBots(s))
	if s.Bots[3].Performance != -1.0 {
		t.Errorf("expected performance floor -1, got %v", s.Bots[3].Performance)
	}
	if !s.Bots[3].Value().IsZero() {
		t.Errorf("expected zero bot value, got %s", s.Bots[3].Value())
	}
}

func TestBots_Rejections(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "1200")

	_, err := l.DeployTradingBot(s, "scalper", d("999"))
	expectErr(t, err, ErrBelowMinInvestment)
	_, err = l.DeployTradingBot(s, "arbitrage", d("2000"))
	expectErr(t, err, ErrInsufficientFunds)
	_, err = l.DeployTradingBot(s, "nope", d("2000"))
	expectErr(t, err, ErrUnknownBot)
	_, err = l.StopTradingBot(s, "scalper")
	expectErr(t, err, ErrBotInactive)

	_, err = l.DeployTradingBot(s, "hodler", d("500"))
	must(t, err)
	_, err = l.DeployTradingBot(s, "hodler", d("500"))
	expectErr(t, err, ErrBotActive)
}

// --- NFTs ---

func TestNFT_BuySell(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "100")

	_, err := l.BuyNFT(s, "crypto_punks", "7804", d("49"))
	expectErr(t, err, ErrBelowFloor)
	_, err = l.BuyNFT(s, "moon_rocks", "1", d("49"))
	expectErr(t, err, ErrUnknownCollection)

	act, err := l.BuyNFT(s, "crypto_punks", "7804", d("60"))
	must(t, err)
	if act.AssetID != "crypto_punks#7804" {
		t.Errorf("expected key crypto_punks#7804, got %q", act.AssetID)
	}
	expectDec(t, "cash", "40", s.Player.Cash)
	expectDec(t, "nft value", "60", s.Player.NFTValue)
	expectDec(t, "total value", "100", s.Player.TotalValue)

	_, err = l.BuyNFT(s, "crypto_punks", "7804", d("60"))
	expectErr(t, err, ErrNFTOwned)

	must(t, l.SellNFT(s, "crypto_punks#7804", d("75")))
	expectDec(t, "cash", "115", s.Player.Cash)
	if !s.Player.NFTValue.IsZero() || len(s.NFTs) != 0 {
		t.Errorf("expected no NFTs after sale, got %v (value %s)", s.NFTs, s.Player.NFTValue)
	}

	expectErr(t, l.SellNFT(s, "crypto_punks#7804", d("75")), ErrUnknownNFT)
	err = l.SellNFT(s, "crypto_punks_7804", d("75"))
	if !IsValidation(err) {
		t.Errorf("malformed key should be a validation error, got %v", err)
	}
	expectErr(t, err, catalog.ErrInvalidNFTKey)
}

// --- Valuation ---

func TestRevalue_SumsEveryClass(t *testing.T) {
	l, _ := newLedger()
	s := newState(model.VariantUltra, "100000")

	_, err := l.Buy(s, "ETH", d("1"), 2) // 6400 notional
	must(t, err)
	_, err = l.Buy(s, "ADA", d("100"), 1)
	must(t, err)
	_, err = l.Stake(s, "ADA", d("100")) // 45 staked
	must(t, err)
	_, err = l.ProvideLiquidity(s, "SOL", d("10")) // 950 pool
	must(t, err)
	_, err = l.BuyNFT(s, "art_blocks", "1", d("5"))
	must(t, err)

	setPrice(s, "ETH", "3000")
	Revalue(s)
	b := Value(s)
	expectDec(t, "spot", "6000", b.Spot)
	expectDec(t, "staked", "45", b.Staked)
	expectDec(t, "defi", "950", b.DeFi)
	expectDec(t, "nft", "5", b.NFT)
	if !s.Player.TotalValue.Equal(b.Total()) {
		t.Errorf("total value %s != breakdown total %s", s.Player.TotalValue, b.Total())
	}
	if want := b.Total().Sub(d("100000")); !s.Player.TotalProfit.Equal(want) {
		t.Errorf("total profit %s, want %s", s.Player.TotalProfit, want)
	}
}
