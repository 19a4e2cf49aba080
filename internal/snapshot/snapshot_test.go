package snapshot_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptotycoon/engine/internal/game"
	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/snapshot"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newState(t *testing.T) *model.GameState {
	t.Helper()
	s := game.NewState(game.Options{Variant: model.VariantUltra}, t0, "snap")
	s.Holdings["BTC"] = model.Holding{
		Amount:      decimal.RequireFromString("0.123456789012345678"),
		AvgBuyPrice: decimal.RequireFromString("45000.000000000001"),
		Leverage:    3,
		OpenedAt:    t0,
	}
	s.Staked["ADA"] = model.StakedPosition{Amount: decimal.NewFromInt(50), CostBasis: decimal.RequireFromString("0.45"), StartTime: t0}
	return s
}

func TestRoundTrip_NoPrecisionLoss(t *testing.T) {
	s := newState(t)
	a := s.Assets["SHIB"]
	a.History = append(a.History, model.PricePoint{Price: 0.000025000000000001, Timestamp: t0.Add(time.Second)})
	s.Assets["SHIB"] = a

	data, err := snapshot.Serialize(s)
	require.NoError(t, err)
	back, err := snapshot.Deserialize(data)
	require.NoError(t, err)

	assert.Equal(t, "0.123456789012345678", back.Holdings["BTC"].Amount.String())
	assert.Equal(t, "45000.000000000001", back.Holdings["BTC"].AvgBuyPrice.String())
	assert.Equal(t, 0.000025000000000001, back.Assets["SHIB"].History[1].Price)

	again, err := snapshot.Serialize(back)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestDeserialize_NormalizesMissingMaps(t *testing.T) {
	s := newState(t)
	data, err := snapshot.Serialize(s)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	delete(raw, "nfts")
	delete(raw, "liquidity")
	data, err = json.Marshal(raw)
	require.NoError(t, err)

	back, err := snapshot.Deserialize(data)
	require.NoError(t, err)
	assert.NotNil(t, back.NFTs)
	assert.NotNil(t, back.Liquidity)
}

func TestDeserialize_RejectsCorruptData(t *testing.T) {
	good, err := snapshot.Serialize(newState(t))
	require.NoError(t, err)

	mutate := func(f func(s *model.GameState)) []byte {
		s := newState(t)
		f(s)
		data, err := snapshot.Serialize(s)
		require.NoError(t, err)
		return data
	}

	cases := []struct {
		name string
		data []byte
	}{
		{"empty", []byte("  ")},
		{"truncated", good[:len(good)/2]},
		{"not json", []byte("hello")},
		{"trailing data", append(append([]byte{}, good...), []byte(` {}`)...)},
		{"unknown field", []byte(`{"version":1,"bogus":true}`)},
		{"wrong version", mutate(func(s *model.GameState) { s.Version = 99 })},
		{"negative cash", mutate(func(s *model.GameState) { s.Player.Cash = decimal.NewFromInt(-1) })},
		{"bad sentiment", mutate(func(s *model.GameState) { s.MarketSentiment = "euphoric" })},
		{"zero price", mutate(func(s *model.GameState) {
			a := s.Assets["ETH"]
			a.Price = decimal.Zero
			s.Assets["ETH"] = a
		})},
		{"zero holding", mutate(func(s *model.GameState) {
			s.Holdings["ETH"] = model.Holding{Amount: decimal.Zero, Leverage: 1}
		})},
		{"holding without asset", mutate(func(s *model.GameState) {
			s.Holdings["XRP"] = model.Holding{Amount: decimal.NewFromInt(1), Leverage: 1}
		})},
		{"bad leverage", mutate(func(s *model.GameState) {
			s.Holdings["ETH"] = model.Holding{Amount: decimal.NewFromInt(1), Leverage: 0}
		})},
		{"bad transaction", mutate(func(s *model.GameState) {
			s.Transactions = []model.Transaction{{ID: "x", Type: "gift"}}
		})},
		{"fee rate of one", mutate(func(s *model.GameState) { s.Ruleset.FeeRate = decimal.NewFromInt(1) })},
		{"fee rate above one", mutate(func(s *model.GameState) { s.Ruleset.FeeRate = decimal.NewFromInt(3) })},
		{"negative fee rate", mutate(func(s *model.GameState) { s.Ruleset.FeeRate = decimal.RequireFromString("-0.01") })},
		{"max leverage zero", mutate(func(s *model.GameState) { s.Ruleset.MaxLeverage = 0 })},
		{"negative history cap", mutate(func(s *model.GameState) { s.Ruleset.HistoryCap = -1 })},
		{"negative transaction cap", mutate(func(s *model.GameState) { s.Ruleset.TransactionCap = -5 })},
		{"news probability above one", mutate(func(s *model.GameState) { s.Ruleset.NewsProbability = 1.5 })},
		{"negative sentiment shift", mutate(func(s *model.GameState) { s.Ruleset.SentimentShiftProb = -0.1 })},
		{"negative defi rate", mutate(func(s *model.GameState) { s.Ruleset.DefiRewardRate = decimal.NewFromInt(-1) })},
		{"negative power cost", mutate(func(s *model.GameState) { s.Ruleset.PowerCostPerKWh = decimal.NewFromInt(-1) })},
		{"negative volatility", mutate(func(s *model.GameState) { s.Ruleset.VolatilityScale = -1 })},
		{"zero challenge target", mutate(func(s *model.GameState) {
			require.NotEmpty(t, s.DailyChallenges)
			s.DailyChallenges[0].Target = decimal.Zero
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := snapshot.Deserialize(tc.data)
			require.Error(t, err)
			assert.True(t, snapshot.IsDataError(err), "got %T: %v", err, err)
		})
	}
}

func TestSerialize_Nil(t *testing.T) {
	_, err := snapshot.Serialize(nil)
	require.Error(t, err)
}
