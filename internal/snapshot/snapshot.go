// Package snapshot converts a game state to and from its portable JSON
// form. Decoding is all-or-nothing: a snapshot that fails to parse or breaks
// a ledger invariant is rejected whole with a DataError.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
)

// DataError reports a corrupt or inconsistent snapshot.
type DataError struct {
	Reason string
	Err    error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return "snapshot: " + e.Reason + ": " + e.Err.Error()
	}
	return "snapshot: " + e.Reason
}

func (e *DataError) Unwrap() error { return e.Err }

// IsDataError reports whether err is (or wraps) a DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

func corrupt(format string, args ...any) error {
	return &DataError{Reason: fmt.Sprintf(format, args...)}
}

// Serialize encodes s. Decimals are written as strings and floats in their
// shortest round-trip form, so nothing loses precision.
func Serialize(s *model.GameState) ([]byte, error) {
	if s == nil {
		return nil, errors.New("snapshot: nil state")
	}
	return json.Marshal(s)
}

// Deserialize parses and validates a snapshot. Unknown fields are rejected
// so a snapshot from an incompatible build fails loudly.
func Deserialize(data []byte) (*model.GameState, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, corrupt("empty snapshot")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var s model.GameState
	if err := dec.Decode(&s); err != nil {
		return nil, &DataError{Reason: "parse", Err: err}
	}
	if dec.More() {
		return nil, corrupt("trailing data after snapshot")
	}
	normalize(&s)
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func normalize(s *model.GameState) {
	if s.Holdings == nil {
		s.Holdings = map[string]model.Holding{}
	}
	if s.Staked == nil {
		s.Staked = map[string]model.StakedPosition{}
	}
	if s.Liquidity == nil {
		s.Liquidity = map[string]model.LiquidityPosition{}
	}
	if s.NFTs == nil {
		s.NFTs = map[string]model.NFTHolding{}
	}
}

// Validate checks the invariants a restored state must satisfy.
func Validate(s *model.GameState) error {
	if s.Version != model.SchemaVersion {
		return corrupt("unsupported version %d (want %d)", s.Version, model.SchemaVersion)
	}
	if len(s.Assets) == 0 {
		return corrupt("no assets")
	}
	if s.Player.Cash.IsNegative() {
		return corrupt("negative cash %s", s.Player.Cash)
	}
	if !s.MarketSentiment.Valid() {
		return corrupt("invalid market sentiment %q", s.MarketSentiment)
	}
	if s.DayRewards.IsNegative() {
		return corrupt("negative day rewards %s", s.DayRewards)
	}
	if err := validateRuleset(s.Ruleset); err != nil {
		return err
	}
	for id, a := range s.Assets {
		if id != a.ID {
			return corrupt("asset key %q holds %q", id, a.ID)
		}
		if !a.Price.IsPositive() {
			return corrupt("asset %s: non-positive price %s", id, a.Price)
		}
		if limit := s.Ruleset.HistoryCap; limit > 0 && len(a.History) > limit {
			return corrupt("asset %s: history length %d exceeds cap %d", id, len(a.History), limit)
		}
	}
	for id, h := range s.Holdings {
		if _, ok := s.Assets[id]; !ok {
			return corrupt("holding for unknown asset %q", id)
		}
		if !h.Amount.IsPositive() {
			return corrupt("holding %s: amount must be positive, got %s", id, h.Amount)
		}
		if h.Leverage < 1 {
			return corrupt("holding %s: leverage %d", id, h.Leverage)
		}
	}
	for id, sp := range s.Staked {
		if _, ok := s.Assets[id]; !ok {
			return corrupt("stake for unknown asset %q", id)
		}
		if !sp.Amount.IsPositive() {
			return corrupt("stake %s: amount must be positive, got %s", id, sp.Amount)
		}
	}
	for id, p := range s.Liquidity {
		if _, ok := s.Assets[id]; !ok {
			return corrupt("pool for unknown asset %q", id)
		}
		if p.Value.IsNegative() || p.Rewards.IsNegative() || p.Amount.IsNegative() {
			return corrupt("pool %s: negative balance", id)
		}
	}
	for _, b := range s.Bots {
		if b.Active && !b.Investment.IsPositive() {
			return corrupt("bot %s: active without investment", b.ID)
		}
	}
	for _, c := range s.DailyChallenges {
		if !c.Target.IsPositive() {
			return corrupt("challenge %s: target must be positive, got %s", c.ID, c.Target)
		}
		if c.Progress.IsNegative() || c.Reward.IsNegative() {
			return corrupt("challenge %s: negative progress or reward", c.ID)
		}
	}
	for i, tx := range s.Transactions {
		if tx.Type != model.TxBuy && tx.Type != model.TxSell {
			return corrupt("transaction %d: unknown type %q", i, tx.Type)
		}
	}
	return nil
}

// validateRuleset range-checks the numeric knobs. Caps of zero mean
// unbounded.
func validateRuleset(r model.Ruleset) error {
	if r.FeeRate.IsNegative() || r.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return corrupt("ruleset: fee rate %s outside [0, 1)", r.FeeRate)
	}
	if r.MaxLeverage < 1 {
		return corrupt("ruleset: max leverage %d", r.MaxLeverage)
	}
	if r.HistoryCap < 0 || r.CandleCap < 0 || r.TransactionCap < 0 || r.NewsCap < 0 {
		return corrupt("ruleset: negative cap")
	}
	for name, p := range map[string]float64{
		"sentiment_shift_prob": r.SentimentShiftProb,
		"news_probability":     r.NewsProbability,
	} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return corrupt("ruleset: %s %v outside [0, 1]", name, p)
		}
	}
	if math.IsNaN(r.SentimentInfluence) || r.SentimentInfluence < 0 {
		return corrupt("ruleset: negative sentiment influence %v", r.SentimentInfluence)
	}
	if math.IsNaN(r.VolatilityScale) || math.IsInf(r.VolatilityScale, 0) || r.VolatilityScale < 0 {
		return corrupt("ruleset: invalid volatility scale %v", r.VolatilityScale)
	}
	if r.PowerCostPerKWh.IsNegative() {
		return corrupt("ruleset: negative power cost %s", r.PowerCostPerKWh)
	}
	if r.DefiRewardRate.IsNegative() {
		return corrupt("ruleset: negative defi reward rate %s", r.DefiRewardRate)
	}
	return nil
}
