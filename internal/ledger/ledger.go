// Package ledger applies player commands and economic ticks to a game state:
// spot trades with fee and leverage accounting, staking, liquidity pools,
// mining, trading bots and NFTs.
//
// Every handler validates completely before it writes, so a returned error
// means the state is untouched. Callers still run handlers against a clone
// (see game.Engine) so a tick and a command never observe each other's
// partial writes.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/clock"
	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/random"
)

// ValidationError is a rejected command. The state is unchanged.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return "ledger: " + e.Reason + ": " + e.Err.Error()
	}
	return "ledger: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	ErrInvalidAmount       = &ValidationError{Reason: "amount must be positive"}
	ErrUnknownAsset        = &ValidationError{Reason: "unknown asset"}
	ErrInsufficientFunds   = &ValidationError{Reason: "insufficient funds"}
	ErrInsufficientHolding = &ValidationError{Reason: "insufficient holdings"}
	ErrFeatureDisabled     = &ValidationError{Reason: "feature not enabled"}
	ErrNotStakeable        = &ValidationError{Reason: "asset cannot be staked"}
	ErrLeveragedStake      = &ValidationError{Reason: "leveraged holdings cannot be staked"}
	ErrInsufficientStake   = &ValidationError{Reason: "insufficient staked amount"}
	ErrUnknownPool         = &ValidationError{Reason: "unknown liquidity pool"}
	ErrPoolCapacity        = &ValidationError{Reason: "liquidity pool capacity exceeded"}
	ErrInvalidPercentage   = &ValidationError{Reason: "percentage must be in (0, 100]"}
	ErrUnknownRig          = &ValidationError{Reason: "unknown mining hardware"}
	ErrUnknownBot          = &ValidationError{Reason: "unknown trading bot"}
	ErrBotActive           = &ValidationError{Reason: "trading bot already deployed"}
	ErrBotInactive         = &ValidationError{Reason: "trading bot not deployed"}
	ErrBelowMinInvestment  = &ValidationError{Reason: "investment below bot minimum"}
	ErrUnknownCollection   = &ValidationError{Reason: "unknown nft collection"}
	ErrBelowFloor          = &ValidationError{Reason: "price below collection floor"}
	ErrNFTOwned            = &ValidationError{Reason: "nft already owned"}
	ErrUnknownNFT          = &ValidationError{Reason: "nft not owned"}
	ErrInvalidPrice        = &ValidationError{Reason: "price must be positive"}
)

// reject attaches detail to a sentinel while keeping errors.Is working.
func reject(sentinel *ValidationError, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}

// invalid wraps an error from a collaborator (risk, catalog) as a
// ValidationError.
func invalid(reason string, err error) error {
	return &ValidationError{Reason: reason, Err: err}
}

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
	year    = decimal.NewFromInt(int64(365 * 24 * time.Hour))
	hour    = decimal.NewFromInt(int64(time.Hour))
	kilo    = decimal.NewFromInt(1000)
)

// Ledger holds the collaborators the handlers need. It keeps no game state
// of its own.
type Ledger struct {
	clock clock.Clock
	rng   random.Source
	newID func() string
}

// New creates a ledger using c for timestamps and rng for bot performance.
func New(c clock.Clock, rng random.Source) *Ledger {
	return &Ledger{clock: c, rng: rng, newID: newTxID}
}

// newTxID returns a time-ordered UUID so IDs sort by creation time.
func newTxID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func requireFeature(s *model.GameState, feature string) error {
	if !s.Ruleset.Has(feature) {
		return reject(ErrFeatureDisabled, "%s", feature)
	}
	return nil
}

func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return reject(ErrInvalidAmount, "%s", amount)
	}
	return nil
}

func lookupAsset(s *model.GameState, id string) (model.Asset, error) {
	a, ok := s.Assets[id]
	if !ok {
		return model.Asset{}, reject(ErrUnknownAsset, "%q", id)
	}
	return a, nil
}

func (l *Ledger) recordTx(s *model.GameState, tx model.Transaction) {
	tx.ID = l.newID()
	limit := s.Ruleset.TransactionCap
	txs := make([]model.Transaction, 0, min(len(s.Transactions)+1, max(limit, 1)))
	txs = append(txs, tx)
	txs = append(txs, s.Transactions...)
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	s.Transactions = txs
	s.Player.TradesCount++
	s.SessionTrades++
}
