// Package risk enforces the leverage limits of the active ruleset.
//
// Leverage multiplies notional exposure and cost basis. There is no margin
// or liquidation model, so the only protection is refusing leverage the
// ruleset does not allow.
package risk

import (
	"errors"
	"fmt"

	"github.com/cryptotycoon/engine/internal/model"
)

var (
	// ErrLeverageDisabled is returned for leverage above 1x when the
	// ruleset has leverage turned off.
	ErrLeverageDisabled = errors.New("risk: leverage is not enabled")

	// ErrLeverageOutOfRange is returned for leverage below 1x or above the
	// ruleset maximum.
	ErrLeverageOutOfRange = errors.New("risk: leverage out of range")
)

// LeverageLimiter validates requested leverage.
type LeverageLimiter struct {
	// Enabled allows leverage above 1x.
	Enabled bool

	// Max is the highest accepted multiplier.
	Max int
}

// NewLeverageLimiter builds a limiter from a ruleset. Max is at least 1.
func NewLeverageLimiter(r model.Ruleset) *LeverageLimiter {
	maxLev := r.MaxLeverage
	if maxLev < 1 {
		maxLev = 1
	}
	return &LeverageLimiter{Enabled: r.LeverageEnabled, Max: maxLev}
}

// Check returns nil if lev can be used to open or add to a position.
func (l *LeverageLimiter) Check(lev int) error {
	if lev < 1 {
		return fmt.Errorf("%w: %dx (minimum 1x)", ErrLeverageOutOfRange, lev)
	}
	if lev == 1 {
		return nil
	}
	if !l.Enabled {
		return ErrLeverageDisabled
	}
	if lev > l.Max {
		return fmt.Errorf("%w: %dx (maximum %dx)", ErrLeverageOutOfRange, lev, l.Max)
	}
	return nil
}

// Normalize maps an omitted leverage (0) to 1x.
func Normalize(lev int) int {
	if lev == 0 {
		return 1
	}
	return lev
}
