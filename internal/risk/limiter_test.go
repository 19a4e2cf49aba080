package risk

import (
	"errors"
	"testing"

	"github.com/cryptotycoon/engine/internal/model"
)

func TestCheck_SpotAlwaysAllowed(t *testing.T) {
	for _, v := range []model.Variant{model.VariantBasic, model.VariantEnhanced, model.VariantUltra} {
		l := NewLeverageLimiter(model.RulesetFor(v))
		if err := l.Check(1); err != nil {
			t.Errorf("%s: 1x should be allowed, got %v", v, err)
		}
	}
}

func TestCheck_DisabledInBasic(t *testing.T) {
	l := NewLeverageLimiter(model.RulesetFor(model.VariantBasic))
	if err := l.Check(2); !errors.Is(err, ErrLeverageDisabled) {
		t.Errorf("expected ErrLeverageDisabled, got %v", err)
	}
}

func TestCheck_Range(t *testing.T) {
	l := NewLeverageLimiter(model.RulesetFor(model.VariantUltra))
	tests := []struct {
		lev  int
		want error
	}{
		{-1, ErrLeverageOutOfRange},
		{0, ErrLeverageOutOfRange},
		{2, nil},
		{5, nil},
		{6, ErrLeverageOutOfRange},
		{100, ErrLeverageOutOfRange},
	}
	for _, tt := range tests {
		err := l.Check(tt.lev)
		if !errors.Is(err, tt.want) {
			t.Errorf("Check(%d) = %v, want %v", tt.lev, err, tt.want)
		}
	}
}

func TestNewLeverageLimiter_ClampsMax(t *testing.T) {
	l := NewLeverageLimiter(model.Ruleset{LeverageEnabled: true})
	if l.Max != 1 {
		t.Errorf("expected max 1, got %d", l.Max)
	}
	if err := l.Check(2); !errors.Is(err, ErrLeverageOutOfRange) {
		t.Errorf("expected ErrLeverageOutOfRange, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	if Normalize(0) != 1 || Normalize(3) != 3 {
		t.Error("Normalize should map 0 to 1 and keep other values")
	}
}
