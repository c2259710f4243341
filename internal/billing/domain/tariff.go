package billing

import (
	"fmt"
	"math"
	"strings"
)

// Tariff holds per-kWh prices. It is an immutable value.
type Tariff struct {
	EnergyPrice float64
	GridUsage   float64
	FeedIn      float64
}

// NewTariff validates and returns a tariff.
func NewTariff(energyPrice, gridUsage, feedIn float64) (Tariff, error) {
	for _, v := range []float64{energyPrice, gridUsage, feedIn} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return Tariff{}, fmt.Errorf("%w: %v", ErrNegativeTariff, v)
		}
	}
	return Tariff{EnergyPrice: energyPrice, GridUsage: gridUsage, FeedIn: feedIn}, nil
}

// ImportPrice is the full price of one kWh drawn from the grid.
func (t Tariff) ImportPrice() float64 { return t.EnergyPrice + t.GridUsage }

// Mode is the legal regime of a sharing scenario.
type Mode string

const (
	ModeZEV Mode = "ZEV"
	ModeLEG Mode = "LEG"
)

// ParseMode normalizes a mode string, case-insensitively.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(raw))); m {
	case ModeZEV, ModeLEG:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
	}
}

// Scenario is one sharing configuration. LEGDiscount only applies in LEG mode.
type Scenario struct {
	Name        string
	Mode        Mode
	LEGDiscount float64
}

// ValidDiscount reports whether d is a usable LEG discount in [0,1].
func ValidDiscount(d float64) bool {
	return d >= 0 && d <= 1
}

// NewScenario validates and returns a scenario.
func NewScenario(name, mode string, legDiscount float64) (Scenario, error) {
	if strings.TrimSpace(name) == "" {
		return Scenario{}, ErrEmptyScenarioName
	}
	m, err := ParseMode(mode)
	if err != nil {
		return Scenario{}, err
	}
	if !ValidDiscount(legDiscount) {
		return Scenario{}, fmt.Errorf("%w: %v", ErrInvalidDiscount, legDiscount)
	}
	return Scenario{Name: name, Mode: m, LEGDiscount: legDiscount}, nil
}
