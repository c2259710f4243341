package billing

import "errors"

var (
	// ErrNegativeTariff is returned when a tariff component is negative or not finite.
	ErrNegativeTariff = errors.New("billing: tariff component negative or not finite")
	// ErrInvalidMode is returned when a scenario mode is neither ZEV nor LEG.
	ErrInvalidMode = errors.New("billing: invalid scenario mode")
	// ErrInvalidDiscount is returned when the LEG discount is outside [0,1].
	ErrInvalidDiscount = errors.New("billing: leg discount out of range")
	// ErrEmptyScenarioName is returned when a scenario has no name.
	ErrEmptyScenarioName = errors.New("billing: empty scenario name")
	// ErrNilTable is returned when no profile table is supplied.
	ErrNilTable = errors.New("billing: nil profile table")
)
