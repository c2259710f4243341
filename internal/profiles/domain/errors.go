package profiles

import "errors"

var (
	// ErrInvalidYear is returned when the calendar year is out of range.
	ErrInvalidYear = errors.New("profiles: invalid year")
	// ErrNegativeEnergy is returned when a daily energy or capacity is negative.
	ErrNegativeEnergy = errors.New("profiles: negative energy")
	// ErrInvalidShare is returned when the flex shift share is outside [0,1].
	ErrInvalidShare = errors.New("profiles: flex shift share out of range")
	// ErrInvalidCapacityFactor is returned when the PV capacity factor is outside [0,1].
	ErrInvalidCapacityFactor = errors.New("profiles: capacity factor out of range")
)
