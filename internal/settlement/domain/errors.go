package settlement

import (
	"errors"
	"fmt"
)

var (
	// ErrNonPositiveWeights is returned when proportional weights are negative or sum to zero.
	ErrNonPositiveWeights = errors.New("settlement: non-positive allocation weights")
	// ErrNonFiniteAmount is returned when a bill or weight is NaN or infinite.
	ErrNonFiniteAmount = errors.New("settlement: non-finite amount")
	// ErrUnknownParticipant is returned when allocation and outside bills cover different participants.
	ErrUnknownParticipant = errors.New("settlement: participant sets differ")
	// ErrNoHarmInfeasible is the class of all no-harm infeasibility errors.
	ErrNoHarmInfeasible = errors.New("settlement: no-harm infeasible")
	// ErrCommunityBillExceedsOutside is returned when the community bill exceeds the sum of outside-option bills.
	ErrCommunityBillExceedsOutside = fmt.Errorf("%w: community bill exceeds sum of outside-option bills", ErrNoHarmInfeasible)
	// ErrInsufficientSlack is returned when winners' savings cannot fund the caps.
	ErrInsufficientSlack = fmt.Errorf("%w: winners' savings insufficient to fund caps", ErrNoHarmInfeasible)
	// ErrNoHarmViolated guards the cap post-condition of the no-harm rule.
	ErrNoHarmViolated = errors.New("settlement: no-harm cap violated after redistribution")
)
