package settlement

import (
	"fmt"
	"math"
)

// Rule identifies an allocation rule in outputs.
type Rule string

const (
	RuleProportional Rule = "R1"
	RuleNoHarm       Rule = "R2"
)

// Title returns a human readable rule name.
func (r Rule) Title() string {
	switch r {
	case RuleProportional:
		return "Rule 1 - proportional"
	case RuleNoHarm:
		return "Rule 2 - no-harm"
	default:
		return string(r)
	}
}

const (
	feasibilityTolerance = 1e-9
	balanceTolerance     = 1e-6
)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// checkFinite returns ErrNonFiniteAmount naming the first bad entry.
func checkFinite(name string, amounts Amounts) error {
	for _, k := range amounts.Keys() {
		if !isFinite(amounts[k]) {
			return fmt.Errorf("%w: %s %s=%v", ErrNonFiniteAmount, name, k, amounts[k])
		}
	}
	return nil
}

// Rule1Proportional splits the community bill by gross consumption share.
func Rule1Proportional(communityBill float64, gross Amounts) (Amounts, error) {
	if !isFinite(communityBill) {
		return nil, fmt.Errorf("%w: community bill %v", ErrNonFiniteAmount, communityBill)
	}
	if err := checkFinite("weight", gross); err != nil {
		return nil, err
	}
	total := gross.Total()
	if !(total > 0) {
		return nil, ErrNonPositiveWeights
	}
	out := make(Amounts, len(gross))
	for _, k := range gross.Keys() {
		if gross[k] < 0 {
			return nil, fmt.Errorf("%w: %s=%v", ErrNonPositiveWeights, k, gross[k])
		}
		out[k] = communityBill * (gross[k] / total)
	}
	return out, nil
}

// Rule2NoHarm caps every participant at their outside-option bill and funds the
// caps from the winners' slack, keeping the allocation budget balanced.
//
// It is a single pass: cap the harmed, then spread the gap over the winners in
// proportion to their slack. Infeasible inputs return an error wrapping
// ErrNoHarmInfeasible; the rule-1 result stays valid for the caller.
func Rule2NoHarm(rule1, outside Amounts, communityBill float64) (Amounts, error) {
	if !sameParticipants(rule1, outside) {
		return nil, ErrUnknownParticipant
	}
	if !isFinite(communityBill) {
		return nil, fmt.Errorf("%w: community bill %v", ErrNonFiniteAmount, communityBill)
	}
	if err := checkFinite("rule-1 payment", rule1); err != nil {
		return nil, err
	}
	if err := checkFinite("outside bill", outside); err != nil {
		return nil, err
	}
	if outside.Total()+feasibilityTolerance < communityBill {
		return nil, ErrCommunityBillExceedsOutside
	}

	keys := rule1.Keys()
	pay := rule1.Clone()
	for _, k := range keys {
		if pay[k] > outside[k] {
			pay[k] = outside[k]
		}
	}

	required := communityBill - pay.Total()
	if required <= feasibilityTolerance {
		if capped := pay.Total(); capped > communityBill {
			scale := communityBill / capped
			for _, k := range keys {
				pay[k] *= scale
			}
		}
		return capAtOutside(pay, outside)
	}

	var winners []Participant
	slack := make(Amounts)
	for _, k := range keys {
		if pay[k] < outside[k] {
			winners = append(winners, k)
			slack[k] = outside[k] - pay[k]
		}
	}
	totalSlack := slack.Total()
	if totalSlack+feasibilityTolerance < required {
		return nil, ErrInsufficientSlack
	}

	for _, k := range winners {
		pay[k] += required * (slack[k] / totalSlack)
	}

	if diff := communityBill - pay.Total(); math.Abs(diff) > balanceTolerance {
		for _, k := range winners {
			pay[k] += diff * (slack[k] / totalSlack)
		}
	}

	return capAtOutside(pay, outside)
}

// capAtOutside enforces pay <= outside exactly. Overshoots within the
// feasibility tolerance are rounding and are clamped; larger ones are errors.
func capAtOutside(pay, outside Amounts) (Amounts, error) {
	for _, k := range pay.Keys() {
		switch {
		case !isFinite(pay[k]):
			return nil, fmt.Errorf("%w: %s pays %v", ErrNoHarmViolated, k, pay[k])
		case pay[k] > outside[k]+feasibilityTolerance:
			return nil, fmt.Errorf("%w: %s pays %v above %v", ErrNoHarmViolated, k, pay[k], outside[k])
		case pay[k] > outside[k]:
			pay[k] = outside[k]
		}
	}
	return pay, nil
}
