// Package fairness derives dispute-risk indicators from settlement allocations.
package fairness

import (
	settlement "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/settlement/domain"
)

// Deltas returns allocation minus outside-option bill per participant.
// Positive values mark participants worse off than standing alone.
func Deltas(alloc, outside settlement.Amounts) settlement.Amounts {
	out := make(settlement.Amounts, len(alloc))
	for k, v := range alloc {
		out[k] = v - outside[k]
	}
	return out
}

// LoserShare returns the fraction of participants with a strictly positive delta.
func LoserShare(delta settlement.Amounts) float64 {
	if len(delta) == 0 {
		return 0
	}
	losers := 0
	for _, v := range delta {
		if v > 0 {
			losers++
		}
	}
	return float64(losers) / float64(len(delta))
}

// MaxIncrease returns the largest positive delta, or 0 when nobody is worse off.
func MaxIncrease(delta settlement.Amounts) float64 {
	var largest float64
	for _, v := range delta {
		if v > largest {
			largest = v
		}
	}
	return largest
}

// Point is one scenario/rule position on the fairness frontier.
type Point struct {
	Scenario    string
	Rule        settlement.Rule
	Label       string
	LoserShare  float64
	MaxIncrease float64
}

// NewPoint summarizes the deltas of one scenario/rule run.
func NewPoint(scenario string, rule settlement.Rule, delta settlement.Amounts) Point {
	return Point{
		Scenario:    scenario,
		Rule:        rule,
		Label:       Label(scenario, rule),
		LoserShare:  LoserShare(delta),
		MaxIncrease: MaxIncrease(delta),
	}
}

// Label builds the "<scenario>-<rule>" label used in summaries and charts.
func Label(scenario string, rule settlement.Rule) string {
	return scenario + "-" + string(rule)
}
