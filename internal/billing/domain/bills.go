package billing

import (
	"fmt"
	"math"

	profiles "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/profiles/domain"
	settlement "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/settlement/domain"
)

// Flows is the annual energy balance of the community perimeter (kWh).
type Flows struct {
	// Import and Export are summed hour by hour after clipping at zero.
	Import float64
	Export float64
	// SelfConsumedC is PV used by C itself.
	SelfConsumedC float64
	// SharedToOthers is PV surplus after C that covers A+B load in the same hour.
	SharedToOthers float64
}

// CommunityFlows computes the hourly-netted energy balance of the community.
func CommunityFlows(table *profiles.Table) (Flows, error) {
	if table == nil {
		return Flows{}, ErrNilTable
	}
	var f Flows
	for i := 0; i < table.Len(); i++ {
		r := table.Record(i)
		load := r.LoadA + r.LoadB + r.LoadC
		f.Import += math.Max(load-r.PVC, 0)
		f.Export += math.Max(r.PVC-load, 0)

		toSelf := math.Min(r.LoadC, r.PVC)
		surplus := math.Max(r.PVC-toSelf, 0)
		f.SelfConsumedC += toSelf
		f.SharedToOthers += math.Min(r.LoadA+r.LoadB, surplus)
	}
	return f, nil
}

// OutsideOptionBills returns each participant's annual bill without sharing.
// A and B import their whole load; C self-consumes its PV first and exports
// the surplus, netted per hour.
func OutsideOptionBills(table *profiles.Table, t Tariff) (settlement.Amounts, error) {
	if table == nil {
		return nil, ErrNilTable
	}
	var importC, exportC float64
	for i := 0; i < table.Len(); i++ {
		r := table.Record(i)
		importC += math.Max(r.LoadC-r.PVC, 0)
		exportC += math.Max(r.PVC-r.LoadC, 0)
	}
	return settlement.Amounts{
		settlement.ParticipantA: t.ImportPrice() * table.Sum(profiles.ColumnLoadA),
		settlement.ParticipantB: t.ImportPrice() * table.Sum(profiles.ColumnLoadB),
		settlement.ParticipantC: t.ImportPrice()*importC - t.FeedIn*exportC,
	}, nil
}

// CommunityBill returns the utility bill of the community as a whole under s.
//
// ZEV exempts internal sharing from grid charges. LEG routes shared PV over the
// public grid, so PV delivered to A+B pays grid usage at the scenario discount.
func CommunityBill(table *profiles.Table, t Tariff, s Scenario) (float64, error) {
	flows, err := CommunityFlows(table)
	if err != nil {
		return 0, err
	}
	return billFromFlows(flows, t, s)
}

func billFromFlows(f Flows, t Tariff, s Scenario) (float64, error) {
	energyCost := t.EnergyPrice*f.Import - t.FeedIn*f.Export

	var gridCost float64
	switch s.Mode {
	case ModeZEV:
		gridCost = t.GridUsage * f.Import
	case ModeLEG:
		if !ValidDiscount(s.LEGDiscount) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidDiscount, s.LEGDiscount)
		}
		gridCost = t.GridUsage*f.Import + t.GridUsage*(1.0-s.LEGDiscount)*f.SharedToOthers
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s.Mode)
	}
	return energyCost + gridCost, nil
}

// GrossConsumptions returns each participant's raw annual load, ignoring PV.
func GrossConsumptions(table *profiles.Table) (settlement.Amounts, error) {
	if table == nil {
		return nil, ErrNilTable
	}
	return settlement.Amounts{
		settlement.ParticipantA: table.Sum(profiles.ColumnLoadA),
		settlement.ParticipantB: table.Sum(profiles.ColumnLoadB),
		settlement.ParticipantC: table.Sum(profiles.ColumnLoadC),
	}, nil
}
