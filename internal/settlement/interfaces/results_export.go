package interfaces

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	billing "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/billing/domain"
	"github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/settlement/application"
)

// RunInfo describes the run a workbook belongs to.
type RunInfo struct {
	Year     int
	Seed     int64
	Currency string
	Tariff   billing.Tariff
}

// cents rounds a monetary amount for display.
func cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// BuildResultsXLSX renders the run result as a workbook with summary, bills,
// details, fairness and failures sheets. Monetary cells are rounded to cents.
func BuildResultsXLSX(info RunInfo, res application.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	billsSheet := "bills"
	detailsSheet := "details"
	fairnessSheet := "fairness"
	failuresSheet := "failures"
	f.SetSheetName("Sheet1", summarySheet)
	for _, name := range []string{billsSheet, detailsSheet, fairnessSheet, failuresSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue(summarySheet, "A1", "Community settlement results")
	_ = f.SetCellValue(summarySheet, "A3", "Year")
	_ = f.SetCellValue(summarySheet, "B3", info.Year)
	_ = f.SetCellValue(summarySheet, "A4", "Seed")
	_ = f.SetCellValue(summarySheet, "B4", info.Seed)
	_ = f.SetCellValue(summarySheet, "A5", "Currency")
	_ = f.SetCellValue(summarySheet, "B5", info.Currency)
	_ = f.SetCellValue(summarySheet, "A6", "Energy price (per kWh)")
	_ = f.SetCellValue(summarySheet, "B6", info.Tariff.EnergyPrice)
	_ = f.SetCellValue(summarySheet, "A7", "Grid usage (per kWh)")
	_ = f.SetCellValue(summarySheet, "B7", info.Tariff.GridUsage)
	_ = f.SetCellValue(summarySheet, "A8", "Feed-in (per kWh)")
	_ = f.SetCellValue(summarySheet, "B8", info.Tariff.FeedIn)
	_ = f.SetCellValue(summarySheet, "A10", "Community import (kWh)")
	_ = f.SetCellValue(summarySheet, "B10", res.Flows.Import)
	_ = f.SetCellValue(summarySheet, "A11", "Community export (kWh)")
	_ = f.SetCellValue(summarySheet, "B11", res.Flows.Export)
	_ = f.SetCellValue(summarySheet, "A12", "PV self-consumed by C (kWh)")
	_ = f.SetCellValue(summarySheet, "B12", res.Flows.SelfConsumedC)
	_ = f.SetCellValue(summarySheet, "A13", "PV shared to A+B (kWh)")
	_ = f.SetCellValue(summarySheet, "B13", res.Flows.SharedToOthers)

	_ = f.SetSheetRow(billsSheet, "A1", &[]interface{}{"actor", "gross_kwh", "outside_bill"})
	for i, actor := range res.Outside.Keys() {
		row := i + 2
		_ = f.SetSheetRow(billsSheet, cell("A", row), &[]interface{}{string(actor), res.Gross[actor], cents(res.Outside[actor])})
	}
	communityRow := len(res.Outside) + 3
	_ = f.SetSheetRow(billsSheet, cell("A", communityRow), &[]interface{}{"scenario", "mode", "community_bill"})
	for i, outcome := range res.Outcomes {
		row := communityRow + i + 1
		_ = f.SetSheetRow(billsSheet, cell("A", row), &[]interface{}{outcome.Scenario.Name, string(outcome.Scenario.Mode), cents(outcome.CommunityBill)})
	}

	_ = f.SetSheetRow(detailsSheet, "A1", &[]interface{}{"scenario", "rule", "actor", "bill", "outside_bill", "delta"})
	for i, d := range res.Details {
		_ = f.SetSheetRow(detailsSheet, cell("A", i+2), &[]interface{}{d.Scenario, string(d.Rule), string(d.Actor), cents(d.Bill), cents(d.OutsideBill), cents(d.Delta)})
	}

	_ = f.SetSheetRow(fairnessSheet, "A1", &[]interface{}{"scenario", "rule", "label", "loser_share", "max_increase"})
	for i, p := range res.Points {
		_ = f.SetSheetRow(fairnessSheet, cell("A", i+2), &[]interface{}{p.Scenario, string(p.Rule), p.Label, p.LoserShare, cents(p.MaxIncrease)})
	}

	_ = f.SetSheetRow(failuresSheet, "A1", &[]interface{}{"scenario", "rule", "reason", "error"})
	for i, fail := range res.Failures {
		_ = f.SetSheetRow(failuresSheet, cell("A", i+2), &[]interface{}{fail.Scenario, string(fail.Rule), fail.Reason, fail.Err.Error()})
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
