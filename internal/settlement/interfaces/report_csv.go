package interfaces

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	fairness "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/analytics/domain/fairness"
	profiles "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/profiles/domain"
	"github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/settlement/application"
)

var (
	detailsHeader = []string{"scenario", "rule", "actor", "bill", "outside_bill", "delta"}
	summaryHeader = []string{"scenario", "rule", "label", "loser_share", "max_increase"}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteDetailsCSV writes the long-form table, one row per actor × rule × scenario.
func WriteDetailsCSV(w io.Writer, rows []application.DetailRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(detailsHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Scenario,
			string(row.Rule),
			string(row.Actor),
			formatFloat(row.Bill),
			formatFloat(row.OutsideBill),
			formatFloat(row.Delta),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSummaryCSV writes one fairness row per scenario/rule.
func WriteSummaryCSV(w io.Writer, points []fairness.Point) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(summaryHeader); err != nil {
		return err
	}
	for _, p := range points {
		record := []string{
			p.Scenario,
			string(p.Rule),
			p.Label,
			formatFloat(p.LoserShare),
			formatFloat(p.MaxIncrease),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteProfilesCSV writes the hourly profile table.
func WriteProfilesCSV(w io.Writer, table *profiles.Table) error {
	writer := csv.NewWriter(w)
	columns := profiles.Columns()
	header := make([]string, 0, len(columns)+1)
	header = append(header, "timestamp")
	for _, c := range columns {
		header = append(header, string(c))
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for i := 0; i < table.Len(); i++ {
		r := table.Record(i)
		record[0] = r.Timestamp.Format(time.RFC3339)
		for j, c := range columns {
			record[j+1] = formatFloat(r.Value(c))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
