package profiles

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// Column names one series of the hourly table.
type Column string

const (
	ColumnLoadA Column = "load_a"
	ColumnLoadB Column = "load_b"
	ColumnLoadC Column = "load_c"
	ColumnPVC   Column = "pv_c"
	ColumnFlexB Column = "flex_b"
)

// Columns returns the table columns in output order.
func Columns() []Column {
	return []Column{ColumnLoadA, ColumnLoadB, ColumnLoadC, ColumnPVC, ColumnFlexB}
}

// HourlyRecord holds the energy values (kWh) of one hour.
// FlexB is already included in LoadB.
type HourlyRecord struct {
	Timestamp time.Time
	LoadA     float64
	LoadB     float64
	LoadC     float64
	PVC       float64
	FlexB     float64
}

// Value returns the value of the given column.
func (r HourlyRecord) Value(c Column) float64 {
	switch c {
	case ColumnLoadA:
		return r.LoadA
	case ColumnLoadB:
		return r.LoadB
	case ColumnLoadC:
		return r.LoadC
	case ColumnPVC:
		return r.PVC
	case ColumnFlexB:
		return r.FlexB
	default:
		return 0
	}
}

// Table is the read-only hourly profile table of one calendar year.
type Table struct {
	year    int
	records []HourlyRecord
}

// NewTable wraps records produced elsewhere (tests, imports). The slice is copied.
func NewTable(year int, records []HourlyRecord) *Table {
	cp := make([]HourlyRecord, len(records))
	copy(cp, records)
	return &Table{year: year, records: cp}
}

// Year returns the calendar year of the table.
func (t *Table) Year() int { return t.year }

// Len returns the number of hourly rows.
func (t *Table) Len() int { return len(t.records) }

// Record returns the i-th row.
func (t *Table) Record(i int) HourlyRecord { return t.records[i] }

// Records returns a detached copy of all rows.
func (t *Table) Records() []HourlyRecord {
	cp := make([]HourlyRecord, len(t.records))
	copy(cp, t.records)
	return cp
}

// Column returns a fresh slice with the values of one column.
func (t *Table) Column(c Column) []float64 {
	out := make([]float64, len(t.records))
	for i, r := range t.records {
		out[i] = r.Value(c)
	}
	return out
}

// Sum returns the annual total of one column.
func (t *Table) Sum(c Column) float64 {
	if len(t.records) == 0 {
		return 0
	}
	return floats.Sum(t.Column(c))
}

// HoursInYear returns 8784 for leap years and 8760 otherwise.
func HoursInYear(year int) int {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / time.Hour)
}
