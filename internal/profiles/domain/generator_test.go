package profiles

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultParams() Params {
	return Params{
		Year:                   2025,
		Seed:                   7,
		BaseLoadAKWhPerDay:     9,
		BaseLoadBKWhPerDay:     11,
		BaseLoadCKWhPerDay:     10,
		FlexEnergyBKWhPerDay:   3,
		FlexShiftShareToMidday: 0.5,
		PVKWp:                  10,
		PVCapacityFactorTarget: 0.11,
	}
}

func TestGenerateSyntheticYear_Shape(t *testing.T) {
	table, err := GenerateSyntheticYear(defaultParams())
	require.NoError(t, err)
	require.Equal(t, 8760, table.Len())

	first := table.Record(0)
	last := table.Record(table.Len() - 1)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC), last.Timestamp)

	for i := 0; i < table.Len(); i++ {
		r := table.Record(i)
		for _, c := range Columns() {
			if r.Value(c) < 0 {
				t.Fatalf("negative %s at %s: %f", c, r.Timestamp, r.Value(c))
			}
		}
	}
}

func TestGenerateSyntheticYear_LeapYear(t *testing.T) {
	p := defaultParams()
	p.Year = 2024
	table, err := GenerateSyntheticYear(p)
	require.NoError(t, err)
	assert.Equal(t, 8784, table.Len())
	assert.Equal(t, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), table.Record(table.Len()-1).Timestamp)
}

func TestGenerateSyntheticYear_PVMatchesCapacityFactor(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 12345} {
		p := defaultParams()
		p.Seed = seed
		table, err := GenerateSyntheticYear(p)
		require.NoError(t, err)
		target := p.PVKWp * 8760 * p.PVCapacityFactorTarget
		assert.InDelta(t, target, table.Sum(ColumnPVC), target*1e-9, "seed %d", seed)
	}
}

func TestGenerateSyntheticYear_Deterministic(t *testing.T) {
	a, err := GenerateSyntheticYear(defaultParams())
	require.NoError(t, err)
	b, err := GenerateSyntheticYear(defaultParams())
	require.NoError(t, err)
	assert.Equal(t, a.Records(), b.Records())

	p := defaultParams()
	p.Seed = 8
	c, err := GenerateSyntheticYear(p)
	require.NoError(t, err)
	assert.NotEqual(t, a.Column(ColumnLoadA), c.Column(ColumnLoadA))
}

func TestGenerateSyntheticYear_FlexWindows(t *testing.T) {
	p := defaultParams()
	p.FlexEnergyBKWhPerDay = 6
	p.FlexShiftShareToMidday = 0.25
	table, err := GenerateSyntheticYear(p)
	require.NoError(t, err)

	days := float64(table.Len() / 24)
	assert.InDelta(t, 6*days, table.Sum(ColumnFlexB), 1e-6)

	for i := 0; i < 24; i++ {
		r := table.Record(i)
		h := r.Timestamp.Hour()
		switch {
		case h >= 18 && h <= 22:
			assert.InDelta(t, 6*0.75/5, r.FlexB, 1e-12, "hour %d", h)
		case h >= 10 && h <= 15:
			assert.InDelta(t, 6*0.25/6, r.FlexB, 1e-12, "hour %d", h)
		default:
			assert.Zero(t, r.FlexB, "hour %d", h)
		}
		assert.GreaterOrEqual(t, r.LoadB, r.FlexB)
	}
}

func TestGenerateSyntheticYear_NoiseClipped(t *testing.T) {
	p := defaultParams()
	table, err := GenerateSyntheticYear(p)
	require.NoError(t, err)

	shapeA := dailyShape(eveningPeakShape)
	for i := 0; i < table.Len(); i++ {
		r := table.Record(i)
		base := p.BaseLoadAKWhPerDay / 24 * shapeA[r.Timestamp.Hour()] * winterFactor(r.Timestamp.YearDay())
		ratio := r.LoadA / base
		if ratio < noiseMin-1e-12 || ratio > noiseMax+1e-12 {
			t.Fatalf("noise multiplier %f outside clip range at %s", ratio, r.Timestamp)
		}
	}
}

func TestGenerateSyntheticYear_Validation(t *testing.T) {
	cases := map[string]func(*Params){
		"year":      func(p *Params) { p.Year = 0 },
		"negative":  func(p *Params) { p.BaseLoadAKWhPerDay = -1 },
		"share":     func(p *Params) { p.FlexShiftShareToMidday = 1.5 },
		"cf":        func(p *Params) { p.PVCapacityFactorTarget = -0.1 },
		"nan share": func(p *Params) { p.FlexShiftShareToMidday = math.NaN() },
		"nan cf":    func(p *Params) { p.PVCapacityFactorTarget = math.NaN() },
		"nan load":  func(p *Params) { p.BaseLoadCKWhPerDay = math.NaN() },
		"inf pv":    func(p *Params) { p.PVKWp = math.Inf(1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := defaultParams()
			mutate(&p)
			_, err := GenerateSyntheticYear(p)
			assert.Error(t, err)
		})
	}
}

func TestDailyShapeMeanIsOne(t *testing.T) {
	for _, f := range []func(float64) float64{eveningPeakShape, flatShape} {
		shape := dailyShape(f)
		var sum float64
		for _, v := range shape {
			sum += v
		}
		assert.InDelta(t, 24.0, sum, 1e-9)
	}
}

func TestZeroPVStaysZero(t *testing.T) {
	p := defaultParams()
	p.PVKWp = 0
	table, err := GenerateSyntheticYear(p)
	require.NoError(t, err)
	assert.Zero(t, table.Sum(ColumnPVC))
}
