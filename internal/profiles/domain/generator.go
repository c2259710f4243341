package profiles

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

const (
	noiseSigma = 0.06
	noiseMin   = 0.75
	noiseMax   = 1.35

	cloudMu    = -0.05
	cloudSigma = 0.25

	eveningStartHour = 18
	eveningEndHour   = 22
	middayStartHour  = 10
	middayEndHour    = 15
)

// Noise amplitude per participant relative to the shared hourly draw.
const (
	noiseScaleA = 1.0
	noiseScaleB = 0.8
	noiseScaleC = 0.7
)

// Params configures synthetic year generation.
type Params struct {
	Year                   int
	Seed                   int64
	BaseLoadAKWhPerDay     float64
	BaseLoadBKWhPerDay     float64
	BaseLoadCKWhPerDay     float64
	FlexEnergyBKWhPerDay   float64
	FlexShiftShareToMidday float64
	PVKWp                  float64
	PVCapacityFactorTarget float64
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, p.Year)
	}
	for _, v := range []float64{p.BaseLoadAKWhPerDay, p.BaseLoadBKWhPerDay, p.BaseLoadCKWhPerDay, p.FlexEnergyBKWhPerDay, p.PVKWp} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return ErrNegativeEnergy
		}
	}
	if !inUnitRange(p.FlexShiftShareToMidday) {
		return ErrInvalidShare
	}
	if !inUnitRange(p.PVCapacityFactorTarget) {
		return ErrInvalidCapacityFactor
	}
	return nil
}

// inUnitRange reports whether v is in [0,1]. NaN is outside.
func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

// TargetPVEnergy returns the annual PV energy the generator scales to.
func (p Params) TargetPVEnergy() float64 {
	return p.PVKWp * 8760.0 * p.PVCapacityFactorTarget
}

// GenerateSyntheticYear builds hourly load and PV profiles for one year.
// Identical params always produce an identical table.
func GenerateSyntheticYear(p Params) (*Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(uint64(p.Seed), 0))
	n := HoursInYear(p.Year)
	start := time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)

	// Load noise first, PV clouds second.
	noise := make([]float64, n)
	for i := range noise {
		noise[i] = rng.NormFloat64() * noiseSigma
	}
	clouds := make([]float64, n)
	for i := range clouds {
		clouds[i] = math.Exp(cloudMu + cloudSigma*rng.NormFloat64())
	}

	shapeA := dailyShape(eveningPeakShape)
	shapeB := dailyShape(flatShape)
	shapeC := dailyShape(flatShape)
	flex := flexDayProfile(p.FlexEnergyBKWhPerDay, p.FlexShiftShareToMidday)

	records := make([]HourlyRecord, n)
	pv := make([]float64, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		h := ts.Hour()
		doy := ts.YearDay()
		winter := winterFactor(doy)

		records[i] = HourlyRecord{
			Timestamp: ts,
			LoadA:     p.BaseLoadAKWhPerDay / 24.0 * shapeA[h] * winter * clip(1+noiseScaleA*noise[i], noiseMin, noiseMax),
			LoadB:     p.BaseLoadBKWhPerDay/24.0*shapeB[h]*winter*clip(1+noiseScaleB*noise[i], noiseMin, noiseMax) + flex[h],
			LoadC:     p.BaseLoadCKWhPerDay / 24.0 * shapeC[h] * winter * clip(1+noiseScaleC*noise[i], noiseMin, noiseMax),
			FlexB:     flex[h],
		}

		raw := pvShape(float64(h), doy) * clouds[i]
		if raw < 0 {
			raw = 0
		}
		pv[i] = raw
	}

	if raw := floats.Sum(pv); raw > 0 {
		floats.Scale(p.TargetPVEnergy()/raw, pv)
	}
	for i := range records {
		records[i].PVC = pv[i]
	}

	return &Table{year: p.Year, records: records}, nil
}

// flexDayProfile spreads B's daily flexible energy uniformly over the evening
// window and the midday window according to the shift share.
func flexDayProfile(energy, shareMidday float64) [24]float64 {
	var out [24]float64
	mid := energy * shareMidday
	eve := energy - mid
	eveHours := float64(eveningEndHour - eveningStartHour + 1)
	midHours := float64(middayEndHour - middayStartHour + 1)
	for h := eveningStartHour; h <= eveningEndHour; h++ {
		out[h] += eve / eveHours
	}
	for h := middayStartHour; h <= middayEndHour; h++ {
		out[h] += mid / midHours
	}
	return out
}
