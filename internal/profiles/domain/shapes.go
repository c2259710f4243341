package profiles

import "math"

const (
	pvSolarNoon      = 12.5
	summerSolsticeDY = 172
	winterPeakDY     = 15
	daysPerYear      = 365.0
)

func gaussian(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

// eveningPeakShape is a morning bump plus a stronger evening bump on a base level.
func eveningPeakShape(h float64) float64 {
	return 0.35 + gaussian(h, 8.0, 2.2) + 1.7*gaussian(h, 19.0, 2.8)
}

// flatShape is a mild midday hump.
func flatShape(h float64) float64 {
	return 0.9 + 0.15*gaussian(h, 13.0, 4.0)
}

// dailyShape evaluates f at every hour of the day and normalizes the result to mean 1.
func dailyShape(f func(float64) float64) [24]float64 {
	var shape [24]float64
	var sum float64
	for h := 0; h < 24; h++ {
		shape[h] = f(float64(h))
		sum += shape[h]
	}
	mean := sum / 24
	for h := range shape {
		shape[h] /= mean
	}
	return shape
}

func seasonalPhase(dayOfYear, peakDay int) float64 {
	return math.Cos(2 * math.Pi * float64(dayOfYear-peakDay) / daysPerYear)
}

// winterFactor raises consumption slightly in winter.
func winterFactor(dayOfYear int) float64 {
	return 1.0 + 0.10*seasonalPhase(dayOfYear, winterPeakDY)
}

// pvShape is an unscaled bell around solar noon, wider and taller in summer.
func pvShape(h float64, dayOfYear int) float64 {
	phase := seasonalPhase(dayOfYear, summerSolsticeDY)
	width := 2.6 + 1.2*phase
	season := 0.35 + 0.65*(0.5*(1+phase))
	return season * gaussian(h, pvSolarNoon, width)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
