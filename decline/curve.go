package decline

import (
	"math"

	"github.com/arloliu/declinecurve/config"
)

// Curve is a single analytic rate model in relative time.
type Curve interface {
	// Predict returns the rate at relative time t.
	Predict(t float64) float64
	// Integral returns the volume produced between relative times t0 and t1.
	Integral(t0, t1 float64) float64
	// InverseIntegral returns t1 such that Integral(t0, t1) == volume,
	// or +Inf when the model never accumulates that volume.
	InverseIntegral(volume, t0 float64) float64
	// FirstDerivative returns dq/dt at relative time t.
	FirstDerivative(t float64) float64
}

var (
	_ Curve = Arps{}
	_ Curve = Exponential{}
	_ Curve = ModifiedArps{}
	_ Curve = Linear{}
	_ Curve = Flat{}
)

// year is the number of days an effective decline is quoted over.
const year = config.DaysInYear

// oneMinusExpOver returns (1 − e^(−c·x)) / c, continuous at c = 0.
func oneMinusExpOver(c, x float64) float64 {
	if c == 0 {
		return x
	}

	return -math.Expm1(-c*x) / c
}

// negLog1pOver returns −ln(1 − c·s) / c, the inverse of oneMinusExpOver in x.
// It returns +Inf when 1 − c·s ≤ 0.
func negLog1pOver(c, s float64) float64 {
	if c == 0 {
		return s
	}
	if c*s >= 1 {
		return math.Inf(1)
	}

	return -math.Log1p(-c*s) / c
}
