package decline

import "math"

// Exponential implements q(t) = QStart·e^(−D·t). A negative D is an incline.
type Exponential struct {
	QStart float64
	D      float64
}

// Predict returns the rate at relative time t.
func (e Exponential) Predict(t float64) float64 {
	return e.QStart * math.Exp(-e.D*t)
}

// Integral returns the volume produced between relative times t0 and t1.
func (e Exponential) Integral(t0, t1 float64) float64 {
	return e.QStart * math.Exp(-e.D*t0) * oneMinusExpOver(e.D, t1-t0)
}

// InverseIntegral returns the relative time at which volume has been produced since t0.
func (e Exponential) InverseIntegral(volume, t0 float64) float64 {
	if volume == 0 {
		return t0
	}
	if e.QStart == 0 {
		return math.Inf(1)
	}

	dt := negLog1pOver(e.D, volume*math.Exp(e.D*t0)/e.QStart)
	if math.IsInf(dt, 1) {
		return dt
	}

	return t0 + dt
}

// FirstDerivative returns dq/dt at relative time t.
func (e Exponential) FirstDerivative(t float64) float64 {
	return -e.D * e.Predict(t)
}

// ExpDEffToD converts an effective annual decline into the nominal daily decline:
// D = −ln(1 − D_eff) / 365.25.
func ExpDEffToD(dEff float64) float64 {
	return -math.Log1p(-dEff) / year
}

// ExpDToDEff converts a nominal daily decline into the effective annual decline:
// D_eff = 1 − e^(−D·365.25).
func ExpDToDEff(d float64) float64 {
	return -math.Expm1(-d * year)
}

// ExpGetD solves q(t) = qEnd for D.
func ExpGetD(qStart, qEnd, t float64) float64 {
	return math.Log(qStart/qEnd) / t
}

// ExpGetQStart solves q(t) = qEnd for the start rate.
func ExpGetQStart(qEnd, d, t float64) float64 {
	return qEnd * math.Exp(d*t)
}

// ExpGetTime returns the relative time at which the rate reaches qEnd.
func ExpGetTime(qStart, qEnd, d float64) float64 {
	if d == 0 {
		if qStart == qEnd {
			return 0
		}

		return math.Inf(1)
	}

	return math.Log(qStart/qEnd) / d
}
