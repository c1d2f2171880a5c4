package decline

import "math"

// Linear implements q(t) = QStart + K·t.
type Linear struct {
	QStart float64
	K      float64
}

// Predict returns the rate at relative time t.
func (l Linear) Predict(t float64) float64 {
	return l.QStart + l.K*t
}

// Integral returns the volume produced between relative times t0 and t1.
// A zero slope reduces to the rectangle QStart·(t1 − t0).
func (l Linear) Integral(t0, t1 float64) float64 {
	dt := t1 - t0

	return l.Predict(t0)*dt + 0.5*l.K*dt*dt
}

// InverseIntegral returns the relative time at which volume has been produced since t0.
//
// It solves q0·Δ + K·Δ²/2 = volume with the cancellation-free root
// Δ = 2·volume / (q0 + √(q0² + 2·K·volume)), which tends to volume/q0 as K → 0.
func (l Linear) InverseIntegral(volume, t0 float64) float64 {
	if volume == 0 {
		return t0
	}

	q0 := l.Predict(t0)
	disc := q0*q0 + 2*l.K*volume
	if disc < 0 {
		return math.Inf(1)
	}

	den := q0 + math.Sqrt(disc)
	if den <= 0 {
		return math.Inf(1)
	}

	return t0 + 2*volume/den
}

// FirstDerivative returns the constant slope K.
func (l Linear) FirstDerivative(float64) float64 {
	return l.K
}

// LinearDToDEff converts the relative daily decline D = −k/q_start into an
// effective annual decline. Linear declines are not compounded.
func LinearDToDEff(d float64) float64 {
	return d * year
}

// LinearDEffToD is the inverse of LinearDToDEff.
func LinearDEffToD(dEff float64) float64 {
	return dEff / year
}

// LinearGetK solves q(t) = qEnd for the slope.
func LinearGetK(qStart, qEnd, t float64) float64 {
	return (qEnd - qStart) / t
}

// LinearGetQStart solves q(t) = qEnd for the start rate.
func LinearGetQStart(qEnd, k, t float64) float64 {
	return qEnd - k*t
}

// LinearGetTime returns the relative time at which the rate reaches qEnd.
func LinearGetTime(qStart, qEnd, k float64) float64 {
	if k == 0 {
		if qStart == qEnd {
			return 0
		}

		return math.Inf(1)
	}

	return (qEnd - qStart) / k
}

// Flat implements a constant rate.
type Flat struct {
	C float64
}

// Predict returns C.
func (f Flat) Predict(float64) float64 {
	return f.C
}

// Integral returns C·(t1 − t0).
func (f Flat) Integral(t0, t1 float64) float64 {
	return f.C * (t1 - t0)
}

// InverseIntegral returns t0 + volume/C.
func (f Flat) InverseIntegral(volume, t0 float64) float64 {
	if volume == 0 {
		return t0
	}
	if f.C == 0 {
		return math.Inf(1)
	}

	return t0 + volume/f.C
}

// FirstDerivative returns 0.
func (f Flat) FirstDerivative(float64) float64 {
	return 0
}
