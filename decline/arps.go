package decline

import "math"

// Arps implements the hyperbolic model q(t) = QStart / (1 + B·D·t)^(1/B).
//
// B and D must share a sign. Positive values describe a hyperbolic decline;
// negative values mirror the family into an incline whose rate grows without
// a singularity, q(t) = QStart·(1 + |B|·|D|·t)^(1/|B|).
type Arps struct {
	QStart float64
	D      float64
	B      float64
}

// Predict returns the rate at relative time t.
func (a Arps) Predict(t float64) float64 {
	if a.D == 0 {
		return a.QStart
	}

	return a.QStart * math.Exp(-math.Log1p(a.B*a.D*t)/a.B)
}

// Integral returns the volume produced between relative times t0 and t1.
func (a Arps) Integral(t0, t1 float64) float64 {
	if a.D == 0 {
		return a.QStart * (t1 - t0)
	}

	l0 := math.Log1p(a.B * a.D * t0)
	l1 := math.Log1p(a.B * a.D * t1)
	c := (1 - a.B) / a.B

	return a.QStart / (a.D * a.B) * math.Exp(-c*l0) * oneMinusExpOver(c, l1-l0)
}

// InverseIntegral returns the relative time at which volume has been produced since t0.
func (a Arps) InverseIntegral(volume, t0 float64) float64 {
	if volume == 0 {
		return t0
	}
	if a.D == 0 {
		if a.QStart == 0 {
			return math.Inf(1)
		}

		return t0 + volume/a.QStart
	}

	l0 := math.Log1p(a.B * a.D * t0)
	c := (1 - a.B) / a.B
	s := volume * a.D * a.B * math.Exp(c*l0) / a.QStart

	dl := negLog1pOver(c, s)
	if math.IsInf(dl, 1) {
		return dl
	}

	return math.Expm1(l0+dl) / (a.B * a.D)
}

// FirstDerivative returns dq/dt at relative time t.
func (a Arps) FirstDerivative(t float64) float64 {
	if a.D == 0 {
		return 0
	}

	return -a.D * a.QStart * math.Exp(-(1/a.B+1)*math.Log1p(a.B*a.D*t))
}

// ArpsDEffToD converts an effective annual decline into the nominal daily decline
// for exponent b: D = ((1 − D_eff)^(−b) − 1) / (b·365.25).
func ArpsDEffToD(dEff, b float64) float64 {
	return math.Expm1(-b*math.Log1p(-dEff)) / (b * year)
}

// ArpsDToDEff converts a nominal daily decline into the effective annual decline
// for exponent b: D_eff = 1 − (1 + b·D·365.25)^(−1/b).
func ArpsDToDEff(d, b float64) float64 {
	return -math.Expm1(-math.Log1p(b*d*year) / b)
}

// ArpsGetD solves q(t) = qEnd for D given the start rate and exponent.
func ArpsGetD(qStart, qEnd, t, b float64) float64 {
	return math.Expm1(b*math.Log(qStart/qEnd)) / (b * t)
}

// ArpsGetQStart solves q(t) = qEnd for the start rate.
func ArpsGetQStart(qEnd, d, b, t float64) float64 {
	return qEnd * math.Exp(math.Log1p(b*d*t)/b)
}

// ArpsGetTime returns the relative time at which the rate reaches qEnd.
//
// The result is negative when qEnd lies on the other side of qStart and +Inf
// for a zero decline that never reaches a different rate.
func ArpsGetTime(qStart, qEnd, d, b float64) float64 {
	if d == 0 {
		if qStart == qEnd {
			return 0
		}

		return math.Inf(1)
	}

	return math.Expm1(b*math.Log(qStart/qEnd)) / (b * d)
}
