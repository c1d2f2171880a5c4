package decline

import "math"

// ModifiedArps is a hyperbolic decline that switches to an exponential tail
// once its instantaneous nominal decline D/(1 + b·D·t) falls to DSw.
type ModifiedArps struct {
	Arps
	// DExp is the nominal decline of the exponential tail.
	DExp float64
	// TSw is the relative switch time.
	TSw float64
	// QSw is the rate at the switch.
	QSw float64
}

// NewModifiedArps builds the piecewise curve for a hyperbolic decline (qStart, d, b)
// and the nominal switch decline dSw. When the initial decline is already at or
// below dSw the curve is exponential at d from the start.
func NewModifiedArps(qStart, d, b, dSw float64) ModifiedArps {
	m := ModifiedArps{Arps: Arps{QStart: qStart, D: d, B: b}, DExp: dSw}
	if d <= dSw || dSw <= 0 {
		m.DExp = d
		m.QSw = qStart

		return m
	}

	m.TSw = ModifiedSwitchTime(d, b, dSw)
	m.QSw = m.Arps.Predict(m.TSw)

	return m
}

// ModifiedSwitchTime returns the relative time at which a hyperbolic decline
// with initial nominal decline d reaches the nominal decline dSw.
func ModifiedSwitchTime(d, b, dSw float64) float64 {
	if d <= dSw {
		return 0
	}

	return 1/(b*dSw) - 1/(b*d)
}

func (m ModifiedArps) tail() Exponential {
	return Exponential{QStart: m.QSw, D: m.DExp}
}

// Predict returns the rate at relative time t.
func (m ModifiedArps) Predict(t float64) float64 {
	if t <= m.TSw {
		return m.Arps.Predict(t)
	}

	return m.tail().Predict(t - m.TSw)
}

// Integral returns the volume produced between relative times t0 and t1.
func (m ModifiedArps) Integral(t0, t1 float64) float64 {
	if t1 < t0 {
		return -m.Integral(t1, t0)
	}

	switch {
	case t1 <= m.TSw:
		return m.Arps.Integral(t0, t1)
	case t0 >= m.TSw:
		return m.tail().Integral(t0-m.TSw, t1-m.TSw)
	default:
		return m.Arps.Integral(t0, m.TSw) + m.tail().Integral(0, t1-m.TSw)
	}
}

// InverseIntegral returns the relative time at which volume has been produced since t0.
func (m ModifiedArps) InverseIntegral(volume, t0 float64) float64 {
	if volume == 0 {
		return t0
	}
	if t0 >= m.TSw {
		t := m.tail().InverseIntegral(volume, t0-m.TSw)
		if math.IsInf(t, 1) {
			return t
		}

		return t + m.TSw
	}

	head := m.Arps.Integral(t0, m.TSw)
	if volume <= head {
		return m.Arps.InverseIntegral(volume, t0)
	}

	t := m.tail().InverseIntegral(volume-head, 0)
	if math.IsInf(t, 1) {
		return t
	}

	return t + m.TSw
}

// FirstDerivative returns dq/dt at relative time t.
func (m ModifiedArps) FirstDerivative(t float64) float64 {
	if t <= m.TSw {
		return m.Arps.FirstDerivative(t)
	}

	return m.tail().FirstDerivative(t - m.TSw)
}

// GetTime returns the relative time at which the rate reaches qEnd.
func (m ModifiedArps) GetTime(qEnd float64) float64 {
	if qEnd >= m.QSw {
		return ArpsGetTime(m.QStart, qEnd, m.D, m.B)
	}

	return m.TSw + ExpGetTime(m.QSw, qEnd, m.DExp)
}
