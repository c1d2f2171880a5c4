// Package decline provides the closed-form primitives of decline curve analysis.
//
// Every model is expressed in relative time t (days since the segment start)
// and a start rate q_start:
//
//   - Arps hyperbolic: q(t) = q_start / (1 + b·D·t)^(1/b)
//   - Arps incline: the same family with a negative exponent, q(t) = q_start·(1 + b·|D|·t)^(1/b)
//   - Exponential: q(t) = q_start·e^(−D·t), D < 0 for an incline
//   - Modified Arps: hyperbolic until the nominal decline reaches a switch decline, exponential afterwards
//   - Linear: q(t) = q_start + k·t
//   - Flat: q(t) = c
//
// Each model implements Curve: point prediction, definite integral (cumulative
// volume), inverse integral (time at which a volume is reached) and first
// derivative. The integrals use log1p/expm1 forms so they stay accurate when
// b approaches 0 or 1 and when D or k approaches 0; an unreachable volume
// yields +Inf from InverseIntegral.
//
// The conversion helpers translate between the nominal daily decline D and the
// user-facing effective annual decline D_eff. They are exact inverses of one
// another and strictly monotonic, which the segment package relies on when it
// bisects for parameter bounds.
//
// # Example
//
//	d := decline.ArpsDEffToD(0.5, 0.9)
//	curve := decline.Arps{QStart: 1105.42, D: d, B: 0.9}
//	qEnd := curve.Predict(1825)
//	eur := curve.Integral(0, 1825)
package decline
