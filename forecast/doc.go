// Package forecast orchestrates a sorted list of segments into one forecast.
//
// A Forecaster evaluates the list by matching every index to the segment
// covering it, integrates it into EUR (estimated ultimate recovery) and
// blends it with historical production into cumulative volumes. Ratio
// variants multiply a ratio forecast (for example gas/oil) by the forecast
// of its base phase before integrating.
//
// Segments must be sorted by StartIdx and must not overlap; Validate checks
// both. Requested indices are expected in ascending order.
package forecast
