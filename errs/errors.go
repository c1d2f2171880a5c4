// Package errs defines the sentinel errors shared by the decline curve packages.
//
// Callers should match errors with errors.Is; call sites wrap these sentinels
// with context describing the violated bound or the rejected operation.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValueTooLarge is returned when a computed or requested value exceeds its upper bound.
	ErrValueTooLarge = errors.New("value too large")
	// ErrValueTooSmall is returned when a computed or requested value is below its lower bound.
	ErrValueTooSmall = errors.New("value too small")
	// ErrUnsupportedOperation is returned when an edit is meaningless for the segment kind.
	ErrUnsupportedOperation = errors.New("unsupported operation for this model")
	// ErrTargetUnreachable is returned when neither the terminal rate nor the well life can be honored.
	ErrTargetUnreachable = errors.New("target unreachable given well-life and domain bounds")
	// ErrInvalidTarget is returned when an edit is asked to absorb a change into an unknown field.
	ErrInvalidTarget = errors.New("invalid target field")
	// ErrInvalidField is returned for an unknown form field.
	ErrInvalidField = errors.New("invalid field")
	// ErrInvalidKind is returned for an unknown segment kind tag.
	ErrInvalidKind = errors.New("invalid segment kind")
	// ErrNonFinite is returned when a solve produced NaN or Inf.
	ErrNonFinite = errors.New("non-finite result")
)

var (
	// ErrUnsortedSegments is returned when segments are not ordered by start index.
	ErrUnsortedSegments = errors.New("segments not sorted by start index")
	// ErrOverlappingSegments is returned when two consecutive segments overlap.
	ErrOverlappingSegments = errors.New("segments overlap")
	// ErrMismatchedLength is returned when parallel slices differ in length.
	ErrMismatchedLength = errors.New("mismatched slice lengths")
	// ErrInvalidFrequency is returned for an unknown production data frequency.
	ErrInvalidFrequency = errors.New("invalid data frequency")
)

var (
	// ErrInvalidSeries is returned when a forecast series blob cannot be decoded.
	ErrInvalidSeries = errors.New("invalid forecast series blob")
	// ErrInvalidCompression is returned for an unknown compression type.
	ErrInvalidCompression = errors.New("invalid compression type")
)

// BoundError reports a value that fell outside of a domain bound.
//
// It matches ErrValueTooLarge when Upper is set and ErrValueTooSmall otherwise.
type BoundError struct {
	Field string
	Value float64
	Bound float64
	Upper bool
}

// NewTooLarge returns a BoundError for a value above its upper bound.
func NewTooLarge(field string, value, bound float64) *BoundError {
	return &BoundError{Field: field, Value: value, Bound: bound, Upper: true}
}

// NewTooSmall returns a BoundError for a value below its lower bound.
func NewTooSmall(field string, value, bound float64) *BoundError {
	return &BoundError{Field: field, Value: value, Bound: bound}
}

func (e *BoundError) Error() string {
	if e.Upper {
		return fmt.Sprintf("%s %g exceeds %g: %s", e.Field, e.Value, e.Bound, ErrValueTooLarge)
	}

	return fmt.Sprintf("%s %g below %g: %s", e.Field, e.Value, e.Bound, ErrValueTooSmall)
}

// Is lets errors.Is match the BoundError against the too large/too small sentinels.
func (e *BoundError) Is(target error) bool {
	if e.Upper {
		return target == ErrValueTooLarge
	}

	return target == ErrValueTooSmall
}
