// Package segment implements the per-kind parameter logic of forecast segments.
//
// A segment is a flat Record tagged with a Kind. The Engine dispatches every
// operation to the strategy of the record's kind:
//
//   - evaluation: Predict, Integral, InverseIntegral and FirstDerivative
//   - completion: GenerateSegmentParameter fills in missing parameters
//   - editing: the Change*, Calc* and Button* operations return a new record
//     whose derived fields are consistent with the edited one
//   - form ranges: GetFormCalcRange reports the interval a field can be
//     edited within without pushing any other field out of bounds
//
// Edits never modify their input. An edit that would leave the domain fails
// with an error matching errs.ErrValueTooLarge or errs.ErrValueTooSmall; an
// edit that is meaningless for a kind fails with errs.ErrUnsupportedOperation.
//
// Example:
//
//	eng, _ := segment.New()
//	seg := eng.GenerateSegmentParameter(segment.Record{
//		Kind:     segment.KindArps,
//		StartIdx: 42328,
//		EndIdx:   44153,
//		QStart:   1105.42,
//		DEff:     0.5,
//		B:        0.9,
//	})
//	seg, err := eng.ChangeQEnd(seg, 500, segment.FieldDEff)
package segment
