// Package series stores predicted forecast rates as compact binary blobs.
//
// A blob is a fixed 40-byte header followed by one payload. The payload holds
// the day indices as delta-of-delta zig-zag varints and the rates as Gorilla
// XOR bit packing, optionally compressed with zstd, S2 or LZ4. The header
// carries the xxHash64 of the well name and of the payload, so a truncated or
// altered blob is rejected with errs.ErrInvalidSeries.
//
// Typical use:
//
//	rates := f.Predict(days, segs, 0)
//	blob, err := series.Encode(series.New("WELL-7", days, rates), series.CompressionZstd)
//	...
//	s, err := series.Decode(blob)
package series
