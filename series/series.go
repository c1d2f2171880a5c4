package series

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/declinecurve/errs"
	"github.com/arloliu/declinecurve/internal/hash"
	"github.com/arloliu/declinecurve/internal/pool"
)

// Version is the blob layout written by Encode.
const Version = 1

// HeaderSize is the size in bytes of the fixed blob header.
const HeaderSize = 40

var magic = [4]byte{'D', 'C', 'S', 'R'}

// Series is a predicted rate per whole day index of one well.
type Series struct {
	WellID uint64
	Index  []float64
	Rate   []float64
}

// New returns a Series for the named well.
func New(well string, index, rate []float64) Series {
	return Series{WellID: hash.WellID(well), Index: index, Rate: rate}
}

// Header is the fixed little-endian prefix of a series blob:
//
//	magic[4] version[1] compression[1] reserved[2] count[4] indexLen[4]
//	wellID[8] firstIndex[8] checksum[8]
//
// indexLen is the uncompressed length of the index stream, checksum the
// xxHash64 of the (compressed) payload that follows the header.
type Header struct {
	Version     uint8
	Compression Compression
	Count       uint32
	IndexLen    uint32
	WellID      uint64
	FirstIndex  int64
	Checksum    uint64
}

func (h Header) appendTo(b []byte) []byte {
	b = append(b, magic[:]...)
	b = append(b, h.Version, byte(h.Compression), 0, 0)
	b = binary.LittleEndian.AppendUint32(b, h.Count)
	b = binary.LittleEndian.AppendUint32(b, h.IndexLen)
	b = binary.LittleEndian.AppendUint64(b, h.WellID)
	b = binary.LittleEndian.AppendUint64(b, uint64(h.FirstIndex)) //nolint:gosec
	b = binary.LittleEndian.AppendUint64(b, h.Checksum)

	return b
}

// ReadHeader parses the header of a series blob without touching its payload.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("blob of %d bytes shorter than header: %w", len(data), errs.ErrInvalidSeries)
	}
	if [4]byte(data[:4]) != magic {
		return Header{}, fmt.Errorf("bad magic %q: %w", data[:4], errs.ErrInvalidSeries)
	}

	h := Header{
		Version:     data[4],
		Compression: Compression(data[5]),
		Count:       binary.LittleEndian.Uint32(data[8:]),
		IndexLen:    binary.LittleEndian.Uint32(data[12:]),
		WellID:      binary.LittleEndian.Uint64(data[16:]),
		FirstIndex:  int64(binary.LittleEndian.Uint64(data[24:])), //nolint:gosec
		Checksum:    binary.LittleEndian.Uint64(data[32:]),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("version %d: %w", h.Version, errs.ErrInvalidSeries)
	}
	if _, err := CodecFor(h.Compression); err != nil {
		return Header{}, err
	}

	return h, nil
}

// wholeDays converts strictly ascending whole day indices to integers.
func wholeDays(index []float64) ([]int64, error) {
	out := make([]int64, len(index))
	for i, v := range index {
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return nil, fmt.Errorf("index %d (%g) is not a whole day: %w", i, v, errs.ErrInvalidSeries)
		}
		out[i] = int64(v)
		if i > 0 && out[i] <= out[i-1] {
			return nil, fmt.Errorf("index %d (%g) not after %g: %w", i, v, index[i-1], errs.ErrInvalidSeries)
		}
	}

	return out, nil
}

// Encode serializes s into a blob compressed with c.
func Encode(s Series, c Compression) ([]byte, error) {
	if len(s.Index) != len(s.Rate) {
		return nil, fmt.Errorf("series has %d indices and %d rates: %w", len(s.Index), len(s.Rate), errs.ErrMismatchedLength)
	}
	if len(s.Index) > math.MaxUint32 {
		return nil, fmt.Errorf("series of %d points: %w", len(s.Index), errs.ErrInvalidSeries)
	}
	codec, err := CodecFor(c)
	if err != nil {
		return nil, err
	}
	idx, err := wholeDays(s.Index)
	if err != nil {
		return nil, err
	}

	buf := pool.GetSeriesBuffer()
	defer pool.PutSeriesBuffer(buf)

	appendIndexDeltas(buf, idx)
	indexLen := buf.Len()
	enc := newRateEncoder(buf)
	for _, q := range s.Rate {
		enc.write(q)
	}
	enc.flush()

	payload, err := codec.Compress(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress %s payload: %w", c, err)
	}

	h := Header{
		Version:     Version,
		Compression: c,
		Count:       uint32(len(idx)), //nolint:gosec
		IndexLen:    uint32(indexLen), //nolint:gosec
		WellID:      s.WellID,
		Checksum:    hash.Checksum(payload),
	}
	if len(idx) > 0 {
		h.FirstIndex = idx[0]
	}

	out := make([]byte, 0, HeaderSize+len(payload))
	out = h.appendTo(out)

	return append(out, payload...), nil
}

// Decode parses a blob written by Encode.
func Decode(data []byte) (Series, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return Series{}, err
	}
	payload := data[HeaderSize:]
	if sum := hash.Checksum(payload); sum != h.Checksum {
		return Series{}, fmt.Errorf("checksum %x, header says %x: %w", sum, h.Checksum, errs.ErrInvalidSeries)
	}

	codec, _ := CodecFor(h.Compression)
	raw, err := codec.Decompress(payload)
	if err != nil {
		return Series{}, fmt.Errorf("%w: %w", errs.ErrInvalidSeries, err)
	}
	if int(h.IndexLen) > len(raw) {
		return Series{}, fmt.Errorf("index stream of %d bytes in %d byte payload: %w", h.IndexLen, len(raw), errs.ErrInvalidSeries)
	}

	// every index after the first takes at least one varint byte, every
	// rate after the first at least one bit
	if n := uint64(h.Count); n > 0 {
		rateBits := 8 * uint64(len(raw)-int(h.IndexLen))
		if n-1 > uint64(h.IndexLen) || 64+n-1 > rateBits {
			return Series{}, fmt.Errorf("%d values do not fit in %d byte payload: %w", n, len(raw), errs.ErrInvalidSeries)
		}
	}

	count := int(h.Count)
	idx, ok := readIndexDeltas(raw[:h.IndexLen], h.FirstIndex, count)
	if !ok {
		return Series{}, fmt.Errorf("corrupt index stream: %w", errs.ErrInvalidSeries)
	}
	rates, ok := readRates(raw[h.IndexLen:], count)
	if !ok {
		return Series{}, fmt.Errorf("corrupt rate stream: %w", errs.ErrInvalidSeries)
	}

	s := Series{WellID: h.WellID, Rate: rates}
	if count > 0 {
		s.Index = make([]float64, count)
		for i, v := range idx {
			s.Index[i] = float64(v)
		}
	}

	return s, nil
}
