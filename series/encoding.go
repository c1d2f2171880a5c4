package series

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/arloliu/declinecurve/internal/pool"
)

// appendIndexDeltas appends the indices after the first as zig-zag varints:
// the second as its delta, the rest as delta-of-delta. A daily series costs
// one byte per index.
func appendIndexDeltas(buf *pool.ByteBuffer, idx []int64) {
	if len(idx) < 2 {
		return
	}
	buf.Grow(len(idx) + 8)

	prevDelta := int64(0)
	for i := 1; i < len(idx); i++ {
		delta := idx[i] - idx[i-1]
		v := delta
		if i > 1 {
			v = delta - prevDelta
		}
		prevDelta = delta
		buf.B = binary.AppendUvarint(buf.B, uint64((v<<1)^(v>>63))) //nolint:gosec
	}
}

// readIndexDeltas rebuilds count indices from first and the delta stream.
func readIndexDeltas(data []byte, first int64, count int) ([]int64, bool) {
	if count == 0 {
		return nil, len(data) == 0
	}

	out := make([]int64, count)
	out[0] = first
	prevDelta := int64(0)
	for i := 1; i < count; i++ {
		u, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, false
		}
		data = data[n:]

		v := int64(u>>1) ^ -int64(u&1) //nolint:gosec
		delta := v
		if i > 1 {
			delta = prevDelta + v
		}
		prevDelta = delta
		out[i] = out[i-1] + delta
	}

	return out, len(data) == 0
}

// rateEncoder packs float64 rates with Gorilla XOR compression.
//
// The first value takes 64 bits. Each later value is XORed with its
// predecessor: an unchanged value costs a single 0 bit, otherwise a 1 bit is
// followed by either a 0 bit and the meaningful bits inside the previous
// leading/trailing zero window, or a 1 bit, 5 bits of leading zeros, 6 bits of
// block length and the meaningful bits.
type rateEncoder struct {
	buf          *pool.ByteBuffer
	acc          uint64
	accBits      int
	prev         uint64
	prevLeading  int
	prevTrailing int
	prevBlock    int // zero until the first window is written
	count        int
}

func newRateEncoder(buf *pool.ByteBuffer) *rateEncoder {
	return &rateEncoder{buf: buf}
}

func (e *rateEncoder) write(v float64) {
	valBits := math.Float64bits(v)
	e.count++
	if e.count == 1 {
		e.prev = valBits
		e.writeBits(valBits, 64)

		return
	}

	xor := valBits ^ e.prev
	e.prev = valBits
	if xor == 0 {
		e.writeBits(0, 1)
		return
	}
	e.writeBits(1, 1)

	leading := min(bits.LeadingZeros64(xor), 31)
	trailing := bits.TrailingZeros64(xor)

	if e.prevBlock > 0 && leading >= e.prevLeading && trailing >= e.prevTrailing {
		e.writeBits(0, 1)
		e.writeBits(xor>>e.prevTrailing, e.prevBlock)

		return
	}

	block := 64 - leading - trailing
	e.writeBits(1, 1)
	e.writeBits(uint64(leading), 5) //nolint:gosec
	e.writeBits(uint64(block-1), 6) //nolint:gosec
	e.writeBits(xor>>trailing, block)
	e.prevLeading, e.prevTrailing, e.prevBlock = leading, trailing, block
}

// writeBits appends the low numBits of value, most significant first.
func (e *rateEncoder) writeBits(value uint64, numBits int) {
	if numBits < 64 {
		value &= (1 << numBits) - 1
	}

	available := 64 - e.accBits
	if numBits <= available {
		e.acc = (e.acc << numBits) | value
		e.accBits += numBits
		if e.accBits == 64 {
			e.flush()
		}

		return
	}

	high := numBits - available
	e.acc = (e.acc << available) | (value >> high)
	e.accBits = 64
	e.flush()
	e.acc = value & ((1 << high) - 1)
	e.accBits = high
}

// flush moves the accumulated bits, left aligned, into the byte buffer.
func (e *rateEncoder) flush() {
	if e.accBits == 0 {
		return
	}

	aligned := e.acc << (64 - e.accBits)
	var word [8]byte
	binary.BigEndian.PutUint64(word[:], aligned)
	e.buf.B = append(e.buf.B, word[:(e.accBits+7)/8]...)
	e.acc, e.accBits = 0, 0
}

// bitReader reads a big-endian bit stream.
type bitReader struct {
	data []byte
	pos  int
}

func (r *bitReader) readBits(n int) (uint64, bool) {
	if r.pos+n > len(r.data)*8 {
		return 0, false
	}

	var v uint64
	for n > 0 {
		off := r.pos & 7
		avail := 8 - off
		take := min(avail, n)
		b := (uint64(r.data[r.pos>>3]) >> (avail - take)) & ((1 << take) - 1)
		v = (v << take) | b
		r.pos += take
		n -= take
	}

	return v, true
}

// readRates decodes count rates. The stream must end within its last byte.
func readRates(data []byte, count int) ([]float64, bool) {
	if count == 0 {
		return nil, len(data) == 0
	}

	r := &bitReader{data: data}
	out := make([]float64, count)

	prev, ok := r.readBits(64)
	if !ok {
		return nil, false
	}
	out[0] = math.Float64frombits(prev)

	leading, block := 0, 0
	for i := 1; i < count; i++ {
		changed, ok := r.readBits(1)
		if !ok {
			return nil, false
		}
		if changed == 1 {
			fresh, ok := r.readBits(1)
			if !ok {
				return nil, false
			}
			if fresh == 1 {
				l, ok1 := r.readBits(5)
				b, ok2 := r.readBits(6)
				if !ok1 || !ok2 {
					return nil, false
				}
				leading, block = int(l), int(b)+1
			}
			if block == 0 || leading+block > 64 {
				return nil, false
			}
			meaningful, ok := r.readBits(block)
			if !ok {
				return nil, false
			}
			prev ^= meaningful << (64 - leading - block)
		}
		out[i] = math.Float64frombits(prev)
	}

	return out, len(data)*8-r.pos < 8
}
