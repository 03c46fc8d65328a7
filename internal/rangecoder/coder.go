// Package rangecoder implements the LZMA range coder: an adaptive
// binary arithmetic coder with deferred-carry byte output, bit-exact
// with Igor Pavlov's LZMA SDK.
package rangecoder

// Width-normalization threshold and probability resolution.
const (
	widthMin  = 1 << 24
	ProbBits  = 11
	ProbScale = 1 << ProbBits
	ProbInit  = ProbScale / 2
	MoveBits  = 5
)

// Prob is an adaptive probability in [0, ProbScale]. The asymmetric
// update in EncodeBit keeps it within [2^MoveBits-1,
// ProbScale-(2^MoveBits-1)], so u16 storage is exact. The zero value is
// NOT a valid probability; use ProbInit (or NewProbs) to initialize.
type Prob uint16

// NewProbs returns a slice of n probabilities, all initialized to
// ProbInit (p=1/2).
func NewProbs(n int) []Prob {
	p := make([]Prob, n)
	for i := range p {
		p[i] = ProbInit
	}
	return p
}

// Encoder is the LZMA range coder. The encoded interval is
// [low, low+width). Zero value is not ready for use; call Init.
type Encoder struct {
	width     uint32
	low       uint64
	cache     byte
	cacheSize uint64

	out []byte
}

// Init resets the coder to its initial state and directs output at buf,
// which is grown with append; passing a pre-sized buffer avoids
// reallocation across Init calls.
func (e *Encoder) Init(buf []byte) {
	e.width = 0xFFFFFFFF
	e.low = 0
	e.cache = 0
	e.cacheSize = 1
	e.out = buf[:0]
}

// Bytes returns the bytes written so far.
func (e *Encoder) Bytes() []byte {
	return e.out
}

// writeByte appends a single output byte.
func (e *Encoder) writeByte(b byte) {
	e.out = append(e.out, b)
}

// shiftLow emits the next output byte, deferring runs of 0xFF until a
// carry out of the low accumulator can no longer reach them.
func (e *Encoder) shiftLow() {
	top32 := uint32(e.low >> 32)
	bot32 := uint32(e.low)
	if bot32 < 0xFF000000 || top32 != 0 {
		c := e.cache
		for {
			e.writeByte(c + byte(top32))
			c = 0xFF
			e.cacheSize--
			if e.cacheSize == 0 {
				break
			}
		}
		e.cache = byte(bot32 >> 24)
	}
	e.cacheSize++
	// The top byte of bot32 is already accounted for, either in cache or
	// in the pending-0xFF count; low keeps only the lower 24 bits.
	e.low = uint64(bot32 << 8)
}

// normalize shifts out a byte whenever width drops below widthMin.
func (e *Encoder) normalize() {
	if e.width < widthMin {
		e.width <<= 8
		e.shiftLow()
	}
}

// EncodeBit encodes a single bit against an adaptive probability, then
// moves that probability toward the bit just seen. prob must point at
// the live probability cell so the update is observed by future calls.
func (e *Encoder) EncodeBit(prob *Prob, symbol uint32) {
	bound := (e.width >> ProbBits) * uint32(*prob)
	if symbol == 0 {
		e.width = bound
		*prob += Prob((ProbScale - uint32(*prob)) >> MoveBits)
	} else {
		e.low += uint64(bound)
		e.width -= bound
		*prob -= Prob(uint32(*prob) >> MoveBits)
	}
	e.normalize()
}

// EncodeDirectBits encodes nbits equiprobable bits of value, MSB first,
// with no adaptive probability. Used for the high bits of large match
// distances.
func (e *Encoder) EncodeDirectBits(value uint32, nbits int) {
	for i := nbits - 1; i >= 0; i-- {
		e.width >>= 1
		bit := (value >> uint(i)) & 1
		mask := uint32(0) - bit // all-ones when bit=1, all-zeros when bit=0
		e.low += uint64(e.width & mask)
		e.normalize()
	}
}

// Flush drains the deferred-carry pipeline. Call exactly once, after the
// last token (and, if configured, the EOS marker) has been encoded.
func (e *Encoder) Flush() {
	for i := 0; i < 5; i++ {
		e.shiftLow()
	}
}
