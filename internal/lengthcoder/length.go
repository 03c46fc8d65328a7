// Package lengthcoder implements the match-length coder: lengths are
// split into low/mid/high sub-ranges selected by two choice bits, each
// sub-range coded through its own bit-tree.
package lengthcoder

import (
	"github.com/golzma/lzma/internal/bittree"
	"github.com/golzma/lzma/internal/probmodel"
	"github.com/golzma/lzma/internal/rangecoder"
)

// Encodable match-length domain.
const (
	MinLen = 2
	MaxLen = 273
)

// Encode writes l (MinLen <= l <= MaxLen) through p, choosing the low,
// mid, or high sub-range.
func Encode(e *rangecoder.Encoder, p *probmodel.LengthProbs, posState int, l uint32) {
	v := l - MinLen
	switch {
	case v < 8:
		e.EncodeBit(&p.Choice1, 0)
		bittree.Encode(e, p.Low[posState][:], 3, v)
	case v < 16:
		e.EncodeBit(&p.Choice1, 1)
		e.EncodeBit(&p.Choice2, 0)
		bittree.Encode(e, p.Mid[posState][:], 3, v-8)
	default:
		e.EncodeBit(&p.Choice1, 1)
		e.EncodeBit(&p.Choice2, 1)
		bittree.Encode(e, p.High[:], 8, v-16)
	}
}
