// Package bittree implements the forward and reverse bit-tree coders:
// fixed-width symbols encoded through a balanced binary probability
// tree, root at index 1, left child 2k, right child 2k+1.
package bittree

import "github.com/golzma/lzma/internal/rangecoder"

// Encode walks probs (a tree of size 2^nbits, root at index 1) and
// encodes symbol's nbits bits MSB first.
func Encode(e *rangecoder.Encoder, probs []rangecoder.Prob, nbits int, symbol uint32) {
	m := uint32(1)
	for i := nbits - 1; i >= 0; i-- {
		bit := (symbol >> uint(i)) & 1
		e.EncodeBit(&probs[m], bit)
		m = (m << 1) | bit
	}
}

// EncodeReverse walks probs the same way as Encode, but draws bits from
// the LSB of symbol, right-shifting as it goes. Used for distance
// position models and the alignment coder.
func EncodeReverse(e *rangecoder.Encoder, probs []rangecoder.Prob, nbits int, symbol uint32) {
	EncodeReverseAt(e, probs, 0, nbits, symbol)
}

// EncodeReverseAt is EncodeReverse against a tree whose conceptual base
// sits at probs[base], where base may be negative: the distance
// position-model tables share one flat array across slots via an offset
// of base - slot - 1, which is -1 for the first slot. Since the walk
// always starts at tree index m=1, the first real array access is at
// probs[base+1], so base itself need never be a valid index.
func EncodeReverseAt(e *rangecoder.Encoder, probs []rangecoder.Prob, base int, nbits int, symbol uint32) {
	m := uint32(1)
	for i := 0; i < nbits; i++ {
		bit := symbol & 1
		symbol >>= 1
		e.EncodeBit(&probs[base+int(m)], bit)
		m = (m << 1) | bit
	}
}
