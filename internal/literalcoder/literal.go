// Package literalcoder implements the literal byte coder, in plain mode
// and in "matched" mode, where the byte at the last match distance
// supplies extra context until the symbol being built diverges from it.
package literalcoder

import "github.com/golzma/lzma/internal/rangecoder"

// Index computes the offset of the 0x300-entry probability cluster for
// the literal at totalPos following prevByte.
func Index(prevByte byte, totalPos uint64, lc, lp uint) int {
	posMask := uint64(1)<<lp - 1
	return int(0x300 * (((totalPos & posMask) << lc) | uint64(prevByte>>(8-lc))))
}

// Encode writes b through the 0x300-entry cluster of probs starting at
// litIdx. When matched is true, the coder additionally consults bMatch
// (the byte at the last rep0 distance) until the symbol being built
// diverges from it, after which it falls back to plain encoding for the
// remaining bits.
func Encode(e *rangecoder.Encoder, probs []rangecoder.Prob, litIdx int, matched bool, b, bMatch byte) {
	tree := probs[litIdx : litIdx+0x300]
	symbol := uint32(1)
	r := uint32(b)

	if matched {
		m := uint32(bMatch)
		for {
			matchBit := (m >> 7) & 1
			m <<= 1
			bit := (r >> 7) & 1
			r <<= 1
			i := ((1 + matchBit) << 8) | symbol
			e.EncodeBit(&tree[i], bit)
			symbol = (symbol << 1) | bit
			if matchBit != bit || symbol >= 0x100 {
				break
			}
		}
	}

	for symbol < 0x100 {
		bit := (r >> 7) & 1
		r <<= 1
		e.EncodeBit(&tree[symbol], bit)
		symbol = (symbol << 1) | bit
	}
}
