// Package distcoder implements the match-distance coder: a 6-bit
// distance-slot tree, a reverse position-model tree for mid-range
// slots, and direct+alignment bits for large slots.
package distcoder

import (
	"math/bits"

	"github.com/golzma/lzma/internal/bittree"
	"github.com/golzma/lzma/internal/probmodel"
	"github.com/golzma/lzma/internal/rangecoder"
)

// Slot computes the 6-bit logarithmic distance slot for dist: dist
// itself for small distances, otherwise 2*floor(log2 dist) plus the
// bit below the top bit.
func Slot(dist uint32) uint32 {
	if dist < probmodel.StartDistModel {
		return dist
	}
	n := 31 - uint32(bits.LeadingZeros32(dist)) // floor(log2 dist)
	return (n << 1) | ((dist >> (n - 1)) & 1)
}

// Encode writes dist through m, using lenState to pick the slot tree.
// dist is the 0-based distance offset (actual match distance minus one);
// callers are responsible for that conversion, matching the convention
// used for rep_dist storage throughout the encoder state machine.
func Encode(e *rangecoder.Encoder, m *probmodel.Model, lenState uint32, dist uint32) {
	slot := Slot(dist)
	bittree.Encode(e, m.DistSlot[lenState], probmodel.DistSlotBits, slot)

	if slot < probmodel.StartDistModel {
		return
	}

	footerBits := (slot >> 1) - 1
	base := (2 | (slot & 1)) << footerBits
	reduced := dist - base

	if slot < probmodel.EndDistModel {
		offset := int(base) - int(slot) - 1
		bittree.EncodeReverseAt(e, m.DistPos, offset, int(footerBits), reduced)
		return
	}

	e.EncodeDirectBits(reduced>>probmodel.AlignBits, int(footerBits)-probmodel.AlignBits)
	bittree.EncodeReverse(e, m.Align, probmodel.AlignBits, reduced&((1<<probmodel.AlignBits)-1))
}
