// Package simulate implements the probability simulator: a
// pure-function mirror of internal/machine's committed encoding that
// reads (never writes) the live probability tables, and returns the
// floating-point probability a candidate token would have received had
// it actually been committed. It operates on machine.Snapshot values
// rather than a live machine.ES, so callers can explore several
// candidate continuations from the same starting point without
// disturbing committed state.
package simulate

import (
	"math"

	"github.com/golzma/lzma/internal/distcoder"
	"github.com/golzma/lzma/internal/historybuf"
	"github.com/golzma/lzma/internal/lengthcoder"
	"github.com/golzma/lzma/internal/literalcoder"
	"github.com/golzma/lzma/internal/machine"
	"github.com/golzma/lzma/internal/probmodel"
	"github.com/golzma/lzma/internal/rangecoder"
)

// Sim borrows the read-only tables a live ES would consult; it never
// mutates them and never drives a range coder.
type Sim struct {
	Model      *probmodel.Model
	Hist       *historybuf.Buffer
	LC, LP, PB uint
}

// New returns a Sim borrowing model and hist for the given parameters.
func New(model *probmodel.Model, hist *historybuf.Buffer, lc, lp, pb uint) *Sim {
	return &Sim{Model: model, Hist: hist, LC: lc, LP: lp, PB: pb}
}

// bit returns the probability that encoding symbol against p would
// produce, without touching p.
func bit(p rangecoder.Prob, symbol uint32) float64 {
	pr := float64(p) / float64(rangecoder.ProbScale)
	if symbol == 0 {
		return pr
	}
	return 1 - pr
}

// treeProb walks a forward (MSB-first) bit-tree the way bittree.Encode
// would, returning the product of sim_bit over each bit instead of
// encoding it.
func treeProb(probs []rangecoder.Prob, nbits int, symbol uint32) float64 {
	m := uint32(1)
	prod := 1.0
	for i := nbits - 1; i >= 0; i-- {
		b := (symbol >> uint(i)) & 1
		prod *= bit(probs[m], b)
		m = (m << 1) | b
	}
	return prod
}

// treeProbReverseAt mirrors bittree.EncodeReverseAt.
func treeProbReverseAt(probs []rangecoder.Prob, base int, nbits int, symbol uint32) float64 {
	m := uint32(1)
	prod := 1.0
	for i := 0; i < nbits; i++ {
		b := symbol & 1
		symbol >>= 1
		prod *= bit(probs[base+int(m)], b)
		m = (m << 1) | b
	}
	return prod
}

func treeProbReverse(probs []rangecoder.Prob, nbits int, symbol uint32) float64 {
	return treeProbReverseAt(probs, 0, nbits, symbol)
}

// literalTreeProb mirrors literalcoder.Encode's walk.
func literalTreeProb(probs []rangecoder.Prob, litIdx int, matched bool, b, bMatch byte) float64 {
	tree := probs[litIdx : litIdx+0x300]
	symbol := uint32(1)
	r := uint32(b)
	prod := 1.0

	if matched {
		m := uint32(bMatch)
		for {
			matchBit := (m >> 7) & 1
			m <<= 1
			bb := (r >> 7) & 1
			r <<= 1
			i := ((1 + matchBit) << 8) | symbol
			prod *= bit(tree[i], bb)
			symbol = (symbol << 1) | bb
			if matchBit != bb || symbol >= 0x100 {
				break
			}
		}
	}

	for symbol < 0x100 {
		bb := (r >> 7) & 1
		r <<= 1
		prod *= bit(tree[symbol], bb)
		symbol = (symbol << 1) | bb
	}
	return prod
}

// lengthProb mirrors lengthcoder.Encode's three-subrange dispatch.
func lengthProb(lp *probmodel.LengthProbs, posState uint32, length uint32) float64 {
	v := length - lengthcoder.MinLen
	switch {
	case v < 8:
		return bit(lp.Choice1, 0) * treeProb(lp.Low[posState][:], 3, v)
	case v < 16:
		return bit(lp.Choice1, 1) * bit(lp.Choice2, 0) * treeProb(lp.Mid[posState][:], 3, v-8)
	default:
		return bit(lp.Choice1, 1) * bit(lp.Choice2, 1) * treeProb(lp.High[:], 8, v-16)
	}
}

// distProb mirrors distcoder.Encode, including the equiprobable
// direct-bit phase's 0.5^(footer_bits - ALIGN_BITS) factor.
func distProb(model *probmodel.Model, length, dist uint32) float64 {
	lenState := probmodel.LenState(length)
	slot := distcoder.Slot(dist)
	p := treeProb(model.DistSlot[lenState], probmodel.DistSlotBits, slot)
	if slot < probmodel.StartDistModel {
		return p
	}

	footerBits := (slot >> 1) - 1
	base := (2 | (slot & 1)) << footerBits
	reduced := dist - base

	if slot < probmodel.EndDistModel {
		offset := int(base) - int(slot) - 1
		return p * treeProbReverseAt(model.DistPos, offset, int(footerBits), reduced)
	}

	directBits := int(footerBits) - probmodel.AlignBits
	p *= math.Pow(0.5, float64(directBits))
	p *= treeProbReverse(model.Align, probmodel.AlignBits, reduced&((1<<probmodel.AlignBits)-1))
	return p
}

// matchByte returns the byte the given snapshot's rep0 distance points
// at, the same source used by machine.ES.matchByte.
func (s *Sim) matchByte(sn machine.Snapshot) byte {
	return s.Hist.At(sn.Cursor - sn.RepDist[0] - 1)
}

// LiteralProb returns the probability that committing b as a literal
// from sn would have received, covering both plain and matched-mode
// literal coding.
func (s *Sim) LiteralProb(sn machine.Snapshot, b byte) float64 {
	idx2 := sn.SwitchIndex(s.PB)
	p := bit(s.Model.Switch.Match[idx2], 0)

	litIdx := literalcoder.Index(sn.PrevByte, sn.TotalPos, s.LC, s.LP)
	matched := probmodel.IsMatchedLiteralState(sn.State)
	if matched {
		p *= literalTreeProb(s.Model.Lit, litIdx, true, b, s.matchByte(sn))
	} else {
		p *= literalTreeProb(s.Model.Lit, litIdx, false, b, 0)
	}
	return p
}

// ShortRepProb returns the probability of encoding a length-1 rep0
// match from sn. Callers must ensure the byte at rep0 equals the head
// byte under consideration before treating this as a viable
// alternative.
func (s *Sim) ShortRepProb(sn machine.Snapshot) float64 {
	idx2 := sn.SwitchIndex(s.PB)
	p := bit(s.Model.Switch.Match[idx2], 1)
	p *= bit(s.Model.Switch.Rep[sn.State], 1)
	p *= bit(s.Model.Switch.RepG0[sn.State], 0)
	p *= bit(s.Model.Switch.Rep0Long[idx2], 0)
	return p
}

// SimpleMatchProb returns the probability of encoding (dist, length) as
// a plain simple-match token from sn, ignoring any rep-distance
// coincidence.
func (s *Sim) SimpleMatchProb(sn machine.Snapshot, dist, length uint32) float64 {
	idx2 := sn.SwitchIndex(s.PB)
	p := bit(s.Model.Switch.Match[idx2], 1)
	p *= bit(s.Model.Switch.Rep[sn.State], 0)
	p *= lengthProb(&s.Model.Len, sn.PosState(s.PB), length)
	p *= distProb(s.Model, length, dist)
	return p
}

// RepMatchProb returns the probability of encoding length bytes as a
// rep match selecting MRU slot idx from sn.
func (s *Sim) RepMatchProb(sn machine.Snapshot, idx int, length uint32) float64 {
	idx2 := sn.SwitchIndex(s.PB)
	p := bit(s.Model.Switch.Match[idx2], 1)
	p *= bit(s.Model.Switch.Rep[sn.State], 1)

	switch idx {
	case 0:
		p *= bit(s.Model.Switch.RepG0[sn.State], 0)
		p *= bit(s.Model.Switch.Rep0Long[idx2], 1)
	case 1:
		p *= bit(s.Model.Switch.RepG0[sn.State], 1)
		p *= bit(s.Model.Switch.RepG1[sn.State], 0)
	case 2:
		p *= bit(s.Model.Switch.RepG0[sn.State], 1)
		p *= bit(s.Model.Switch.RepG1[sn.State], 1)
		p *= bit(s.Model.Switch.RepG2[sn.State], 0)
	default: // 3
		p *= bit(s.Model.Switch.RepG0[sn.State], 1)
		p *= bit(s.Model.Switch.RepG1[sn.State], 1)
		p *= bit(s.Model.Switch.RepG2[sn.State], 1)
	}

	p *= lengthProb(&s.Model.RepLen, sn.PosState(s.PB), length)
	return p
}

// MalusSimpleMatchVsRep biases the strict-DL simple/rep comparison
// toward the rep form: rep-distance coding adapts and stays probable
// over a run, which a one-token comparison undervalues.
const MalusSimpleMatchVsRep = 0.55

// FindRepIndex returns the MRU slot holding dist, or -1 if dist is not
// one of the four recent distances.
func FindRepIndex(sn machine.Snapshot, dist uint32) int {
	for i, d := range sn.RepDist {
		if d == dist {
			return i
		}
	}
	return -1
}

// StrictDLProb returns the best probability achievable encoding (dist,
// length) as a strict DL code from sn: it prefers the rep form over the
// simple form whenever the rep distance coincides and the rep
// probability clears the simple probability scaled by
// MalusSimpleMatchVsRep. useRep and repIdx report which form was
// chosen.
func (s *Sim) StrictDLProb(sn machine.Snapshot, dist, length uint32) (prob float64, useRep bool, repIdx int) {
	simple := s.SimpleMatchProb(sn, dist, length)
	if idx := FindRepIndex(sn, dist); idx >= 0 {
		rep := s.RepMatchProb(sn, idx, length)
		if rep >= simple*MalusSimpleMatchVsRep {
			return rep, true, idx
		}
	}
	return simple, false, -1
}
