// Package optimize implements the variant optimizer: at level >= 2 it
// intercepts each literal or DL-code event the external LZ77 producer
// emits, scores the plausible alternative encodings with
// internal/simulate, and drives internal/machine along whichever path
// the probability tables currently favor.
//
// The decision is naturally recursive: commit a literal, then re-score
// the shortened DL code, sometimes deferring a tail literal until the
// shrinking bottoms out. Depth is bounded by ShortLenThreshold but
// would still strain small stacks, so it is implemented iteratively: an
// explicit remaining-length loop plays the role of the recursion, and a
// small LIFO of deferred tail bytes replays the commits a real call
// stack would have unwound in reverse order.
package optimize

import (
	"github.com/golzma/lzma/internal/lengthcoder"
	"github.com/golzma/lzma/internal/machine"
	"github.com/golzma/lzma/internal/simulate"
)

// DefaultShortLenThreshold is the match length at or below which the
// optimizer considers expanding a DL code into literals. The value is
// empirically tuned (from an earlier 18) and must stay at 79 for
// bit-reproducible output; Optimizer.ShortLenThreshold exists only so
// tests can probe shallower shrinking without claiming a different
// default.
const DefaultShortLenThreshold = 79

// LitThenDLThreshold is the fast-path cutoff at which a head byte is
// assumed probable enough as a literal that the full scored comparison
// can be skipped.
const LitThenDLThreshold = 0.875

// Optimizer drives es along the most-probable encoding of each LZ77
// event, consulting sim to score alternatives without disturbing
// committed state.
type Optimizer struct {
	ES  *machine.ES
	Sim *simulate.Sim

	// ShortLenThreshold overrides DefaultShortLenThreshold. New sets it
	// to the reference default; zero also selects that default.
	ShortLenThreshold uint32
}

// New returns an Optimizer over es and sim, using the reference
// SHORT_LEN_THRESHOLD.
func New(es *machine.ES, sim *simulate.Sim) *Optimizer {
	return &Optimizer{ES: es, Sim: sim, ShortLenThreshold: DefaultShortLenThreshold}
}

// anyLiteralStep scores committing b as a literal from sn, considering
// the short-rep alternative exactly as EmitLiteral would, and returns
// both the winning probability and the snapshot advanced along the
// winning path.
func (o *Optimizer) anyLiteralStep(sn machine.Snapshot, b byte) (float64, machine.Snapshot) {
	pLit := o.Sim.LiteralProb(sn, b)
	bMatch := o.ES.Hist.At(sn.Cursor - sn.RepDist[0] - 1)
	if b == bMatch && sn.TotalPos > uint64(sn.RepDist[0])+1 {
		if pSRM := o.Sim.ShortRepProb(sn); pSRM > pLit {
			return pSRM, sn.AdvanceShortRep(b)
		}
	}
	return pLit, sn.AdvanceLiteral(b)
}

// EmitLiteral commits b, rewriting it into a length-1 rep0 (short-rep)
// match whenever b equals the rep0 match byte and the short-rep form
// scores higher.
func (o *Optimizer) EmitLiteral(b byte) {
	sn := o.ES.Snapshot()
	bMatch := o.ES.Hist.At(sn.Cursor - sn.RepDist[0] - 1)
	if b == bMatch && sn.TotalPos > uint64(sn.RepDist[0])+1 {
		pLit := o.Sim.LiteralProb(sn, b)
		pSRM := o.Sim.ShortRepProb(sn)
		if pSRM > pLit {
			o.ES.CommitShortRep()
			return
		}
	}
	o.ES.CommitLiteral(b)
}

// expandedProb scores replacing the whole (d, L) match with its L
// source bytes emitted as literals (or short-reps), short-circuiting as
// soon as the running product falls below giveUp.
func (o *Optimizer) expandedProb(sn machine.Snapshot, d, L uint32, giveUp float64) float64 {
	cur := sn
	cursor := sn.Cursor
	prod := 1.0
	for i := uint32(0); i < L; i++ {
		b := o.ES.Hist.At(cursor - d + i)
		var step float64
		step, cur = o.anyLiteralStep(cur, b)
		prod *= step
		if prod < giveUp {
			return prod
		}
	}
	return prod
}

// expandMatch commits each of the L source bytes at actual distance d
// as a literal (or short-rep, per EmitLiteral), realizing a full
// expansion decision.
func (o *Optimizer) expandMatch(d, L uint32) {
	cursor := o.ES.Cursor
	for i := uint32(0); i < L; i++ {
		b := o.ES.Hist.At(cursor - d + i)
		o.EmitLiteral(b)
	}
}

// commitStrict commits a plain DL code at 0-based distance dist0 and
// length L, using the rep form at repIdx when useRep is set.
func (o *Optimizer) commitStrict(dist0, L uint32, useRep bool, repIdx int) {
	if useRep {
		o.ES.CommitRepMatch(repIdx, L)
		return
	}
	o.ES.CommitMatch(dist0, L)
}

// commitStrictAt scores and commits a strict DL code at actual distance
// d and length L against the encoder's live state.
func (o *Optimizer) commitStrictAt(d, L uint32) {
	sn := o.ES.Snapshot()
	dist0 := d - 1
	_, useRep, repIdx := o.Sim.StrictDLProb(sn, dist0, L)
	o.commitStrict(dist0, L, useRep, repIdx)
}

// malusLitThenDL biases the scored literal-then-shorter-DL comparison;
// the constants are empirical and part of the observable output.
func malusLitThenDL(d, L uint32) float64 {
	m := 0.064 - float64(d)*1e-9 - float64(L)*3e-5
	if m < 0 {
		return 0
	}
	return m
}

// malusDLThenLit biases the shorter-DL-then-literal comparison; the
// constants are empirical and part of the observable output.
func malusDLThenLit(d, L uint32) float64 {
	m := 0.135 - float64(d)*1e-8 - float64(L)*1e-4
	if m < 0 {
		return 0
	}
	return m
}

// shortLenThreshold returns the configured threshold, falling back to
// the reference default if the Optimizer was built without New.
func (o *Optimizer) shortLenThreshold() uint32 {
	if o.ShortLenThreshold == 0 {
		return DefaultShortLenThreshold
	}
	return o.ShortLenThreshold
}

// EmitDLCode routes a (d, L) match down the most probable of five
// paths: literal-then-shorter-DL (fast or scored), shorter-DL-then-
// literal, full expansion into literals, or the plain DL code. d is the
// actual (1-based) match distance as supplied by the external LZ77
// producer; L is the match length.
func (o *Optimizer) EmitDLCode(d, L uint32) {
	var deferred []byte

	for {
		if !(L <= o.shortLenThreshold() && L > lengthcoder.MinLen) {
			o.commitStrictAt(d, L)
			break
		}

		sn := o.ES.Snapshot()
		cursor := sn.Cursor
		head := o.ES.Hist.At(cursor - d)
		bTail := o.ES.Hist.At(cursor - d + L - 1)
		dist0 := d - 1

		// 1. Literal-then-shorter-DL, fast path.
		pHead := o.Sim.LiteralProb(sn, head)
		if pHead >= LitThenDLThreshold {
			o.EmitLiteral(head)
			L--
			continue
		}

		// 2. Literal-then-shorter-DL, scored path.
		pStrict, useRep, repIdx := o.Sim.StrictDLProb(sn, dist0, L)
		pExpand := o.expandedProb(sn, d, L, pStrict)
		pDLBest := pStrict
		if pExpand > pDLBest {
			pDLBest = pExpand
		}

		afterLit := sn.AdvanceLiteral(head)
		pAfter, _, _ := o.Sim.StrictDLProb(afterLit, dist0, L-1)
		if pHead*pAfter*malusLitThenDL(d, L) > pDLBest {
			o.EmitLiteral(head)
			L--
			continue
		}

		// 3. Shorter-DL-then-literal.
		lastShort := o.ES.Hist.At(cursor - d + L - 2)
		pShort, shortRep, shortIdx := o.Sim.StrictDLProb(sn, dist0, L-1)
		var afterDL machine.Snapshot
		if shortRep {
			afterDL = sn.AdvanceRep(shortIdx, L-1, lastShort)
		} else {
			afterDL = sn.AdvanceMatch(dist0, L-1, lastShort)
		}
		pTail := o.Sim.LiteralProb(afterDL, bTail)
		pDLThenLit := 0.995 * pShort * pTail * malusDLThenLit(d, L)
		if pDLThenLit > pDLBest {
			deferred = append(deferred, bTail)
			L--
			continue
		}

		// 4. Full expansion.
		if pExpand > pStrict {
			o.expandMatch(d, L)
			break
		}

		// 5. Fall through: emit the plain DL code.
		o.commitStrict(dist0, L, useRep, repIdx)
		break
	}

	for i := len(deferred) - 1; i >= 0; i-- {
		o.EmitLiteral(deferred[i])
	}
}
