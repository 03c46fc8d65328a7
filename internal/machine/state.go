// Package machine implements the committed LZMA encoder state machine:
// it owns the authoritative FSM state, the recent-distance MRU stack,
// and the history-buffer cursor, and drives the literal, length,
// distance, and range coders for each token actually written to the
// output.
package machine

import (
	"github.com/golzma/lzma/internal/distcoder"
	"github.com/golzma/lzma/internal/historybuf"
	"github.com/golzma/lzma/internal/lengthcoder"
	"github.com/golzma/lzma/internal/literalcoder"
	"github.com/golzma/lzma/internal/probmodel"
	"github.com/golzma/lzma/internal/rangecoder"
)

// EOSDist is the sentinel 0-based distance value marking end-of-stream.
const EOSDist = 0xFFFFFFFF

// ES is the committed encoder state.
type ES struct {
	RC    *rangecoder.Encoder
	Model *probmodel.Model
	Hist  *historybuf.Buffer

	LC, LP, PB uint
	posMask    uint32

	State    uint32
	PrevByte byte
	Cursor   uint32
	TotalPos uint64
	RepDist  [4]uint32 // 0-based (actual distance - 1), MRU order, newest first
}

// New constructs an ES bound to the given range coder, probability
// model, and history buffer, for the given lc/lp/pb parameters.
func New(rc *rangecoder.Encoder, model *probmodel.Model, hist *historybuf.Buffer, lc, lp, pb uint) *ES {
	return &ES{
		RC:      rc,
		Model:   model,
		Hist:    hist,
		LC:      lc,
		LP:      lp,
		PB:      pb,
		posMask: (uint32(1) << pb) - 1,
	}
}

// PosState returns total_pos mod 2^pb.
func (s *ES) PosState() uint32 {
	return uint32(s.TotalPos) & s.posMask
}

// switchIndex returns the (state, pos_state) composite index used by
// the per-pos_state switch tables (isMatch, isRepG0Long).
func (s *ES) switchIndex() uint32 {
	return (s.State << probmodel.MaxPosBits) | s.PosState()
}

// matchByte returns the byte at the current rep0 distance, used for
// matched-literal coding.
func (s *ES) matchByte() byte {
	return s.Hist.At(s.Cursor - s.RepDist[0] - 1)
}

// CommitLiteral encodes b as a plain or matched literal and advances
// state.
func (s *ES) CommitLiteral(b byte) {
	idx2 := s.switchIndex()
	s.RC.EncodeBit(&s.Model.Switch.Match[idx2], 0)

	litIdx := literalcoder.Index(s.PrevByte, s.TotalPos, s.LC, s.LP)
	matched := probmodel.IsMatchedLiteralState(s.State)
	var bMatch byte
	if matched {
		bMatch = s.matchByte()
	}
	literalcoder.Encode(s.RC, s.Model.Lit, litIdx, matched, b, bMatch)

	s.State = probmodel.UpdateLiteral[s.State]
	s.Cursor = s.Hist.PutByte(s.Cursor, b)
	s.TotalPos++
	s.PrevByte = b
}

// CommitShortRep encodes a length-1 rep0 match.
func (s *ES) CommitShortRep() {
	idx2 := s.switchIndex()
	s.RC.EncodeBit(&s.Model.Switch.Match[idx2], 1)
	s.RC.EncodeBit(&s.Model.Switch.Rep[s.State], 1)
	s.RC.EncodeBit(&s.Model.Switch.RepG0[s.State], 0)
	s.RC.EncodeBit(&s.Model.Switch.Rep0Long[idx2], 0)

	s.State = probmodel.UpdateShortRep[s.State]
	v := s.matchByte()
	s.Cursor = s.Hist.PutByte(s.Cursor, v)
	s.TotalPos++
	s.PrevByte = v
}

// CommitRepMatch encodes a rep match selecting MRU slot idx (0-3) with
// the given length, rotating the MRU stack so that distance moves to
// slot 0.
func (s *ES) CommitRepMatch(idx int, length uint32) {
	idx2 := s.switchIndex()
	s.RC.EncodeBit(&s.Model.Switch.Match[idx2], 1)
	s.RC.EncodeBit(&s.Model.Switch.Rep[s.State], 1)

	switch idx {
	case 0:
		s.RC.EncodeBit(&s.Model.Switch.RepG0[s.State], 0)
		s.RC.EncodeBit(&s.Model.Switch.Rep0Long[idx2], 1)
	case 1:
		s.RC.EncodeBit(&s.Model.Switch.RepG0[s.State], 1)
		s.RC.EncodeBit(&s.Model.Switch.RepG1[s.State], 0)
	case 2:
		s.RC.EncodeBit(&s.Model.Switch.RepG0[s.State], 1)
		s.RC.EncodeBit(&s.Model.Switch.RepG1[s.State], 1)
		s.RC.EncodeBit(&s.Model.Switch.RepG2[s.State], 0)
	default: // 3
		s.RC.EncodeBit(&s.Model.Switch.RepG0[s.State], 1)
		s.RC.EncodeBit(&s.Model.Switch.RepG1[s.State], 1)
		s.RC.EncodeBit(&s.Model.Switch.RepG2[s.State], 1)
	}

	dist := s.RepDist[idx]
	for j := idx; j > 0; j-- {
		s.RepDist[j] = s.RepDist[j-1]
	}
	s.RepDist[0] = dist

	lengthcoder.Encode(s.RC, &s.Model.RepLen, int(s.PosState()), length)

	s.State = probmodel.UpdateRep[s.State]
	s.Cursor = s.Hist.CopyMatch(s.Cursor, dist, int(length))
	s.TotalPos += uint64(length)
	s.PrevByte = s.Hist.At(s.Cursor - 1)
}

// CommitMatch encodes a simple match at the given 0-based distance and
// length, pushing dist onto the front of the MRU stack.
func (s *ES) CommitMatch(dist uint32, length uint32) {
	idx2 := s.switchIndex()
	s.RC.EncodeBit(&s.Model.Switch.Match[idx2], 1)
	s.RC.EncodeBit(&s.Model.Switch.Rep[s.State], 0)

	lengthcoder.Encode(s.RC, &s.Model.Len, int(s.PosState()), length)
	distcoder.Encode(s.RC, s.Model, probmodel.LenState(length), dist)

	s.RepDist[3] = s.RepDist[2]
	s.RepDist[2] = s.RepDist[1]
	s.RepDist[1] = s.RepDist[0]
	s.RepDist[0] = dist

	s.State = probmodel.UpdateMatch[s.State]
	s.Cursor = s.Hist.CopyMatch(s.Cursor, dist, int(length))
	s.TotalPos += uint64(length)
	s.PrevByte = s.Hist.At(s.Cursor - 1)
}

// Snapshot is a value-typed copy of ES's mutable fields, used by the
// probability simulator to explore alternate encodings without mutating
// the committed encoder or its probability tables. Advancing a Snapshot
// mirrors the FSM/MRU transitions the matching Commit* method applies
// to a real ES, but never touches a probability table.
type Snapshot struct {
	State    uint32
	PrevByte byte
	Cursor   uint32
	TotalPos uint64
	RepDist  [4]uint32
}

// Snapshot captures s's current mutable fields.
func (s *ES) Snapshot() Snapshot {
	return Snapshot{
		State:    s.State,
		PrevByte: s.PrevByte,
		Cursor:   s.Cursor,
		TotalPos: s.TotalPos,
		RepDist:  s.RepDist,
	}
}

// PosState mirrors ES.PosState for a detached snapshot.
func (sn Snapshot) PosState(pb uint) uint32 {
	return uint32(sn.TotalPos) & ((uint32(1) << pb) - 1)
}

// SwitchIndex mirrors ES.switchIndex for a detached snapshot.
func (sn Snapshot) SwitchIndex(pb uint) uint32 {
	return (sn.State << probmodel.MaxPosBits) | sn.PosState(pb)
}

// AdvanceLiteral returns the snapshot after simulating a literal commit.
func (sn Snapshot) AdvanceLiteral(b byte) Snapshot {
	sn.State = probmodel.UpdateLiteral[sn.State]
	sn.Cursor++
	sn.TotalPos++
	sn.PrevByte = b
	return sn
}

// AdvanceShortRep returns the snapshot after simulating a short-rep
// commit; b is the replicated byte (equal to the rep0 match byte).
func (sn Snapshot) AdvanceShortRep(b byte) Snapshot {
	sn.State = probmodel.UpdateShortRep[sn.State]
	sn.Cursor++
	sn.TotalPos++
	sn.PrevByte = b
	return sn
}

// AdvanceMatch returns the snapshot after simulating a simple match
// commit at 0-based distance dist and the given length; lastByte is the
// final byte the match would copy (the new prevByte).
func (sn Snapshot) AdvanceMatch(dist, length uint32, lastByte byte) Snapshot {
	sn.RepDist[3] = sn.RepDist[2]
	sn.RepDist[2] = sn.RepDist[1]
	sn.RepDist[1] = sn.RepDist[0]
	sn.RepDist[0] = dist
	sn.State = probmodel.UpdateMatch[sn.State]
	sn.Cursor += length
	sn.TotalPos += uint64(length)
	sn.PrevByte = lastByte
	return sn
}

// AdvanceRep returns the snapshot after simulating a rep match commit
// selecting MRU slot idx, with the given length; lastByte is the final
// byte the match would copy.
func (sn Snapshot) AdvanceRep(idx int, length uint32, lastByte byte) Snapshot {
	dist := sn.RepDist[idx]
	for j := idx; j > 0; j-- {
		sn.RepDist[j] = sn.RepDist[j-1]
	}
	sn.RepDist[0] = dist
	sn.State = probmodel.UpdateRep[sn.State]
	sn.Cursor += length
	sn.TotalPos += uint64(length)
	sn.PrevByte = lastByte
	return sn
}

// CommitEOS encodes the end-of-stream marker: a simple match token
// with the sentinel distance. It does not touch the MRU stack, history
// buffer, or total_pos, since no real bytes follow.
func (s *ES) CommitEOS() {
	idx2 := s.switchIndex()
	s.RC.EncodeBit(&s.Model.Switch.Match[idx2], 1)
	s.RC.EncodeBit(&s.Model.Switch.Rep[s.State], 0)

	lengthcoder.Encode(s.RC, &s.Model.Len, int(s.PosState()), lengthcoder.MinLen)
	distcoder.Encode(s.RC, s.Model, probmodel.LenState(lengthcoder.MinLen), EOSDist)
}
