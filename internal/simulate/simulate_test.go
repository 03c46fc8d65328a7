package simulate

import (
	"math"
	"testing"

	"github.com/golzma/lzma/internal/historybuf"
	"github.com/golzma/lzma/internal/machine"
	"github.com/golzma/lzma/internal/probmodel"
	"github.com/golzma/lzma/internal/rangecoder"
)

func newTestSim(t *testing.T) (*Sim, *probmodel.Model, *historybuf.Buffer) {
	t.Helper()
	model := probmodel.New(3, 0, 2)
	hist := historybuf.New(4096)
	return New(model, hist, 3, 0, 2), model, hist
}

// TestLiteralProbMatchesFreshState checks that, against all-ProbInit
// tables, the literal probability for any byte is exactly 0.5^9 (one
// switch bit plus 8 plain tree bits, each at p=0.5).
func TestLiteralProbMatchesFreshState(t *testing.T) {
	sim, _, _ := newTestSim(t)
	sn := machine.Snapshot{}
	want := math.Pow(0.5, 9)
	for _, b := range []byte{0, 1, 0x7F, 0x80, 0xFF} {
		got := sim.LiteralProb(sn, b)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("LiteralProb(%d) = %v, want %v", b, got, want)
		}
	}
}

// TestProbabilitiesDoNotMutate verifies the simulator never writes to
// the borrowed probability tables: running the same query twice must
// yield identical results, and an adjacent real commit (not performed
// here) would be the only thing allowed to change them.
func TestProbabilitiesDoNotMutate(t *testing.T) {
	sim, model, _ := newTestSim(t)
	sn := machine.Snapshot{}
	before := model.Switch.Match[0]
	_ = sim.LiteralProb(sn, 'z')
	_ = sim.ShortRepProb(sn)
	_ = sim.SimpleMatchProb(sn, 10, 5)
	after := model.Switch.Match[0]
	if before != after {
		t.Errorf("Switch.Match[0] changed from %v to %v", before, after)
	}
	if rangecoder.ProbInit != after {
		t.Errorf("expected untouched ProbInit, got %v", after)
	}
}

// TestShortRepProbFreshState checks the fresh-table short-rep
// probability: match=1, rep=1, repG0=0, rep0Long=0, each 0.5.
func TestShortRepProbFreshState(t *testing.T) {
	sim, _, _ := newTestSim(t)
	sn := machine.Snapshot{}
	want := math.Pow(0.5, 4)
	got := sim.ShortRepProb(sn)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("ShortRepProb = %v, want %v", got, want)
	}
}

// TestFindRepIndex exercises the MRU lookup used by StrictDLProb.
func TestFindRepIndex(t *testing.T) {
	sn := machine.Snapshot{RepDist: [4]uint32{5, 10, 15, 20}}
	tests := []struct {
		dist uint32
		want int
	}{
		{5, 0}, {10, 1}, {15, 2}, {20, 3}, {99, -1},
	}
	for _, tt := range tests {
		if got := FindRepIndex(sn, tt.dist); got != tt.want {
			t.Errorf("FindRepIndex(%d) = %d, want %d", tt.dist, got, tt.want)
		}
	}
}

// TestStrictDLProbPrefersRepWhenCoincident checks that when dist
// matches an MRU slot and the rep probability clears the malus
// threshold, StrictDLProb reports useRep.
func TestStrictDLProbPrefersRepWhenCoincident(t *testing.T) {
	sim, _, _ := newTestSim(t)
	sn := machine.Snapshot{RepDist: [4]uint32{41, 0, 0, 0}}
	_, useRep, repIdx := sim.StrictDLProb(sn, 41, 10)
	if !useRep {
		t.Fatalf("expected useRep=true on fresh tables (rep has strictly fewer bits)")
	}
	if repIdx != 0 {
		t.Errorf("repIdx = %d, want 0", repIdx)
	}
}

// TestStrictDLProbSimpleWhenNoCoincidence checks the non-rep path is
// taken when dist isn't in the MRU stack.
func TestStrictDLProbSimpleWhenNoCoincidence(t *testing.T) {
	sim, _, _ := newTestSim(t)
	sn := machine.Snapshot{RepDist: [4]uint32{1, 2, 3, 4}}
	prob, useRep, repIdx := sim.StrictDLProb(sn, 999, 10)
	if useRep || repIdx != -1 {
		t.Fatalf("expected simple-match path, got useRep=%v repIdx=%d", useRep, repIdx)
	}
	if prob <= 0 || prob >= 1 {
		t.Errorf("prob = %v, expected a value in (0, 1)", prob)
	}
}

// TestAdvanceLiteralUpdatesStateOnly checks that a snapshot advance
// transitions the FSM and prevByte without touching rep distances.
func TestAdvanceLiteralUpdatesStateOnly(t *testing.T) {
	sn := machine.Snapshot{State: 11, RepDist: [4]uint32{7, 8, 9, 10}}
	next := sn.AdvanceLiteral('q')
	if next.State != probmodel.UpdateLiteral[11] {
		t.Errorf("State = %d, want %d", next.State, probmodel.UpdateLiteral[11])
	}
	if next.PrevByte != 'q' {
		t.Errorf("PrevByte = %q, want 'q'", next.PrevByte)
	}
	if next.RepDist != sn.RepDist {
		t.Errorf("RepDist changed: got %v, want %v", next.RepDist, sn.RepDist)
	}
	if next.Cursor != sn.Cursor+1 || next.TotalPos != sn.TotalPos+1 {
		t.Errorf("cursor/totalPos did not advance by 1: %+v", next)
	}
}

// TestAdvanceMatchPushesMRU checks the MRU insertion-at-front semantics
// mirrored from machine.ES.CommitMatch.
func TestAdvanceMatchPushesMRU(t *testing.T) {
	sn := machine.Snapshot{RepDist: [4]uint32{1, 2, 3, 4}}
	next := sn.AdvanceMatch(99, 5, 'z')
	want := [4]uint32{99, 1, 2, 3}
	if next.RepDist != want {
		t.Errorf("RepDist = %v, want %v", next.RepDist, want)
	}
	if next.Cursor != 5 || next.TotalPos != 5 {
		t.Errorf("cursor/totalPos did not advance by length: %+v", next)
	}
}

// TestAdvanceRepRotatesToFront checks that selecting a non-zero MRU
// slot rotates it to the front without disturbing the relative order
// of the distances ahead of it.
func TestAdvanceRepRotatesToFront(t *testing.T) {
	sn := machine.Snapshot{RepDist: [4]uint32{1, 2, 3, 4}}
	next := sn.AdvanceRep(2, 6, 'y')
	want := [4]uint32{3, 1, 2, 4}
	if next.RepDist != want {
		t.Errorf("RepDist = %v, want %v", next.RepDist, want)
	}
}
