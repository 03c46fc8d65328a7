// Package probmodel owns the adaptive probability tables and the FSM
// transition tables of the LZMA encoder. It allocates raw probability
// storage; the tree shapes that index into it live with the coders that
// walk them.
package probmodel

import "github.com/golzma/lzma/internal/rangecoder"

// States is the FSM state count.
const States = 12

// MaxPosBits is the maximum number of position-context bits, bounding
// the size of the per-pos_state switch tables.
const MaxPosBits = 4

// Switch holds the binary decision probabilities that route a token to
// literal, simple match, rep match, or short-rep-match coding.
type Switch struct {
	Match    []rangecoder.Prob // [state<<MaxPosBits | pos_state]
	Rep      [States]rangecoder.Prob
	RepG0    [States]rangecoder.Prob
	RepG1    [States]rangecoder.Prob
	RepG2    [States]rangecoder.Prob
	Rep0Long []rangecoder.Prob // [state<<MaxPosBits | pos_state]
}

func newSwitch() Switch {
	n := States << MaxPosBits
	s := Switch{
		Match:    rangecoder.NewProbs(n),
		Rep0Long: rangecoder.NewProbs(n),
	}
	for i := 0; i < States; i++ {
		s.Rep[i] = rangecoder.ProbInit
		s.RepG0[i] = rangecoder.ProbInit
		s.RepG1[i] = rangecoder.ProbInit
		s.RepG2[i] = rangecoder.ProbInit
	}
	return s
}

// Model owns every adaptive probability table used by the encoder, plus
// the literal tree sized by lc/lp. Length, distance, and literal tree
// shapes (their bit-tree layout) live in their own packages; Model
// allocates the raw Prob storage they index into.
type Model struct {
	Switch Switch

	// Lit holds 0x300 * 2^(lc+lp) literal-tree probabilities. It is
	// allocated at full size regardless of whether the caller honors
	// the conventional lc+lp <= 4 constraint.
	Lit []rangecoder.Prob

	Len    LengthProbs
	RepLen LengthProbs

	DistSlot [lenStates][]rangecoder.Prob // 6-bit tree per len_state, size 64 each
	DistPos  []rangecoder.Prob            // shared reverse-tree storage, FullDistCount-EndDistModel
	Align    []rangecoder.Prob            // 16-entry reverse tree
}

// lenStates is the number of distinct length-state buckets used to pick
// a distance-slot tree: min(L-2, 3).
const lenStates = 4

// LengthProbs holds the three-subrange length-coder tables, duplicated
// for simple and rep matches.
type LengthProbs struct {
	Choice1 rangecoder.Prob
	Choice2 rangecoder.Prob
	Low     [][8]rangecoder.Prob // per pos_state, 3-bit tree (8 leaves incl. root slot 0)
	Mid     [][8]rangecoder.Prob
	High    [256]rangecoder.Prob // 8-bit tree
}

func newLengthProbs(posStates int) LengthProbs {
	lp := LengthProbs{
		Choice1: rangecoder.ProbInit,
		Choice2: rangecoder.ProbInit,
		Low:     make([][8]rangecoder.Prob, posStates),
		Mid:     make([][8]rangecoder.Prob, posStates),
	}
	for i := range lp.Low {
		for j := range lp.Low[i] {
			lp.Low[i][j] = rangecoder.ProbInit
			lp.Mid[i][j] = rangecoder.ProbInit
		}
	}
	for i := range lp.High {
		lp.High[i] = rangecoder.ProbInit
	}
	return lp
}

// New allocates and initializes a Model for the given lc, lp, pb
// parameters. Callers validate ranges before calling New.
func New(lc, lp, pb int) *Model {
	posStates := 1 << uint(pb)
	m := &Model{
		Switch: newSwitch(),
		Lit:    rangecoder.NewProbs(0x300 << uint(lc+lp)),
		Len:    newLengthProbs(posStates),
		RepLen: newLengthProbs(posStates),
		Align:  rangecoder.NewProbs(16),
	}
	for i := range m.DistSlot {
		m.DistSlot[i] = rangecoder.NewProbs(1 << DistSlotBits)
	}
	m.DistPos = rangecoder.NewProbs(FullDistCount - EndDistModel)
	return m
}

// Distance-model constants.
const (
	DistSlotBits   = 6
	StartDistModel = 4
	EndDistModel   = 14
	FullDistCount  = 1 << (EndDistModel / 2) // 128
	AlignBits      = 4
)

// LenState maps a match length L to the length-state bucket used to
// index DistSlot: min(L-2, 3).
func LenState(l uint32) uint32 {
	l -= 2
	if l >= lenStates {
		return lenStates - 1
	}
	return l
}

// FSM transition tables, indexed by current state, applied on literal,
// simple-match, rep-match, and short-rep emission respectively.
var (
	UpdateLiteral  = [States]uint32{0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 4, 5}
	UpdateMatch    = [States]uint32{7, 7, 7, 7, 7, 7, 7, 10, 10, 10, 10, 10}
	UpdateRep      = [States]uint32{8, 8, 8, 8, 8, 8, 8, 11, 11, 11, 11, 11}
	UpdateShortRep = [States]uint32{9, 9, 9, 9, 9, 9, 9, 11, 11, 11, 11, 11}
)

// IsMatchedLiteralState reports whether state indicates a match or rep
// was the last token, which switches the next literal to matched-mode
// coding.
func IsMatchedLiteralState(state uint32) bool {
	return state >= 7
}
