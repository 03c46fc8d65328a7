package lzma

import (
	"fmt"
	"io"

	"github.com/golzma/lzma/internal/historybuf"
	"github.com/golzma/lzma/internal/lengthcoder"
	"github.com/golzma/lzma/internal/machine"
	"github.com/golzma/lzma/internal/optimize"
	"github.com/golzma/lzma/internal/probmodel"
	"github.com/golzma/lzma/internal/rangecoder"
	"github.com/golzma/lzma/internal/simulate"
)

// Encoder is the LZMA core. An external LZ77 producer calls
// EmitLiteral / EmitDLCode for each token it discovers; Encoder routes
// them through the variant optimizer at levels >= 2 or straight into
// the committed state machine at levels 0-1, and Close flushes the
// range coder and writes the framed bitstream to the caller's sink.
type Encoder struct {
	params   Params
	dictSize uint32

	rc    rangecoder.Encoder
	model *probmodel.Model
	hist  *historybuf.Buffer
	es    *machine.ES
	opt   *optimize.Optimizer

	closed bool
}

// New constructs an Encoder for the given parameters. It allocates the
// probability model and history buffer up front but writes nothing
// until the first Emit call.
func New(p Params) (*Encoder, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	dictSize := p.resolvedDictSize()
	e := &Encoder{params: p, dictSize: dictSize}
	e.model = probmodel.New(p.LC, p.LP, p.PB)
	e.hist = historybuf.New(dictSize)
	e.rc.Init(nil)
	e.es = machine.New(&e.rc, e.model, e.hist, uint(p.LC), uint(p.LP), uint(p.PB))

	if levelVariants(p.Level) {
		sim := simulate.New(e.model, e.hist, uint(p.LC), uint(p.LP), uint(p.PB))
		e.opt = optimize.New(e.es, sim)
	}

	return e, nil
}

// DictSize returns the dictionary size resolved at construction, after
// level presets and the level-3 clamp/round-up have been applied.
func (e *Encoder) DictSize() uint32 {
	return e.dictSize
}

// EmitLiteral commits b as a literal, possibly rewritten into a
// short-rep match by the variant optimizer at levels >= 2.
func (e *Encoder) EmitLiteral(b byte) error {
	if e.closed {
		return fmt.Errorf("lzma: %w: EmitLiteral after Close", ErrProducerProtocol)
	}
	if e.opt != nil {
		e.opt.EmitLiteral(b)
	} else {
		e.es.CommitLiteral(b)
	}
	return nil
}

// EmitDLCode commits a match. dist is the 1-based match distance and
// length the match length; the history at dist must already contain at
// least length valid bytes. The matched source bytes are staged into
// the history buffer before the optimizer runs, so that probes into
// the buffer during simulation see correct content even for
// self-overlapping matches (dist < length).
func (e *Encoder) EmitDLCode(dist, length uint32) error {
	if e.closed {
		return fmt.Errorf("lzma: %w: EmitDLCode after Close", ErrProducerProtocol)
	}
	if dist == 0 {
		return fmt.Errorf("lzma: %w: zero distance", ErrProducerProtocol)
	}
	if length < lengthcoder.MinLen || length > lengthcoder.MaxLen {
		return fmt.Errorf("lzma: %w: length %d out of range [%d,%d]", ErrProducerProtocol, length, lengthcoder.MinLen, lengthcoder.MaxLen)
	}
	if uint64(dist) > e.es.TotalPos {
		return fmt.Errorf("lzma: %w: distance %d exceeds available history (%d bytes)", ErrProducerProtocol, dist, e.es.TotalPos)
	}

	dist0 := dist - 1
	e.hist.CopyMatch(e.es.Cursor, dist0, int(length))

	if e.opt != nil {
		e.opt.EmitDLCode(dist, length)
		return nil
	}

	if idx := repIndexOf(e.es, dist0); idx >= 0 {
		e.es.CommitRepMatch(idx, length)
	} else {
		e.es.CommitMatch(dist0, length)
	}
	return nil
}

// repIndexOf returns the MRU slot holding dist0, or -1. Mirrors
// internal/simulate.FindRepIndex against a live ES rather than a
// Snapshot, for the non-optimizer (level 0-1) straight-through path.
func repIndexOf(es *machine.ES, dist0 uint32) int {
	for i, d := range es.RepDist {
		if d == dist0 {
			return i
		}
	}
	return -1
}

// Close emits the end-of-stream marker (if configured), flushes the
// range coder, and writes the complete framed bitstream (property
// header, optional size field, range-coded token stream, EOS) to w. It
// must be called exactly once, after the last Emit call. A write error
// from w is wrapped in ErrSinkAborted.
func (e *Encoder) Close(w io.Writer) (int64, error) {
	if e.closed {
		return 0, fmt.Errorf("lzma: %w: Close called twice", ErrProducerProtocol)
	}
	e.closed = true

	if e.params.EndMarker {
		e.es.CommitEOS()
	}
	e.rc.Flush()

	buf := writeHeader(make([]byte, 0, 13+len(e.rc.Bytes())), e.params, e.dictSize)
	buf = append(buf, e.rc.Bytes()...)

	// The history buffer is not needed past this point; drop every
	// reference to it before writing, so it is released on the error
	// return as well as the normal one.
	e.hist = nil
	e.es.Hist = nil
	if e.opt != nil {
		e.opt.Sim.Hist = nil
	}

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("lzma: %w: %v", ErrSinkAborted, err)
	}
	return int64(n), nil
}
