// Package lzmaverify implements a decode-only LZMA reader used solely
// to verify this module's encoder in round-trip tests. It is never
// imported by non-test code: decoding is not part of the public
// surface, and this reader trades speed and robustness for a direct
// mirror of the encoder's own table layout.
package lzmaverify

import (
	"encoding/binary"
	"errors"

	"github.com/golzma/lzma/internal/historybuf"
	"github.com/golzma/lzma/internal/literalcoder"
	"github.com/golzma/lzma/internal/probmodel"
	"github.com/golzma/lzma/internal/rangecoder"
)

// eosDist is the sentinel 0-based distance marking end-of-stream
// (mirrors internal/machine.EOSDist).
const eosDist = 0xFFFFFFFF

// widthMin mirrors internal/rangecoder's unexported normalization
// threshold; duplicated here rather than exported from rangecoder,
// which has no decode-side use for it.
const widthMin = 1 << 24

var errShortHeader = errors.New("lzmaverify: header too short")
var errShortInput = errors.New("lzmaverify: truncated range-coded stream")

// DecodeProperties parses the 5-byte property + dictionary-size header
// written by this module's header.go, inverting the lc + 9*lp + 45*pb
// property-byte encoding.
func DecodeProperties(buf []byte) (lc, lp, pb int, dictSize uint32, rest []byte, err error) {
	if len(buf) < 5 {
		return 0, 0, 0, 0, nil, errShortHeader
	}
	p := int(buf[0])
	lc = p % 9
	r := p / 9
	lp = r % 5
	pb = r / 5
	dictSize = binary.LittleEndian.Uint32(buf[1:5])
	return lc, lp, pb, dictSize, buf[5:], nil
}

// rangeDecoder is the decode-side counterpart of internal/rangecoder's
// Encoder: same bound/width arithmetic and adaptive update rule, run in
// reverse to recover symbols from coded bytes instead of producing them.
type rangeDecoder struct {
	width uint32
	code  uint32
	buf   []byte
	pos   int
}

func newRangeDecoder(buf []byte) (*rangeDecoder, error) {
	if len(buf) < 5 {
		return nil, errShortInput
	}
	d := &rangeDecoder{width: 0xFFFFFFFF, buf: buf, pos: 1} // buf[0] is always 0
	for i := 0; i < 4; i++ {
		d.code = d.code<<8 | uint32(d.readByte())
	}
	return d, nil
}

func (d *rangeDecoder) readByte() byte {
	if d.pos >= len(d.buf) {
		return 0
	}
	b := d.buf[d.pos]
	d.pos++
	return b
}

func (d *rangeDecoder) normalize() {
	if d.width < widthMin {
		d.width <<= 8
		d.code = d.code<<8 | uint32(d.readByte())
	}
}

func (d *rangeDecoder) decodeBit(p *rangecoder.Prob) uint32 {
	bound := (d.width >> rangecoder.ProbBits) * uint32(*p)
	var bit uint32
	if d.code < bound {
		d.width = bound
		*p += rangecoder.Prob((rangecoder.ProbScale - uint32(*p)) >> rangecoder.MoveBits)
	} else {
		d.code -= bound
		d.width -= bound
		*p -= rangecoder.Prob(uint32(*p) >> rangecoder.MoveBits)
		bit = 1
	}
	d.normalize()
	return bit
}

func (d *rangeDecoder) decodeDirectBits(nbits int) uint32 {
	var res uint32
	for i := 0; i < nbits; i++ {
		d.width >>= 1
		d.code -= d.width
		t := uint32(0) - (d.code >> 31)
		d.code += d.width & t
		res = (res << 1) + (t + 1)
		d.normalize()
	}
	return res
}

func decodeTree(d *rangeDecoder, probs []rangecoder.Prob, nbits int) uint32 {
	m := uint32(1)
	for i := 0; i < nbits; i++ {
		m = (m << 1) | d.decodeBit(&probs[m])
	}
	return m - (1 << uint(nbits))
}

func decodeTreeReverseAt(d *rangeDecoder, probs []rangecoder.Prob, base, nbits int) uint32 {
	m := uint32(1)
	var symbol uint32
	for i := 0; i < nbits; i++ {
		bit := d.decodeBit(&probs[base+int(m)])
		m = (m << 1) | bit
		symbol |= bit << uint(i)
	}
	return symbol
}

func decodeLength(d *rangeDecoder, lp *probmodel.LengthProbs, posState int) uint32 {
	const minLen = 2
	if d.decodeBit(&lp.Choice1) == 0 {
		return minLen + decodeTree(d, lp.Low[posState][:], 3)
	}
	if d.decodeBit(&lp.Choice2) == 0 {
		return minLen + 8 + decodeTree(d, lp.Mid[posState][:], 3)
	}
	return minLen + 16 + decodeTree(d, lp.High[:], 8)
}

func decodeDistance(d *rangeDecoder, m *probmodel.Model, lenState uint32) uint32 {
	slot := decodeTree(d, m.DistSlot[lenState], probmodel.DistSlotBits)
	if slot < probmodel.StartDistModel {
		return slot
	}
	footerBits := (slot >> 1) - 1
	base := (2 | (slot & 1)) << footerBits
	if slot < probmodel.EndDistModel {
		offset := int(base) - int(slot) - 1
		return base + decodeTreeReverseAt(d, m.DistPos, offset, int(footerBits))
	}
	direct := d.decodeDirectBits(int(footerBits) - probmodel.AlignBits)
	align := decodeTreeReverseAt(d, m.Align, 0, probmodel.AlignBits)
	return base + (direct << probmodel.AlignBits) + align
}

func decodeLiteral(d *rangeDecoder, probs []rangecoder.Prob, litIdx int, matched bool, bMatch byte) byte {
	tree := probs[litIdx : litIdx+0x300]
	symbol := uint32(1)
	if matched {
		m := uint32(bMatch)
		for {
			matchBit := (m >> 7) & 1
			m <<= 1
			bit := d.decodeBit(&tree[((1+matchBit)<<8)|symbol])
			symbol = (symbol << 1) | bit
			if matchBit != bit || symbol >= 0x100 {
				break
			}
		}
	}
	for symbol < 0x100 {
		bit := d.decodeBit(&tree[symbol])
		symbol = (symbol << 1) | bit
	}
	return byte(symbol - 0x100)
}

// Decode decompresses a full LZMA stream as written by this module's
// Encoder: a 5-byte property header, optional 8-byte size field, the
// range-coded token stream, and an end-of-stream marker. Decoding ends
// only at that marker; the size field, when present, is skipped and does
// not bound the output. It mirrors internal/machine.ES's FSM, MRU,
// and history-buffer bookkeeping exactly, consuming instead of
// producing range-coder symbols.
func Decode(buf []byte, hasSize bool) ([]byte, error) {
	lc, lp, pb, dictSize, rest, err := DecodeProperties(buf)
	if err != nil {
		return nil, err
	}
	if hasSize {
		if len(rest) < 8 {
			return nil, errShortHeader
		}
		rest = rest[8:]
	}

	rd, err := newRangeDecoder(rest)
	if err != nil {
		return nil, err
	}

	model := probmodel.New(lc, lp, pb)
	hist := historybuf.New(dictSize)
	posMask := uint32(1)<<uint(pb) - 1

	var (
		state    uint32
		prevByte byte
		cursor   uint32
		totalPos uint64
		rep      [4]uint32
		out      []byte
	)

	for {
		posState := uint32(totalPos) & posMask
		idx2 := (state << probmodel.MaxPosBits) | posState

		if d := rd.decodeBit(&model.Switch.Match[idx2]); d == 0 {
			litIdx := literalcoder.Index(prevByte, totalPos, uint(lc), uint(lp))
			matched := probmodel.IsMatchedLiteralState(state)
			var bMatch byte
			if matched {
				bMatch = hist.At(cursor - rep[0] - 1)
			}
			b := decodeLiteral(rd, model.Lit, litIdx, matched, bMatch)
			out = append(out, b)
			state = probmodel.UpdateLiteral[state]
			cursor = hist.PutByte(cursor, b)
			totalPos++
			prevByte = b
			continue
		}

		var length, dist uint32
		if rd.decodeBit(&model.Switch.Rep[state]) == 0 {
			rep[3], rep[2], rep[1] = rep[2], rep[1], rep[0]
			length = decodeLength(rd, &model.Len, int(posState))
			rep[0] = decodeDistance(rd, model, probmodel.LenState(length))
			if rep[0] == eosDist {
				return out, nil
			}
			dist = rep[0]
			state = probmodel.UpdateMatch[state]
		} else if rd.decodeBit(&model.Switch.RepG0[state]) == 0 {
			if rd.decodeBit(&model.Switch.Rep0Long[idx2]) == 0 {
				length = 1
				dist = rep[0]
				state = probmodel.UpdateShortRep[state]
			} else {
				length = decodeLength(rd, &model.RepLen, int(posState))
				dist = rep[0]
				state = probmodel.UpdateRep[state]
			}
		} else {
			var idx int
			if rd.decodeBit(&model.Switch.RepG1[state]) == 0 {
				idx = 1
			} else if rd.decodeBit(&model.Switch.RepG2[state]) == 0 {
				idx = 2
			} else {
				idx = 3
			}
			dist = rep[idx]
			for j := idx; j > 0; j-- {
				rep[j] = rep[j-1]
			}
			rep[0] = dist
			length = decodeLength(rd, &model.RepLen, int(posState))
			state = probmodel.UpdateRep[state]
		}

		start := cursor
		cursor = hist.CopyMatch(cursor, dist, int(length))
		for i := uint32(0); i < length; i++ {
			out = append(out, hist.At(start+i))
		}
		totalPos += uint64(length)
		prevByte = hist.At(cursor - 1)
	}
}
