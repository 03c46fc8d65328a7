// Package lz77 implements a minimal greedy hash-chain match finder.
// The encoder core treats the LZ77 front end as pluggable; this one
// exists so cmd/lzmaenc and the round-trip tests have a real producer
// to drive internal/machine and internal/optimize with, instead of a
// literal-only stub.
package lz77

// Sink receives the literal/DL-code event stream a front end discovers.
// lzma.Encoder satisfies it directly.
type Sink interface {
	EmitLiteral(b byte) error
	EmitDLCode(dist, length uint32) error
}

// Match-finding tuning constants.
const (
	minMatch     = 3
	maxMatch     = 273
	hashBits     = 17
	hashSize     = 1 << hashBits
	maxChainIter = 64
)

func hash4(data []byte, i int) uint32 {
	v := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16
	return (v * 2654435761) >> (32 - hashBits)
}

// Compress feeds data into sink as a stream of literal and DL-code
// events, using a greedy longest-match-first-found strategy bounded by
// windowSize (the encoder's dictionary size: matches never reference
// further back than that). It stops and returns the first error sink
// reports.
func Compress(sink Sink, data []byte, windowSize uint32) error {
	n := len(data)
	if n < minMatch+2 {
		for _, b := range data {
			if err := sink.EmitLiteral(b); err != nil {
				return err
			}
		}
		return nil
	}

	head := make([]int32, hashSize)
	for i := range head {
		head[i] = -1
	}
	prev := make([]int32, n)

	insert := func(i int) {
		h := hash4(data, i)
		prev[i] = head[h]
		head[h] = int32(i)
	}

	i := 0
	limit := n - minMatch
	for i < n {
		if i > limit {
			if err := sink.EmitLiteral(data[i]); err != nil {
				return err
			}
			i++
			continue
		}

		h := hash4(data, i)
		cand := head[h]
		bestLen := 0
		bestDist := 0
		iter := 0
		minPos := i - int(windowSize)
		for cand >= 0 && int(cand) >= minPos && iter < maxChainIter {
			l := matchLen(data, int(cand), i, n)
			if l > bestLen {
				bestLen = l
				bestDist = i - int(cand)
				if l >= maxMatch {
					break
				}
			}
			cand = prev[cand]
			iter++
		}

		if bestLen >= minMatch {
			if bestLen > maxMatch {
				bestLen = maxMatch
			}
			if err := sink.EmitDLCode(uint32(bestDist), uint32(bestLen)); err != nil {
				return err
			}
			end := i + bestLen
			for ; i < end && i < n; i++ {
				if i <= limit {
					insert(i)
				}
			}
			continue
		}

		if err := sink.EmitLiteral(data[i]); err != nil {
			return err
		}
		insert(i)
		i++
	}
	return nil
}

func matchLen(data []byte, a, b, n int) int {
	l := 0
	for b+l < n && data[a+l] == data[b+l] && l < maxMatch {
		l++
	}
	return l
}
