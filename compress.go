package lzma

import (
	"fmt"
	"io"

	"github.com/golzma/lzma/internal/lz77"
)

// Compress reads all of r, feeds it through the built-in greedy match
// finder into a fresh Encoder configured by p, and writes the framed
// bitstream to w. It returns the number of compressed bytes written.
//
// Callers supplying their own LZ77 front end use New and drive the
// Encoder's EmitLiteral/EmitDLCode directly instead.
func Compress(p Params, r io.Reader, w io.Writer) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("lzma: read input: %w", err)
	}
	if p.HeaderHasSize && p.UncompressedSize == 0 {
		p.UncompressedSize = uint64(len(data))
	}
	enc, err := New(p)
	if err != nil {
		return 0, err
	}
	if err := lz77.Compress(enc, data, enc.DictSize()); err != nil {
		return 0, err
	}
	return enc.Close(w)
}
