// errors.go defines public error types for the lzma package.

package lzma

import "errors"

// Public error types for encoder construction and operation.
var (
	// ErrInvalidLC indicates an out-of-range literal context bit count.
	// Valid values are 0 to 8.
	ErrInvalidLC = errors.New("lzma: invalid lc (must be 0-8)")

	// ErrInvalidLP indicates an out-of-range literal position bit count.
	// Valid values are 0 to 4.
	ErrInvalidLP = errors.New("lzma: invalid lp (must be 0-4)")

	// ErrInvalidPB indicates an out-of-range position-state bit count.
	// Valid values are 0 to 4.
	ErrInvalidPB = errors.New("lzma: invalid pb (must be 0-4)")

	// ErrInvalidLevel indicates an unsupported compression level.
	// Valid levels are 0, 1, 2, or 3.
	ErrInvalidLevel = errors.New("lzma: invalid level (must be 0-3)")

	// ErrInvalidDictSize indicates a dictionary size outside the
	// supported range of 2^12 to 2^25 bytes.
	ErrInvalidDictSize = errors.New("lzma: invalid dict size (must be 4096-33554432)")

	// ErrSinkAborted wraps an error returned by the caller's write_byte
	// sink. The encoder releases its history buffer before propagating.
	ErrSinkAborted = errors.New("lzma: output sink aborted")

	// ErrProducerProtocol indicates the LZ77 producer violated its
	// contract: a zero distance, an out-of-range length, or a rep match
	// requested against an empty MRU stack. This is a precondition
	// violation, not a recoverable condition.
	ErrProducerProtocol = errors.New("lzma: producer protocol violation")
)

// validLC reports whether lc is in the supported literal-context-bits range.
func validLC(lc int) bool {
	return lc >= 0 && lc <= 8
}

// validLP reports whether lp is in the supported literal-position-bits range.
func validLP(lp int) bool {
	return lp >= 0 && lp <= 4
}

// validPB reports whether pb is in the supported position-state-bits range.
func validPB(pb int) bool {
	return pb >= 0 && pb <= 4
}

// validLevel reports whether level is one of the four supported presets.
func validLevel(level int) bool {
	return level >= 0 && level <= 3
}

// validDictSize reports whether size falls within the supported dictionary
// size range of 2^12 to 2^25 bytes.
func validDictSize(size uint32) bool {
	return size >= minDictSize && size <= maxDictSize
}
