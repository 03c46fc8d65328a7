package lzma

// Dictionary size bounds; requested sizes are clamped into this range.
const (
	minDictSize uint32 = 1 << 12
	maxDictSize uint32 = 1 << 25
)

// levelDictSize gives the conventional dictionary size for levels 0-2.
// Level 3 instead rounds the caller's requested dict_size up to a power
// of two (see Params.resolvedDictSize).
var levelDictSize = [4]uint32{
	0: 1 << 16, // 64 KiB
	1: 1 << 23, // 8 MiB
	2: 1 << 24, // 16 MiB
	3: 1 << 25, // default when DictSize is unset; overridden by the caller's dict_size, rounded up
}

// levelVariants reports whether the variant optimizer runs at the given
// level.
func levelVariants(level int) bool {
	return level >= 2
}

// Params configures an Encoder.
type Params struct {
	// Level sets the dictionary size preset, and (for levels >= 2)
	// enables the variant-selection optimizer. Domain: 0-3.
	Level int

	// LC is the number of literal context bits. Domain: 0-8.
	LC int

	// LP is the number of literal position bits. Domain: 0-4.
	LP int

	// PB is the number of position-state bits. Domain: 0-4.
	PB int

	// EndMarker requests an end-of-stream marker be emitted on Close.
	EndMarker bool

	// HeaderHasSize requests an 8-byte uncompressed-size field in the
	// property header. When false, the size field is omitted entirely
	// (not even as an all-0xFF placeholder).
	HeaderHasSize bool

	// UncompressedSize is written into the header when HeaderHasSize is
	// true and the size is known ahead of time. Use SizeUnknown when it
	// is not.
	UncompressedSize uint64

	// DictSize requests a specific dictionary size in bytes. It is
	// clamped to [2^12, 2^25] for every level; for level 3 only it is
	// additionally rounded up to the next power of two. Levels 0-2
	// ignore DictSize and use their fixed preset (see levelDictSize)
	// unless DictSize is explicitly set larger than the preset's
	// maximum, which still applies the clamp.
	DictSize uint32
}

// SizeUnknown marks Params.UncompressedSize as not known ahead of time;
// the header field (if present) is written as all-0xFF.
const SizeUnknown = ^uint64(0)

// DefaultParams returns the conventional (lc=3, lp=0, pb=2) parameter set
// used by the reference encoder's default preset, at the given level.
func DefaultParams(level int) Params {
	return Params{
		Level:     level,
		LC:        3,
		LP:        0,
		PB:        2,
		EndMarker: true,
	}
}

// validate checks each field's individual domain. It deliberately does
// not enforce lc+lp <= 4; callers who need strict compatibility with
// every decoder enforce that sum themselves.
func (p Params) validate() error {
	switch {
	case !validLevel(p.Level):
		return ErrInvalidLevel
	case !validLC(p.LC):
		return ErrInvalidLC
	case !validLP(p.LP):
		return ErrInvalidLP
	case !validPB(p.PB):
		return ErrInvalidPB
	}
	if p.DictSize != 0 && !validDictSize(clampDictSize(p.DictSize)) {
		return ErrInvalidDictSize
	}
	return nil
}

// clampDictSize clamps size into [minDictSize, maxDictSize].
func clampDictSize(size uint32) uint32 {
	if size < minDictSize {
		return minDictSize
	}
	if size > maxDictSize {
		return maxDictSize
	}
	return size
}

// nextPow2 rounds size up to the next power of two (size itself if it
// already is one).
func nextPow2(size uint32) uint32 {
	if size == 0 {
		return 1
	}
	size--
	size |= size >> 1
	size |= size >> 2
	size |= size >> 4
	size |= size >> 8
	size |= size >> 16
	size++
	return size
}

// resolvedDictSize computes the effective dictionary size for these
// params: for levels 0-2 the preset, or the clamped DictSize when that
// is larger than the preset (not rounded); clamp-and-round-up-to-power-
// of-two for level 3.
func (p Params) resolvedDictSize() uint32 {
	if p.Level == 3 {
		size := p.DictSize
		if size == 0 {
			size = levelDictSize[3]
		}
		return nextPow2(clampDictSize(size))
	}
	if p.DictSize > levelDictSize[p.Level] {
		return clampDictSize(p.DictSize)
	}
	return levelDictSize[p.Level]
}

// propertyByte computes the single-byte LZMA property encoding.
func (p Params) propertyByte() byte {
	return byte(p.LC + 9*p.LP + 45*p.PB)
}
