// Package historybuf implements the circular text history buffer: a
// byte buffer of size equal to the dictionary size, used for simulation
// probes and for staging match source bytes ahead of the variant
// optimizer.
package historybuf

import "math/bits"

// Buffer is a power-of-two-sized circular byte history.
type Buffer struct {
	data []byte
	mask uint32
}

// New allocates a Buffer holding at least size bytes; a size that is
// not a power of two is rounded up to the next one, so positions can be
// reduced with a mask.
func New(size uint32) *Buffer {
	if size&(size-1) != 0 {
		size = 1 << bits.Len32(size)
	}
	return &Buffer{data: make([]byte, size), mask: size - 1}
}

// Len returns the buffer's capacity.
func (b *Buffer) Len() int {
	return len(b.data)
}

// At returns the byte at the given cursor position modulo the buffer
// size.
func (b *Buffer) At(pos uint32) byte {
	return b.data[pos&b.mask]
}

// PutByte writes a single byte at cursor and returns the advanced
// cursor.
func (b *Buffer) PutByte(cursor uint32, v byte) uint32 {
	b.data[cursor&b.mask] = v
	return cursor + 1
}

// CopyMatch copies length bytes from distance dist (0-based: source
// byte i comes from (cursor - dist - 1 + i) mod size, the same
// convention rep distances are stored in) into the buffer starting at
// cursor, and returns the advanced cursor. Source and destination may
// overlap when dist+1 < length, in which case bytes are replicated
// forward one at a time; non-overlapping runs take the batched bulk
// path.
func (b *Buffer) CopyMatch(cursor uint32, dist uint32, length int) uint32 {
	if uint32(length) <= dist+1 {
		// Non-overlapping: source range is entirely behind the
		// destination range and can be copied in batches.
		return copyMatchBulk(b, cursor, dist, length)
	}
	for i := 0; i < length; i++ {
		v := b.At(cursor - dist - 1)
		cursor = b.PutByte(cursor, v)
	}
	return cursor
}
