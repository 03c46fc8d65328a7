package historybuf

// copyMatchBulkImpl selects the batched linearization strategy used for
// non-overlapping match copies. It is chosen once at process init from
// CPU capability bits and never reselected at runtime. Both candidates
// are pure Go: the wide variant only batches larger linear runs before
// handing them to copy().
var copyMatchBulkImpl = copyMatchBulkGo

// copyMatchBulk copies length non-overlapping bytes (dist+1 >= length,
// checked by the caller) from distance dist into the buffer at cursor.
func copyMatchBulk(b *Buffer, cursor, dist uint32, length int) uint32 {
	return copyMatchBulkImpl(b, cursor, dist, length)
}

// copyMatchBulkGo is the portable baseline: one copy() call per run of
// at most smallBatch bytes, split further where the circular buffer
// wraps.
func copyMatchBulkGo(b *Buffer, cursor, dist uint32, length int) uint32 {
	return linearizedCopy(b, cursor, dist, length, smallBatch)
}

// copyMatchBulkWide behaves identically to copyMatchBulkGo but uses a
// larger batch size; it is selected on AVX2-capable CPUs where wider
// copy() calls amortize better.
func copyMatchBulkWide(b *Buffer, cursor, dist uint32, length int) uint32 {
	return linearizedCopy(b, cursor, dist, length, wideBatch)
}

const (
	smallBatch = 64
	wideBatch  = 512
)

// linearizedCopy copies length bytes from (cursor-dist-1) to cursor,
// batchSize bytes at a time, splitting each batch further only where the
// source or destination range wraps the circular buffer.
func linearizedCopy(b *Buffer, cursor, dist uint32, length int, batchSize int) uint32 {
	src := cursor - dist - 1
	n := len(b.data)
	remaining := length
	for remaining > 0 {
		chunk := remaining
		if chunk > batchSize {
			chunk = batchSize
		}
		srcIdx := int(src) & (n - 1)
		dstIdx := int(cursor) & (n - 1)
		if srcIdx+chunk > n {
			chunk = n - srcIdx
		}
		if dstIdx+chunk > n {
			chunk = n - dstIdx
		}
		copy(b.data[dstIdx:dstIdx+chunk], b.data[srcIdx:srcIdx+chunk])
		cursor += uint32(chunk)
		src += uint32(chunk)
		remaining -= chunk
	}
	return cursor
}
