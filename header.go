package lzma

import "encoding/binary"

// writeHeader appends the 5-byte property+dict-size header, and (if
// p.HeaderHasSize) the 8-byte little-endian uncompressed-size field, to
// buf.
func writeHeader(buf []byte, p Params, dictSize uint32) []byte {
	buf = append(buf, p.propertyByte())
	buf = binary.LittleEndian.AppendUint32(buf, dictSize)
	if p.HeaderHasSize {
		size := p.UncompressedSize
		if size == SizeUnknown {
			buf = append(buf, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
		} else {
			buf = binary.LittleEndian.AppendUint64(buf, size)
		}
	}
	return buf
}
