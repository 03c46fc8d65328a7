//go:build amd64 && !purego

package historybuf

import "golang.org/x/sys/cpu"

func init() {
	if cpu.X86.HasAVX2 {
		copyMatchBulkImpl = copyMatchBulkWide
	}
}
