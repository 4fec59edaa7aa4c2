//go:build linux

package bitmap

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// adviseHugePages asks the kernel to back the filter with transparent huge
// pages, reducing TLB pressure on the read path. The hint is best-effort;
// failures are ignored.
func adviseHugePages(words []uint32) {
	if len(words) == 0 {
		return
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)
	_ = unix.Madvise(b, unix.MADV_HUGEPAGE)
}
