//go:build !linux

package bitmap

// adviseHugePages is a no-op on platforms without MADV_HUGEPAGE.
func adviseHugePages(words []uint32) {}
