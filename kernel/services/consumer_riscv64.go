package services

import "unsafe"

// funcAddr extracts a bodyless Go function's resident code address, the
// same trick kernel/vdso's funcAddr0/funcAddr1 use for its own asm-backed entry
// points.
func funcAddr(f func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&f))
}
