package vdso

// textStart and textEnd bracket the vDSO's resident code in the kernel's
// own address space; PhysPages() uses them to compute which physical pages
// back the region this kernel identity-maps at boot.
func textStart() uintptr
func textEnd() uintptr

// vdsoPutchar performs a synchronous PUTCHAR ecall (spec §4.7's "user-side
// ring protocol" companion: the simple, always-available path).
//
//go:vdso-export putchar
func vdsoPutchar(codepoint uint64)

// vdsoPutcharAsync implements the producer side of the putchar service
// ring (spec §4.7): on first use it issues REQUEST_SERVICE for service 0
// and records in the vDSO data page that it has done so; every call after
// that writes directly into the request ring, at the fixed REQ_RING address
// vdso_riscv64.s defines, with no syscall.
//
//go:vdso-export putchar_async
func vdsoPutcharAsync(codepoint uint64)

// vdsoKernelMeow is a pure, side-effect-free vDSO-resident function whose
// only purpose is to give JUMP_SLOT resolution (spec §8's worked example)
// something concrete to resolve against and a reader something to smile
// at — gopheros has its own just-for-fun nyan-cat boot screen
// (kernel/kmain/nyan.go); this is this kernel's equivalent.
//
//go:vdso-export kernel_meow
func vdsoKernelMeow() uint64
