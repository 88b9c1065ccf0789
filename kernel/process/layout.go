// Package process ties together an address space, a loaded image and a
// trap frame into the single (MemorySet, TrapFrame) pair spec §3 calls a
// process. gopheros has no equivalent: its kernel never leaves ring 0. The
// shape of NewUser/NewKernel instead follows the reference implementation's
// own process::new_user/new_kernel constructors (original_source/src), built
// here out of kernel/elf, kernel/vdso and kernel/vmm.
package process

import "github.com/achilleasa/riscv-uk/kernel/addr"

// Fixed virtual addresses every process's template reserves (spec §6's
// process virtual memory map). User and kernel processes use disjoint
// stack regions only because they happen to be given the same constants in
// every address space this kernel builds; each process owns its own page
// table, so there is no real possibility of collision between them.
const (
	UserStackTop   = addr.VirtAddr(0x3FFF_E000_0000)
	UserStackPages = 16

	KernelStackTop   = addr.VirtAddr(0x3FFF_D000_0000)
	KernelStackPages = 4

	// ServiceRequestVA and ServiceResponseVA are where REQUEST_SERVICE
	// (spec §4.7) maps the two frames a service constructor hands back,
	// in every address space that asks for them.
	ServiceRequestVA  = addr.VirtAddr(0x6400_0000)
	ServiceResponseVA = addr.VirtAddr(0x6400_1000)
)
