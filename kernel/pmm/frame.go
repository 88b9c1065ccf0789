// Package pmm manages allocation of physical memory frames. It ports the
// bump-pointer-plus-freelist design of gopheros's boot memory allocator
// (kernel/mem/pmm/allocator/bootmem.go) to a single allocator that serves
// the whole kernel lifetime, as spec'd for this kernel's frame allocator
// (no separate "early" vs "real" allocator phase is needed: the linker
// already tells us exactly where unmanaged physical memory begins).
package pmm

import (
	"github.com/achilleasa/riscv-uk/kernel"
	"github.com/achilleasa/riscv-uk/kernel/addr"
)

var (
	errAllocBeforeInit = &kernel.Error{Module: "pmm", Message: "Alloc called before Init"}
	errOutOfMemory     = &kernel.Error{Module: "pmm", Message: "physical memory exhausted"}

	// panicFn is mocked by tests and is automatically inlined by the
	// compiler, matching the seam vmm.go uses for kernel.Panic.
	panicFn = kernel.Panic
)

type state uint8

const (
	stateUninit state = iota
	stateInit
)

// Frame is an owning handle to one physical 4-KiB frame. The zero value is
// not a valid frame; callers obtain frames exclusively through Alloc.
type Frame struct {
	ppn addr.PhysPageNum
}

// PPN returns the physical page number backing f.
func (f Frame) PPN() addr.PhysPageNum { return f.ppn }

// Address returns the physical address of the start of f.
func (f Frame) Address() addr.PhysAddr { return f.ppn.Address() }

// allocator is the single process-wide frame allocator. It holds either an
// Uninit or an Init{freelist, bump} state, matching spec §4.1.
var allocator struct {
	state    state
	freelist []addr.PhysPageNum
	bump     addr.PhysPageNum
	end      addr.PhysPageNum // ceiling page of managed physical memory; 0 means "no limit enforced"
}

// Init transitions the allocator to Init, setting the bump pointer to the
// ceiling page of framesStart (the linker-provided start of unmanaged
// physical memory) and the hard ceiling to the floor page of framesEnd, so
// a partial last page is never handed out. framesEnd of 0 disables the
// ceiling check.
func Init(framesStart, framesEnd addr.PhysAddr) {
	allocator.bump = framesStart.Ceil()
	allocator.end = 0
	if framesEnd != 0 {
		allocator.end = framesEnd.Floor()
	}
	allocator.freelist = allocator.freelist[:0]
	allocator.state = stateInit
}

// Alloc hands out one physical frame. It is a fatal bug to call Alloc
// before Init, and a fatal bug (reported as a kernel.Panic, per spec §7
// kind 3) to call Alloc once physical memory is exhausted; the spec treats
// out-of-memory handling as a non-goal and requires allocators to panic on
// exhaustion rather than return an error.
func Alloc() Frame {
	if allocator.state != stateInit {
		panicFn(errAllocBeforeInit)
		return Frame{}
	}

	if n := len(allocator.freelist); n > 0 {
		ppn := allocator.freelist[n-1]
		allocator.freelist = allocator.freelist[:n-1]
		return Frame{ppn: ppn}
	}

	if allocator.end != 0 && allocator.bump >= allocator.end {
		panicFn(errOutOfMemory)
		return Frame{}
	}

	ppn := allocator.bump
	allocator.bump = allocator.bump.Add(1)
	return Frame{ppn: ppn}
}

// Free returns f's frame to the free list, making it available for reuse by
// a future call to Alloc. The allocator does not zero frames on either
// allocation or free; callers must zero or overwrite contents as needed.
func Free(f Frame) {
	allocator.freelist = append(allocator.freelist, f.ppn)
}

// Leak intentionally abandons ownership of f without returning it to the
// free list. Every service-channel constructor (spec §4.7) must call this
// for the frames it hands to a second address space, since this kernel has
// no reference-counted frame handle (see spec §9's "Shared physical
// pages" discussion).
func Leak(f Frame) {}
