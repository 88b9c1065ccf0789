package services

import (
	"github.com/achilleasa/riscv-uk/kernel/addr"
	"github.com/achilleasa/riscv-uk/kernel/mem"
	"github.com/achilleasa/riscv-uk/kernel/pmm"
	"github.com/achilleasa/riscv-uk/kernel/process"
	"github.com/achilleasa/riscv-uk/kernel/vmm"
)

// Layout and PushFn are wired by boot.Run before any process can reach
// REQUEST_SERVICE; they let this package build and schedule a helper
// process without importing kernel/sched directly.
var (
	Layout vmm.KernelLayout
	PushFn func(p *process.Process) uint64
)

// consumerEntry is the putchar helper's resident entry point: a naked
// RISC-V loop (consumer_riscv64.s) that pops from the request ring and
// issues an SBI console_putchar ecall directly, entirely in S-mode, with
// no Go calling convention involved — the same reason the vDSO's own
// producer side (vdso_riscv64.s) is raw assembly rather than a Go
// function body (spec §4.7's "the kernel's built-in services spawn a
// kernel helper process, not a user one").
func consumerEntry()

// newPutcharChannel is services.Registry[Putchar] (spec §4.7): it
// allocates and zeroes the two shared frames, spawns the putchar helper
// with the request frame's physical address in a0, and returns both
// frames' physical addresses for REQUEST_SERVICE to map into the caller.
func newPutcharChannel() (addr.PhysAddr, addr.PhysAddr) {
	reqFrame := pmm.Alloc()
	respFrame := pmm.Alloc()
	mem.Memset(uintptr(reqFrame.Address()), 0, mem.PageSize)
	mem.Memset(uintptr(respFrame.Address()), 0, mem.PageSize)

	// Two address spaces will each map these frames (the caller's, via
	// REQUEST_SERVICE, and implicitly the helper's, via the kernel's own
	// identity window); neither owns them in the frame allocator's
	// sense, so they must never return to the free list.
	pmm.Leak(reqFrame)
	pmm.Leak(respFrame)

	reqPA, respPA := reqFrame.Address(), respFrame.Address()

	entry := funcAddr(consumerEntry)
	helper := process.NewKernel(entry, [2]uint64{uint64(reqPA), uint64(respPA)}, Layout)
	PushFn(helper)

	return reqPA, respPA
}
