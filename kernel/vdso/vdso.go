// Package vdso is the kernel's vDSO: a small region of kernel-resident code
// mapped read-execute into every user address space (spec §3, §4.3, §4.4
// step 3), plus the module-scope exported-symbol table used to resolve
// JUMP_SLOT relocations against it (spec §4.4 step 4, §9 — "lazy statics
// for shared tables": this table is built once, never dynamized).
//
// There is no teacher file for this: gopheros never maps kernel code into
// user space. The vDSO's entry points (vdsoPutchar, vdsoPutcharAsync,
// vdsoKernelMeow) are naked RISC-V routines declared in vdso_riscv64.go and
// implemented in vdso_riscv64.s, bracketed by textStart/textEnd, two small
// asm functions that return their own address, the same way
// kernel/arch/riscv64's trampoline is addressed by TrapEntry() — a Go func
// declaration with no body, resolved at link time to a real instruction
// address. This file holds the glue (the export table, the physical-page
// helper); it refers to the entry points and to textStart/textEnd, which
// only vdso_riscv64.go declares, so the package builds for GOARCH=riscv64
// only.
package vdso

import (
	"unsafe"

	"github.com/achilleasa/riscv-uk/kernel/addr"
)

// Fixed virtual addresses every process maps the vDSO at (spec §6's process
// virtual memory map).
const (
	TextBase = addr.VirtAddr(0x3FFF_F000_0000)
	DataBase = addr.VirtAddr(0x3FFF_F000_1000)
)

// Putchar, PutcharAsync and KernelMeow are the Go-callable handles to the
// vDSO's asm-backed entry points, exported so kernel/process can hand their
// addresses to the ELF loader's export table. User code never calls
// through these Go function values — the vDSO is only ever reached by a
// user hart jumping to a raw address — but keeping them as ordinary Go
// funcs lets this package's own tests exercise the same code paths.
var (
	Putchar      = vdsoPutchar
	PutcharAsync = vdsoPutcharAsync
	KernelMeow   = vdsoKernelMeow
)

// PhysPages returns the physical page numbers spanning the vDSO's resident
// code, in order, for mapping as a Remote area (spec §4.4 step 3). Every
// address space this kernel builds identity-maps the kernel's own text, so
// a kernel virtual address here is numerically also its physical address.
func PhysPages() []addr.PhysPageNum {
	start := addr.NewPhysAddr(uint64(textStart())).Floor()
	end := addr.NewPhysAddr(uint64(textEnd())).Ceil()
	pages := make([]addr.PhysPageNum, 0, uint64(end)-uint64(start))
	for p := start; p < end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// KernelBase returns the kernel-resident address the JUMP_SLOT relocation
// formula (spec §4.4 step 4) treats as vdso_text_start.
func KernelBase() uintptr { return textStart() }

// Exports is the module-scope exported-method table JUMP_SLOT relocations
// resolve symbol names against (spec §4.4 step 4, §9). Names and addresses
// match the three //go:vdso-export pragmas in vdso_riscv64.go; this table
// is hand-maintained here but is exactly what tools/exporttable would
// regenerate from those pragmas against a built kernel image.
var Exports = map[string]uintptr{
	"putchar":       funcAddr1(vdsoPutchar),
	"putchar_async": funcAddr1(vdsoPutcharAsync),
	"kernel_meow":   funcAddr0(vdsoKernelMeow),
}

// funcAddr0 and funcAddr1 extract a bodyless Go function's resident code
// address for the two vDSO entry-point shapes this kernel has. Every
// function here is backed by vdso_riscv64.s, never by the Go compiler, so
// this is a plain pointer read, not a reflect-driven trick.
func funcAddr0(f func() uint64) uintptr {
	return **(**uintptr)(unsafe.Pointer(&f))
}

func funcAddr1(f func(uint64)) uintptr {
	return **(**uintptr)(unsafe.Pointer(&f))
}
