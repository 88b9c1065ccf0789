package vmm

import "github.com/achilleasa/riscv-uk/kernel/addr"

// KernelLayout describes the physical boundaries the boot trampoline reads
// out of the linker script (mirroring gopheros's Kmain(multibootInfoPtr,
// kernelStart, kernelEnd uintptr) parameters, which are themselves
// assembly-resolved linker symbols). Every field is a physical address;
// NewKernelAddressSpace identity-maps each region at its own address.
type KernelLayout struct {
	TextStart, TextEnd     addr.PhysAddr
	RodataStart, RodataEnd addr.PhysAddr
	DataStart, DataEnd     addr.PhysAddr // covers both .data and .bss
	PhysMemoryEnd          addr.PhysAddr
	UARTBase               addr.PhysAddr
}

// NewKernelAddressSpace builds the `new_kernel()` template (spec §4.3):
// identity-mapped kernel .text (RX), .rodata (R), .data|.bss (RW), a window
// covering the rest of physical memory up to PhysMemoryEnd (RW), and the
// serial MMIO page (RW). Every user address space starts from a copy of
// this same set of areas before adding its own ELF/vDSO/stack mappings.
func NewKernelAddressSpace(layout KernelLayout) *AddressSpace {
	as := NewAddressSpace()

	as.Map(NewIdentical(rangeOf(layout.TextStart, layout.TextEnd), FlagR|FlagX))
	as.Map(NewIdentical(rangeOf(layout.RodataStart, layout.RodataEnd), FlagR))
	as.Map(NewIdentical(rangeOf(layout.DataStart, layout.DataEnd), FlagR|FlagW))
	as.Map(NewIdentical(rangeOf(layout.DataEnd, layout.PhysMemoryEnd), FlagR|FlagW))
	as.Map(NewIdentical(addr.Range{
		Start: addr.VirtPageNum(layout.UARTBase.Floor()),
		End:   addr.VirtPageNum(layout.UARTBase.Floor()) + 1,
	}, FlagR|FlagW))

	return as
}

func rangeOf(start, end addr.PhysAddr) addr.Range {
	return addr.Range{
		Start: addr.VirtPageNum(start.Floor()),
		End:   addr.VirtPageNum(end.Ceil()),
	}
}
