package vmm

import "github.com/achilleasa/riscv-uk/kernel/addr"

// PTEFlag is a single Sv39 page-table-entry flag bit.
type PTEFlag uint64

// Sv39 PTE flag bits, matching the RISC-V privileged spec layout.
const (
	FlagV PTEFlag = 1 << 0 // valid
	FlagR PTEFlag = 1 << 1 // readable
	FlagW PTEFlag = 1 << 2 // writable
	FlagX PTEFlag = 1 << 3 // executable
	FlagU PTEFlag = 1 << 4 // accessible in U-mode
	FlagG PTEFlag = 1 << 5 // global
	FlagA PTEFlag = 1 << 6 // accessed
	FlagD PTEFlag = 1 << 7 // dirty

	flagBits  = 10
	ppnShift  = flagBits
	permMask  = FlagR | FlagW | FlagX | FlagU
)

// pageTableEntry is a 64-bit Sv39 PTE: ppn<<10 | flags.
type pageTableEntry uint64

func newPTE(ppn addr.PhysPageNum, flags PTEFlag) pageTableEntry {
	return pageTableEntry(uint64(ppn)<<ppnShift | uint64(flags))
}

// PPN extracts the physical page number encoded in the entry.
func (e pageTableEntry) PPN() addr.PhysPageNum {
	return addr.NewPhysPageNum(uint64(e) >> ppnShift)
}

// Flags returns the full flag byte stored in the entry.
func (e pageTableEntry) Flags() PTEFlag {
	return PTEFlag(uint64(e) & ((1 << flagBits) - 1))
}

// Valid reports whether the V bit is set.
func (e pageTableEntry) Valid() bool {
	return e.Flags()&FlagV != 0
}

// Leaf reports whether any of R|W|X is set. This kernel only ever emits
// leaves at level 0 (spec §4.2).
func (e pageTableEntry) Leaf() bool {
	return e.Flags()&(FlagR|FlagW|FlagX) != 0
}
