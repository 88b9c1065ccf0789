package vmm

import (
	"unsafe"

	"github.com/achilleasa/riscv-uk/kernel"
	"github.com/achilleasa/riscv-uk/kernel/addr"
	"github.com/achilleasa/riscv-uk/kernel/mem"
	"github.com/achilleasa/riscv-uk/kernel/pmm"
)

var (
	errMapAlreadyValid  = &kernel.Error{Module: "vmm", Message: "map target is already a valid leaf"}
	errUnmapNotValid    = &kernel.Error{Module: "vmm", Message: "unmap target is not a valid leaf"}
	errTranslateInvalid = &kernel.Error{Module: "vmm", Message: "translate: no valid mapping"}

	// allocFrameFn and panicFn are mocked by tests and are automatically
	// inlined by the compiler, matching the vmm.go / pdt.go seam pattern
	// in the teacher (frameAllocator, activePDTFn, ...).
	allocFrameFn = pmm.Alloc
	panicFn      = kernel.Panic
)

// physToVirt returns the kernel-visible address for a physical address.
// Every address space this kernel builds (spec §4.3's new_kernel template)
// identity-maps the whole of physical memory in a RW window, so the kernel
// can always dereference a physical page number directly instead of having
// to temporarily map it the way gopheros's x86 recursive PDT scheme does
// (kernel/mem/vmm/pdt.go) — the RISC-V convention of carrying a permanent
// physical-memory window makes that machinery unnecessary.
func physToVirt(pa addr.PhysAddr) uintptr { return uintptr(pa) }

func pteAt(ppn addr.PhysPageNum, index uint64) *pageTableEntry {
	base := physToVirt(ppn.Address())
	return (*pageTableEntry)(unsafe.Pointer(base + uintptr(index)*8))
}

// PageTable is a three-level Sv39 page table. It owns the root physical
// page number and every intermediate-table frame it has ever allocated
// (spec §4.2); leaf frames themselves are owned by the map area that
// requested them, not by the table.
type PageTable struct {
	root   addr.PhysPageNum
	tables []pmm.Frame
}

// NewPageTable allocates a fresh, zeroed root table.
func NewPageTable() *PageTable {
	root := allocFrameFn()
	mem.Memset(physToVirt(root.Address()), 0, mem.PageSize)
	return &PageTable{root: root.PPN()}
}

// Root returns the physical page number of the table root, as installed
// into satp on activation.
func (pt *PageTable) Root() addr.PhysPageNum { return pt.root }

// Map installs vpn -> ppn with the given flags (V is added automatically).
// It is a fatal bug (spec §4.2 precondition) to map a vpn whose leaf PTE is
// already valid.
func (pt *PageTable) Map(vpn addr.VirtPageNum, ppn addr.PhysPageNum, flags PTEFlag) {
	leaf := pt.walkCreate(vpn)
	if leaf.Valid() {
		panicFn(errMapAlreadyValid)
		return
	}
	*leaf = newPTE(ppn, flags|FlagV)
}

// Unmap clears the leaf PTE for vpn. It is a fatal bug to unmap a vpn that
// is not currently mapped.
func (pt *PageTable) Unmap(vpn addr.VirtPageNum) {
	leaf := pt.walkExisting(vpn)
	if leaf == nil || !leaf.Valid() {
		panicFn(errUnmapNotValid)
		return
	}
	*leaf = 0
}

// Translate returns the leaf PTE mapping vpn, or ok=false if any level of
// the walk is invalid.
func (pt *PageTable) Translate(vpn addr.VirtPageNum) (entry pageTableEntry, ok bool) {
	leaf := pt.walkExisting(vpn)
	if leaf == nil || !leaf.Valid() {
		return 0, false
	}
	return *leaf, true
}

// TranslateAddr composes Translate(va.Floor()) with va's page offset to
// produce the corresponding physical address, or ok=false if unmapped.
func (pt *PageTable) TranslateAddr(va addr.VirtAddr) (addr.PhysAddr, bool) {
	pte, ok := pt.Translate(va.Floor())
	if !ok {
		return 0, false
	}
	return addr.PhysAddr(pte.PPN().Address()) + addr.PhysAddr(va.PageOffset()), true
}

// walkExisting follows the three-level walk without creating missing
// intermediate tables, returning nil the moment a non-leaf entry is
// invalid.
func (pt *PageTable) walkExisting(vpn addr.VirtPageNum) *pageTableEntry {
	idx := vpn.Indexes()
	ppn := pt.root
	for level := 0; level < 3; level++ {
		pte := pteAt(ppn, idx[level])
		if level == 2 {
			return pte
		}
		if !pte.Valid() {
			return nil
		}
		ppn = pte.PPN()
	}
	return nil
}

// walkCreate follows the three-level walk, allocating and installing a
// fresh zeroed intermediate table (V only, no R|W|X) wherever one is
// missing, and appends every such frame to the table's owned-frame list
// (spec §4.2).
func (pt *PageTable) walkCreate(vpn addr.VirtPageNum) *pageTableEntry {
	idx := vpn.Indexes()
	ppn := pt.root
	for level := 0; level < 2; level++ {
		pte := pteAt(ppn, idx[level])
		if !pte.Valid() {
			frame := allocFrameFn()
			mem.Memset(physToVirt(frame.Address()), 0, mem.PageSize)
			*pte = newPTE(frame.PPN(), FlagV)
			pt.tables = append(pt.tables, frame)
		}
		ppn = pte.PPN()
	}
	return pteAt(ppn, idx[2])
}
