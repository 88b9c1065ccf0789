package vmm

import "github.com/achilleasa/riscv-uk/kernel/addr"

// satpMode is the Sv39 encoding of satp's MODE field (8).
const satpMode = uint64(8) << 60

// activateSatpFn writes satp and fences the TLB; it is overridden by
// kernel/arch/riscv64's real CSR-writing implementation once the kernel is
// wired together, and mocked out entirely by tests of this package, exactly
// as gopheros's vmm.go seams flushTLBEntryFn onto kernel/cpu.
var activateSatpFn = func(satp uint64) {}

// AddressSpace is a page table plus the ordered, non-overlapping MapAreas
// that describe everything currently mapped in it (spec §4.3). Areas are
// kept in the order they were added; Push writes into whichever Framed
// area its caller names.
type AddressSpace struct {
	pt    *PageTable
	areas []*MapArea
}

// NewAddressSpace allocates an empty address space with a fresh root page
// table.
func NewAddressSpace() *AddressSpace {
	return &AddressSpace{pt: NewPageTable()}
}

// PageTable returns the underlying page table, e.g. so a caller can read
// Root() for satp construction.
func (as *AddressSpace) PageTable() *PageTable { return as.pt }

// Areas returns the address space's map areas in insertion order.
func (as *AddressSpace) Areas() []*MapArea { return as.areas }

// Map adds area to the address space, installing every one of its pages
// into the page table, and returns it for chaining with Push. It is a
// fatal bug to add an area that overlaps one already present.
func (as *AddressSpace) Map(area *MapArea) *MapArea {
	for _, existing := range as.areas {
		if rangesOverlap(existing.VPNRange, area.VPNRange) {
			panicFn(errAreaOverlap)
			return area
		}
	}
	area.mapInto(as.pt)
	as.areas = append(as.areas, area)
	return area
}

// Unmap removes area from the address space, releasing any frames it owns.
func (as *AddressSpace) Unmap(area *MapArea) {
	area.unmapFrom(as.pt)
	for i, a := range as.areas {
		if a == area {
			as.areas = append(as.areas[:i], as.areas[i+1:]...)
			break
		}
	}
}

// Push copies data into area's backing frames. area must already belong to
// this address space and be Framed.
func (as *AddressSpace) Push(area *MapArea, data []byte) {
	area.push(data)
}

// Translate resolves va to a physical address through this address space's
// page table.
func (as *AddressSpace) Translate(va addr.VirtAddr) (addr.PhysAddr, bool) {
	return as.pt.TranslateAddr(va)
}

// Activate installs this address space's page table as the active one by
// writing satp and fencing stale TLB entries (spec §4.4).
func (as *AddressSpace) Activate() {
	satp := satpMode | uint64(as.pt.Root())
	activateSatpFn(satp)
}

func rangesOverlap(a, b addr.Range) bool {
	return a.Start < b.End && b.Start < a.End
}
