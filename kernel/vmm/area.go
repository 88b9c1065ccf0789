package vmm

import (
	"unsafe"

	"github.com/achilleasa/riscv-uk/kernel"
	"github.com/achilleasa/riscv-uk/kernel/addr"
	"github.com/achilleasa/riscv-uk/kernel/mem"
	"github.com/achilleasa/riscv-uk/kernel/pmm"
)

var (
	errPushNotFramed = &kernel.Error{Module: "vmm", Message: "push target is not a Framed area"}
	errAreaOverlap   = &kernel.Error{Module: "vmm", Message: "map area overlaps an existing area"}
)

// Backing describes how a MapArea's pages acquire their physical frames.
type Backing uint8

const (
	// Identical backs every page with the physical frame at the same
	// page number as the virtual page (phys == virt). Used for the
	// kernel's own text/rodata/data and the physical-memory window.
	Identical Backing = iota

	// Framed backs every page with a freshly allocated frame that the
	// area owns for its whole lifetime. Used for ELF segments, stacks
	// and per-process vDSO data.
	Framed

	// Remote backs every page with a caller-supplied physical frame that
	// the area does not own; Unmap never frees a Remote page. Used for
	// the vDSO's shared code pages and for both ends of a service
	// channel's ring buffer.
	Remote
)

// MapArea is one contiguous run of virtual pages sharing a permission set
// and a backing policy (spec §4.3). An AddressSpace is an ordered list of
// non-overlapping MapAreas.
type MapArea struct {
	VPNRange addr.Range
	Perm     PTEFlag
	Backing  Backing

	// remoteFrames holds the physical page numbers a Remote area maps,
	// one per page in VPNRange, in order. It is nil for Identical and
	// Framed areas.
	remoteFrames []addr.PhysPageNum

	// framedFrames holds the frames a Framed area owns, one per page in
	// VPNRange, in order; populated lazily as pages are mapped.
	framedFrames []pmm.Frame
}

// NewIdentical describes an identity-mapped area: vpn == ppn for every page
// in the range.
func NewIdentical(r addr.Range, perm PTEFlag) *MapArea {
	return &MapArea{VPNRange: r, Perm: perm, Backing: Identical}
}

// NewFramed describes an area whose pages are populated with freshly
// allocated, owned frames as the area is mapped.
func NewFramed(r addr.Range, perm PTEFlag) *MapArea {
	return &MapArea{VPNRange: r, Perm: perm, Backing: Framed}
}

// NewRemote describes an area whose pages map caller-supplied frames that
// this area does not own. frames must have exactly r.Len() entries, in
// page order.
func NewRemote(r addr.Range, perm PTEFlag, frames []addr.PhysPageNum) *MapArea {
	cp := make([]addr.PhysPageNum, len(frames))
	copy(cp, frames)
	return &MapArea{VPNRange: r, Perm: perm, Backing: Remote, remoteFrames: cp}
}

// mapInto installs every page of the area into pt, allocating frames for
// Framed areas and zeroing them on allocation (spec §4.3's "freshly
// allocated frames start zeroed" invariant, carried forward from the
// original implementation's push-time zero-fill behaviour — see
// SPEC_FULL.md §C).
func (a *MapArea) mapInto(pt *PageTable) {
	n := a.VPNRange.Len()
	for i := uint64(0); i < n; i++ {
		vpn := a.VPNRange.Start.Add(i)

		switch a.Backing {
		case Identical:
			pt.Map(vpn, addr.NewPhysPageNum(uint64(vpn)), a.Perm)

		case Framed:
			frame := allocFrameFn()
			mem.Memset(physToVirt(frame.Address()), 0, mem.PageSize)
			a.framedFrames = append(a.framedFrames, frame)
			pt.Map(vpn, frame.PPN(), a.Perm)

		case Remote:
			pt.Map(vpn, a.remoteFrames[i], a.Perm)
		}
	}
}

// unmapFrom removes every page of the area from pt and frees the frames a
// Framed area owns. Remote frames are left untouched: the caller that
// supplied them retains ownership (spec §4.7's shared service-channel
// pages must outlive either single mapping of them).
func (a *MapArea) unmapFrom(pt *PageTable) {
	n := a.VPNRange.Len()
	for i := uint64(0); i < n; i++ {
		vpn := a.VPNRange.Start.Add(i)
		pt.Unmap(vpn)
	}
	for _, f := range a.framedFrames {
		pmm.Free(f)
	}
	a.framedFrames = nil
}

// push copies min(area capacity, len(data)) bytes into a Framed area's
// backing pages starting at the area's first page, page by page; any pages
// beyond the copied bytes are left as allocated zero (spec §8's
// "copy-data bound" property — push never fails on an oversized data
// slice, it simply truncates). It is a fatal bug to call push on anything
// but a Framed area.
func (a *MapArea) push(data []byte) {
	if a.Backing != Framed {
		panicFn(errPushNotFramed)
		return
	}

	capacity := a.VPNRange.Len() * addr.PageSize
	if uint64(len(data)) > capacity {
		data = data[:capacity]
	}

	offset := 0
	for _, frame := range a.framedFrames {
		if offset >= len(data) {
			break
		}
		n := len(data) - offset
		if n > int(addr.PageSize) {
			n = int(addr.PageSize)
		}
		dst := physToVirt(frame.Address())
		src := uintptr(unsafe.Pointer(&data[offset]))
		mem.Memcopy(dst, src, mem.Size(n))
		offset += n
	}
}
