package elf

import (
	"unsafe"

	"github.com/achilleasa/riscv-uk/kernel/addr"
	"github.com/achilleasa/riscv-uk/kernel/vmm"
)

// VDSOConfig describes where the kernel's own vDSO text region lives, both
// as the fixed user-space address every process maps it at (Base) and as
// the kernel's own resident address range for that same code (KernelBase,
// PhysPages) — the two numbers spec §4.4 step 4 subtracts to compute a
// JUMP_SLOT target's vDSO-relative offset.
type VDSOConfig struct {
	Base       addr.VirtAddr
	DataBase   addr.VirtAddr
	KernelBase uintptr
	PhysPages  []addr.PhysPageNum
}

// Exports maps an exported kernel symbol name to its resident kernel
// function address, the "kernel-defined exported-method table" of spec §4.4
// step 4 / §9. Built once, at link time, by kernel/vdso; never dynamized.
type Exports map[string]uintptr

// Load parses image and maps it into as: every ALLOC section at its own
// address with section-derived permissions and the vDSO text/data pair;
// it then applies every RELATIVE/JUMP_SLOT relocation the dynamic table
// names and finally maps a stack. It returns the ELF entry point and the stack-top address the
// caller should seed x[2] (sp) with.
func Load(as *vmm.AddressSpace, image []byte, cfg VDSOConfig, exports Exports, stackTop addr.VirtAddr, stackPages uint64) (entry, sp addr.VirtAddr) {
	h := parseHeader(image)
	shs := sections(image, h)
	shstrtab := shs[h.shstrndx]
	d := parseDynamic(image, shs, shstrtab)
	if d.hasRel {
		panicFn(errRelNoAddend)
		return 0, 0
	}

	mapAllocatableSections(as, image, shs)
	mapVDSO(as, cfg)
	applyRelocations(as, d, cfg, exports)

	stackRange := addr.Range{Start: (stackTop - addr.VirtAddr(stackPages*addr.PageSize)).Floor(), End: stackTop.Floor()}
	as.Map(vmm.NewFramed(stackRange, vmm.FlagU|vmm.FlagR|vmm.FlagW))

	return addr.NewVirtAddr(h.entry), stackTop
}

func mapAllocatableSections(as *vmm.AddressSpace, image []byte, shs []sectionHeader) {
	for _, sh := range shs {
		if sh.flags&shfAlloc == 0 {
			continue
		}
		if sh.size == 0 {
			panicFn(errEmptySection)
			return
		}

		perm := vmm.FlagU | vmm.FlagR
		if sh.flags&shfWrite != 0 {
			perm |= vmm.FlagW
		}
		if sh.flags&shfExecInstr != 0 {
			perm |= vmm.FlagX
		}

		r := addr.RangeFromAddrs(addr.NewVirtAddr(sh.addr), addr.NewVirtAddr(sh.addr+sh.size))
		area := vmm.NewFramed(r, perm)
		as.Map(area)

		if sh.typ != shtNobits {
			as.Push(area, image[sh.offset:sh.offset+sh.size])
		}
	}
}

func mapVDSO(as *vmm.AddressSpace, cfg VDSOConfig) {
	textRange := addr.Range{
		Start: cfg.Base.Floor(),
		End:   cfg.Base.Floor().Add(uint64(len(cfg.PhysPages))),
	}
	as.Map(vmm.NewRemote(textRange, vmm.FlagU|vmm.FlagR|vmm.FlagX, cfg.PhysPages))

	dataRange := addr.Range{Start: cfg.DataBase.Floor(), End: cfg.DataBase.Floor().Add(1)}
	as.Map(vmm.NewFramed(dataRange, vmm.FlagU|vmm.FlagR|vmm.FlagW))
}

func applyRelocations(as *vmm.AddressSpace, d dynamic, cfg VDSOConfig, exports Exports) {
	for _, rel := range d.relocations() {
		switch rel.typ {
		case rRelative:
			pa, ok := as.Translate(addr.NewVirtAddr(rel.offset))
			if !ok {
				panicFn(errRelocUnmapped)
				return
			}
			writePhysU64(pa, uint64(rel.addend))

		case rJumpSlot:
			name := d.symbolName(rel.symIdx)
			fnAddr, ok := exports[name]
			if !ok {
				panicFn(errUnresolvedSym)
				return
			}
			vdsoVA := uint64(cfg.Base) + (uint64(fnAddr) - uint64(cfg.KernelBase))

			pa, ok := as.Translate(addr.NewVirtAddr(rel.offset))
			if !ok {
				panicFn(errRelocUnmapped)
				return
			}
			writePhysU64(pa, vdsoVA)

		default:
			panicFn(errUnsupportedRel)
			return
		}
	}
}

// writePhysU64 writes a 64-bit word at a physical address. Every address
// space this kernel builds identity-maps the whole of physical memory
// (spec §4.3), so the kernel can dereference a physical address directly,
// matching the physToVirt convention in kernel/vmm.
func writePhysU64(pa addr.PhysAddr, v uint64) {
	*(*uint64)(unsafe.Pointer(uintptr(pa))) = v
}
