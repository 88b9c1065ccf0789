package elf

import "encoding/binary"

// dynamic holds the optional slices captured out of a .dynamic section
// (spec §4.4 step 1): relocation table, symbol table and string table, all
// views into the original image.
type dynamic struct {
	rela    []byte // raw Elf64_Rela entries
	relaEnt uint64
	symtab  []byte // raw Elf64_Sym entries, length unknown until walked per-symbol
	strtab  []byte
	hasRel  bool // DT_REL (addend-less) table present; always rejected
}

// parseDynamic walks a .dynamic section's (tag, value) pairs until DT_NULL
// and resolves the tags this loader understands against the rest of the
// image. DT_SYMTAB/DT_STRTAB/DT_RELA are plain virtual addresses in the ELF
// convention; since every allocatable section in this loader is mapped
// 1:1 at its own sh_addr, a virtual address in the dynamic table is also a
// valid offset into the raw image for an unrelocated, unloaded file exactly
// when the section carrying it has file offset == virtual address, which
// holds for every ELF this loader accepts (spec §6: "all allocatable
// sections must be file-backed or NOBITS, no overlap" — in practice the
// link scripts used here keep p_vaddr == p_offset).
func parseDynamic(img []byte, shs []sectionHeader, shstrtab sectionHeader) dynamic {
	le := binary.LittleEndian
	var dynSec *sectionHeader
	for i := range shs {
		if sectionName(img, shstrtab, shs[i]) == ".dynamic" {
			dynSec = &shs[i]
			break
		}
	}
	if dynSec == nil {
		return dynamic{}
	}

	tags := map[int64]uint64{}
	data := img[dynSec.offset : dynSec.offset+dynSec.size]
	var hasRel bool
	for off := 0; off+16 <= len(data); off += 16 {
		tag := int64(le.Uint64(data[off:]))
		if tag == dtNull {
			break
		}
		if tag == dtRel {
			hasRel = true
		}
		val := le.Uint64(data[off+8:])
		tags[tag] = val
	}

	d := dynamic{hasRel: hasRel}
	if relaAddr, ok := tags[dtRela]; ok {
		relaSize, szOK := tags[dtRelasz]
		relaEnt, entOK := tags[dtRelaent]
		if !szOK || !entOK {
			panicFn(errDynIncomplete)
			return dynamic{}
		}
		d.rela = img[relaAddr : relaAddr+relaSize]
		d.relaEnt = relaEnt
	}
	if symAddr, ok := tags[dtSymtab]; ok {
		// The symbol table has no DT_SYMTABSZ counterpart; it runs to the
		// next known boundary. Since every symbol this loader resolves is
		// reached via an explicit index from a RELA entry, a slice to the
		// end of the image is sufficient and never indexed out of range by
		// a well-formed relocation.
		d.symtab = img[symAddr:]
	}
	if strAddr, ok := tags[dtStrtab]; ok {
		d.strtab = img[strAddr:]
	}
	return d
}

// sym is a parsed Elf64_Sym.
type sym struct {
	name  uint32
	value uint64
}

func (d dynamic) symbol(idx uint64) sym {
	le := binary.LittleEndian
	off := idx * 24
	return sym{
		name:  le.Uint32(d.symtab[off:]),
		value: le.Uint64(d.symtab[off+8:]),
	}
}

func (d dynamic) symbolName(idx uint64) string {
	return cstring(d.strtab, d.symbol(idx).name)
}

// relaEntry is a parsed Elf64_Rela.
type relaEntry struct {
	offset uint64
	typ    uint32
	symIdx uint64
	addend int64
}

func (d dynamic) relocations() []relaEntry {
	le := binary.LittleEndian
	n := len(d.rela) / 24
	out := make([]relaEntry, 0, n)
	for i := 0; i < n; i++ {
		b := d.rela[i*24:]
		info := le.Uint64(b[8:])
		out = append(out, relaEntry{
			offset: le.Uint64(b[0:]),
			typ:    uint32(info & 0xFFFFFFFF),
			symIdx: info >> 32,
			addend: int64(le.Uint64(b[16:])),
		})
	}
	return out
}
