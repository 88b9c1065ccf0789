package elf

import (
	"bytes"
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/achilleasa/riscv-uk/kernel/addr"
	"github.com/achilleasa/riscv-uk/kernel/pmm"
	"github.com/achilleasa/riscv-uk/kernel/vmm"
)

// arena backs the fake "physical memory" used by these tests, mirroring
// kernel/vmm's own pagetable_test.go resetArena idiom: real host memory
// standing in for a physical address range.
var arena [512 * 4096]byte

func resetArena(t *testing.T) {
	t.Helper()
	start := addr.NewPhysAddr(uint64(uintptr(unsafe.Pointer(&arena[0]))))
	end := start + addr.PhysAddr(len(arena))
	pmm.Init(start.Ceil().Address(), end)
}

// shdr describes one section to be emitted by buildELF.
type shdr struct {
	name    string
	typ     uint32
	flags   uint64
	addr    uint64
	size    uint64
	content []byte // nil for NOBITS
}

// buildELF assembles a minimal, section-header-driven little-endian ELF64
// image out of secs, with a trailing synthetic .shstrtab. entry is the
// e_entry field.
func buildELF(t *testing.T, entry uint64, secs []shdr) []byte {
	t.Helper()

	var shstrtab bytes.Buffer
	shstrtab.WriteByte(0)
	nameOff := make([]uint32, len(secs))
	for i, s := range secs {
		nameOff[i] = uint32(shstrtab.Len())
		shstrtab.WriteString(s.name)
		shstrtab.WriteByte(0)
	}
	shstrtabNameOff := uint32(shstrtab.Len())
	shstrtab.WriteString(".shstrtab")
	shstrtab.WriteByte(0)

	const hdrSize = 64
	body := make([]byte, 0, 4096)
	fileOffsets := make([]uint64, len(secs))
	for i, s := range secs {
		if s.typ == shtNobits {
			continue
		}
		for len(body)%8 != 0 {
			body = append(body, 0)
		}
		fileOffsets[i] = hdrSize + uint64(len(body))
		body = append(body, s.content...)
	}
	for len(body)%8 != 0 {
		body = append(body, 0)
	}
	shstrtabOffset := hdrSize + uint64(len(body))
	body = append(body, shstrtab.Bytes()...)

	shnum := len(secs) + 2 // NULL section + real sections + shstrtab
	for len(body)%8 != 0 {
		body = append(body, 0)
	}
	shoff := hdrSize + uint64(len(body))

	img := make([]byte, shoff)
	copy(img[hdrSize:], body[:len(body)])

	le := binary.LittleEndian
	img[0], img[1], img[2], img[3] = 0x7F, 'E', 'L', 'F'
	img[4], img[5] = 2, 1
	le.PutUint64(img[0x18:], entry)
	le.PutUint64(img[0x28:], shoff)
	le.PutUint16(img[0x3A:], 64) // e_shentsize
	le.PutUint16(img[0x3C:], uint16(shnum))
	le.PutUint16(img[0x3E:], uint16(shnum-1)) // e_shstrndx: last section

	full := make([]byte, shoff+uint64(shnum)*64)
	copy(full, img)

	writeShdr := func(idx int, name uint32, typ uint32, flags, addr_, offset, size uint64) {
		b := full[shoff+uint64(idx)*64:]
		le.PutUint32(b[0:], name)
		le.PutUint32(b[4:], typ)
		le.PutUint64(b[8:], flags)
		le.PutUint64(b[16:], addr_)
		le.PutUint64(b[24:], offset)
		le.PutUint64(b[32:], size)
	}

	// index 0: NULL section
	writeShdr(0, 0, 0, 0, 0, 0, 0)
	for i, s := range secs {
		writeShdr(i+1, nameOff[i], s.typ, s.flags, s.addr, fileOffsets[i], s.size)
	}
	writeShdr(shnum-1, shstrtabNameOff, 3 /* STRTAB */, 0, 0, shstrtabOffset, uint64(shstrtab.Len()))

	return full
}

func relaEntryBytes(offset, info uint64, addend int64) []byte {
	b := make([]byte, 24)
	binary.LittleEndian.PutUint64(b[0:], offset)
	binary.LittleEndian.PutUint64(b[8:], info)
	binary.LittleEndian.PutUint64(b[16:], uint64(addend))
	return b
}

func symEntryBytes(nameOff uint32, value uint64) []byte {
	b := make([]byte, 24)
	binary.LittleEndian.PutUint32(b[0:], nameOff)
	binary.LittleEndian.PutUint64(b[8:], value)
	return b
}

func dynEntryBytes(tag int64, val uint64) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:], uint64(tag))
	binary.LittleEndian.PutUint64(b[8:], val)
	return b
}

// TestLoadRelocatesRelativeAndJumpSlot builds a minimal PIC ELF with one
// RELATIVE entry pointing a .data slot at a .rodata address, and one
// JUMP_SLOT entry against "kernel_meow", and checks both spec §8 properties
// in one pass.
func TestLoadRelocatesRelativeAndJumpSlot(t *testing.T) {
	resetArena(t)

	const (
		rodataAddr = 0x11000
		dataAddr   = 0x12000
	)

	dynstr := append([]byte{0}, append([]byte("kernel_meow"), 0)...)
	dynsym := symEntryBytes(1, 0) // name "kernel_meow", value unused for undefined imports

	rela := append(
		relaEntryBytes(dataAddr, uint64(rRelative), rodataAddr),
		relaEntryBytes(dataAddr+8, uint64(rJumpSlot), 0)...,
	)

	dyn := bytes.Join([][]byte{
		dynEntryBytes(dtRela, 0 /* patched below */),
		dynEntryBytes(dtRelasz, uint64(len(rela))),
		dynEntryBytes(dtRelaent, 24),
		dynEntryBytes(dtSymtab, 0 /* patched below */),
		dynEntryBytes(dtStrtab, 0 /* patched below */),
		dynEntryBytes(dtNull, 0),
	}, nil)

	secs := []shdr{
		{name: ".rodata", typ: 1, flags: shfAlloc, addr: rodataAddr, size: 0x1000, content: make([]byte, 0x1000)},
		{name: ".data", typ: 1, flags: shfAlloc | shfWrite, addr: dataAddr, size: 0x1000, content: make([]byte, 0x1000)},
		{name: ".rela.dyn", typ: 4, addr: 0x2040, size: uint64(len(rela)), content: rela},
		{name: ".dynsym", typ: 11, addr: 0x2070, size: uint64(len(dynsym)), content: dynsym},
		{name: ".dynstr", typ: 3, addr: 0x2088, size: uint64(len(dynstr)), content: dynstr},
		{name: ".dynamic", typ: 6, addr: 0x2098, size: uint64(len(dyn)), content: dyn},
	}

	// Patch the dynamic entries' values to the addresses chosen above,
	// which equal the file offsets buildELF assigns these sections
	// (64-byte header, then each section 8-byte aligned), since
	// parseDynamic treats DT_* values as direct image offsets; see
	// dynamic.go's doc comment.
	patch := func(tag int64, val uint64) {
		for off := 0; off+16 <= len(dyn); off += 16 {
			if int64(binary.LittleEndian.Uint64(dyn[off:])) == tag {
				binary.LittleEndian.PutUint64(dyn[off+8:], val)
				return
			}
		}
	}
	patch(dtRela, 0x2040)
	patch(dtSymtab, 0x2070)
	patch(dtStrtab, 0x2088)
	secs[5].content = dyn

	image := buildELF(t, 0x1000, secs)

	as := vmm.NewAddressSpace()

	textFrame := pmm.Alloc()
	exports := Exports{"kernel_meow": uintptr(textFrame.Address()) + 0x40}
	cfg := VDSOConfig{
		Base:       addr.NewVirtAddr(0x5000_0000),
		DataBase:   addr.NewVirtAddr(0x5000_1000),
		KernelBase: uintptr(textFrame.Address()),
		PhysPages:  []addr.PhysPageNum{textFrame.PPN()},
	}

	entry, sp := Load(as, image, cfg, exports, addr.NewVirtAddr(0x6000_0000), 16)

	if entry != addr.NewVirtAddr(0x1000) {
		t.Fatalf("entry = %#x; want 0x1000", entry)
	}
	if sp != addr.NewVirtAddr(0x6000_0000) {
		t.Fatalf("sp = %#x; want stack top", sp)
	}

	pa, ok := as.Translate(addr.NewVirtAddr(dataAddr))
	if !ok {
		t.Fatal("expected RELATIVE target to translate")
	}
	got := *(*uint64)(unsafe.Pointer(uintptr(pa)))
	if got != rodataAddr {
		t.Fatalf("RELATIVE slot = %#x; want %#x", got, uint64(rodataAddr))
	}

	pa2, ok := as.Translate(addr.NewVirtAddr(dataAddr + 8))
	if !ok {
		t.Fatal("expected JUMP_SLOT target to translate")
	}
	got2 := *(*uint64)(unsafe.Pointer(uintptr(pa2)))
	want := uint64(cfg.Base) + (uint64(exports["kernel_meow"]) - uint64(cfg.KernelBase))
	if got2 != want {
		t.Fatalf("JUMP_SLOT slot = %#x; want %#x", got2, want)
	}
}
