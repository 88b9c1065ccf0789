package process

import (
	"testing"
	"unsafe"

	"github.com/achilleasa/riscv-uk/kernel/addr"
	"github.com/achilleasa/riscv-uk/kernel/pmm"
	"github.com/achilleasa/riscv-uk/kernel/vmm"
)

var arena [256 * 4096]byte

func resetArena(t *testing.T) {
	t.Helper()
	start := addr.NewPhysAddr(uint64(uintptr(unsafe.Pointer(&arena[0]))))
	end := start + addr.PhysAddr(len(arena))
	pmm.Init(start.Ceil().Address(), end)
}

func testLayout(t *testing.T) vmm.KernelLayout {
	t.Helper()
	base := addr.NewPhysAddr(uint64(uintptr(unsafe.Pointer(&arena[0])))).Ceil().Address()
	return vmm.KernelLayout{
		TextStart:     base,
		TextEnd:       base + addr.PhysAddr(addr.PageSize),
		RodataStart:   base + addr.PhysAddr(addr.PageSize),
		RodataEnd:     base + addr.PhysAddr(2*addr.PageSize),
		DataStart:     base + addr.PhysAddr(2*addr.PageSize),
		DataEnd:       base + addr.PhysAddr(3*addr.PageSize),
		PhysMemoryEnd: base + addr.PhysAddr(len(arena)),
		// Real hardware puts UART MMIO in its own region, outside DRAM;
		// placing it past PhysMemoryEnd here just keeps it from
		// overlapping the identity window above, matching that
		// separation without needing a second backing arena.
		UARTBase: base + addr.PhysAddr(len(arena)) + addr.PhysAddr(addr.PageSize),
	}
}

func TestNewKernelSeedsTrapFrame(t *testing.T) {
	resetArena(t)
	layout := testLayout(t)

	var args [2]uint64
	args[0], args[1] = 0xfeed, 0xbead
	p := NewKernel(0x1234, args, layout)

	if p.TF.Sepc != 0x1234 {
		t.Fatalf("Sepc = %#x; want 0x1234", p.TF.Sepc)
	}
	if p.TF.X[2] != uint64(KernelStackTop) {
		t.Fatalf("sp = %#x; want %#x", p.TF.X[2], KernelStackTop)
	}
	if p.TF.X[10] != args[0] || p.TF.X[11] != args[1] {
		t.Fatalf("args = (%#x, %#x); want (%#x, %#x)", p.TF.X[10], p.TF.X[11], args[0], args[1])
	}
	// A kernel process runs in S-mode: SPP must be set so sret drops it
	// back into supervisor mode, not user mode.
	if p.TF.Sstatus&(1<<8) == 0 {
		t.Fatal("expected SPP set for a kernel-mode process")
	}

	if _, ok := p.AS.Translate(KernelStackTop - 8); !ok {
		t.Fatal("expected the kernel stack to be mapped")
	}
}

func TestNewKernelDistinctAddressSpacesDoNotCollide(t *testing.T) {
	resetArena(t)
	layout := testLayout(t)

	p1 := NewKernel(0x1000, [2]uint64{}, layout)
	p2 := NewKernel(0x2000, [2]uint64{}, layout)

	if p1.AS == p2.AS {
		t.Fatal("expected distinct address spaces")
	}
}

func TestMapRemoteInstallsArea(t *testing.T) {
	resetArena(t)
	layout := testLayout(t)

	p := NewKernel(0x1000, [2]uint64{}, layout)
	frame := pmm.Alloc()

	r := addr.Range{Start: ServiceRequestVA.Floor(), End: ServiceRequestVA.Floor().Add(1)}
	p.MapRemote(r, vmm.FlagR|vmm.FlagW, []addr.PhysPageNum{frame.PPN()})

	pa, ok := p.AS.Translate(ServiceRequestVA)
	if !ok {
		t.Fatal("expected ServiceRequestVA to be mapped")
	}
	if pa.Floor() != frame.PPN() {
		t.Fatalf("translated PPN = %#x; want %#x", pa.Floor(), frame.PPN())
	}
}
