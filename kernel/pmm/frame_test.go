package pmm

import (
	"testing"

	"github.com/achilleasa/riscv-uk/kernel/addr"
)

func resetAllocator(nFrames uint64) {
	allocator.state = stateUninit
	allocator.freelist = nil
	Init(addr.NewPhysAddr(0), addr.NewPhysAddr(nFrames*addr.PageSize))
}

func TestAllocBumpsForward(t *testing.T) {
	resetAllocator(16)

	f0 := Alloc()
	f1 := Alloc()
	if f1.PPN() != f0.PPN().Add(1) {
		t.Fatalf("expected consecutive frames, got %d then %d", f0.PPN(), f1.PPN())
	}
}

func TestFreeListReuse(t *testing.T) {
	resetAllocator(16)

	const n = 5
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = Alloc()
	}

	dropped := map[addr.PhysPageNum]bool{}
	for _, f := range frames {
		dropped[f.PPN()] = true
		Free(f)
	}

	reused := map[addr.PhysPageNum]bool{}
	for i := 0; i < n; i++ {
		reused[Alloc().PPN()] = true
	}

	if len(reused) != len(dropped) {
		t.Fatalf("reused set size %d != dropped set size %d", len(reused), len(dropped))
	}
	for ppn := range dropped {
		if !reused[ppn] {
			t.Fatalf("frame %d was dropped but never reused", ppn)
		}
	}
}

func withMockPanic(t *testing.T, fn func(e interface{})) (called *bool) {
	called = new(bool)
	orig := panicFn
	panicFn = func(e interface{}) {
		*called = true
		fn(e)
	}
	t.Cleanup(func() { panicFn = orig })
	return called
}

func TestAllocBeforeInitPanics(t *testing.T) {
	allocator.state = stateUninit
	allocator.freelist = nil

	called := withMockPanic(t, func(interface{}) {})
	Alloc()

	if !*called {
		t.Fatal("expected Alloc before Init to invoke the panic seam")
	}
}

func TestExhaustionPanics(t *testing.T) {
	resetAllocator(2)
	Alloc()
	Alloc()

	called := withMockPanic(t, func(interface{}) {})
	Alloc()

	if !*called {
		t.Fatal("expected allocation past the configured ceiling to invoke the panic seam")
	}
}
