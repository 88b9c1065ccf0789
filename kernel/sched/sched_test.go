package sched

import (
	"testing"

	"github.com/achilleasa/riscv-uk/kernel/arch/riscv64"
	"github.com/achilleasa/riscv-uk/kernel/process"
	"github.com/achilleasa/riscv-uk/kernel/vmm"
)

// process.Process.AS.Activate talks to satp through a package-level seam
// that defaults to a no-op outside kernel/arch wiring, so these tests can
// drive the scheduler without any real hardware or mocking of their own.

func fakeProcess(entry uint64) *process.Process {
	return &process.Process{
		AS: vmm.NewAddressSpace(),
		TF: riscv64.TrapFrame{Sepc: entry},
	}
}

func TestPushAssignsSequentialIDs(t *testing.T) {
	s := New()
	id1 := s.Push(fakeProcess(0x1000))
	id2 := s.Push(fakeProcess(0x2000))

	if id1 != 1 || id2 != 2 {
		t.Fatalf("ids = (%d, %d); want (1, 2)", id1, id2)
	}
}

func TestBootstrapActivatesFirstPushed(t *testing.T) {
	s := New()
	s.Push(fakeProcess(0x1000))
	s.Push(fakeProcess(0x2000))

	tf := s.Bootstrap()
	if tf.Sepc != 0x1000 {
		t.Fatalf("Bootstrap() Sepc = %#x; want 0x1000", tf.Sepc)
	}
	if s.Current().TF.Sepc != 0x1000 {
		t.Fatal("expected Current() to report the bootstrapped process")
	}
}

func TestTickRoundRobinsInvoluntarily(t *testing.T) {
	s := New()
	s.Push(fakeProcess(0x1000))
	s.Push(fakeProcess(0x2000))
	s.Push(fakeProcess(0x3000))

	tf := s.Bootstrap() // running = 1

	s.Tick(&tf, true) // 1 requeued, running = 2
	if tf.Sepc != 0x2000 {
		t.Fatalf("after first tick, Sepc = %#x; want 0x2000", tf.Sepc)
	}

	s.Tick(&tf, true) // 2 requeued, running = 3
	if tf.Sepc != 0x3000 {
		t.Fatalf("after second tick, Sepc = %#x; want 0x3000", tf.Sepc)
	}

	s.Tick(&tf, true) // 3 requeued, running = 1 (wrapped around)
	if tf.Sepc != 0x1000 {
		t.Fatalf("after third tick, Sepc = %#x; want 0x1000 (wrapped)", tf.Sepc)
	}
}

func TestTickVoluntaryDropsCaller(t *testing.T) {
	s := New()
	s.Push(fakeProcess(0x1000))
	s.Push(fakeProcess(0x2000))

	tf := s.Bootstrap() // running = 1
	s.Tick(&tf, false)  // 1 dropped (not requeued), running = 2
	if tf.Sepc != 0x2000 {
		t.Fatalf("Sepc = %#x; want 0x2000", tf.Sepc)
	}

	// Only process 2 remains ready; ticking it involuntarily should
	// round back to itself, not panic on an empty queue.
	s.Tick(&tf, true)
	if tf.Sepc != 0x2000 {
		t.Fatalf("Sepc = %#x; want 0x2000 (only process left)", tf.Sepc)
	}
}

func TestTickBeforeBootstrapIsNoop(t *testing.T) {
	s := New()
	s.Push(fakeProcess(0x1000))

	tf := riscv64.TrapFrame{Sepc: 0xdead}
	s.Tick(&tf, true)
	if tf.Sepc != 0xdead {
		t.Fatal("expected Tick to be a no-op before Bootstrap")
	}
}
