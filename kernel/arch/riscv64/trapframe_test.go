package riscv64

import "testing"

func TestNewTrapFrameUser(t *testing.T) {
	tf := NewTrapFrame(0x1000, 0x2000, true)
	if tf.X[2] != 0x2000 {
		t.Fatalf("sp = %#x; want 0x2000", tf.X[2])
	}
	if tf.Sepc != 0x1000 {
		t.Fatalf("sepc = %#x; want 0x1000", tf.Sepc)
	}
	if tf.Sstatus&sstatusSPIE == 0 {
		t.Fatal("expected SPIE to be set")
	}
	if tf.Sstatus&sstatusSPP != 0 {
		t.Fatal("expected SPP clear for a user process")
	}
}

func TestNewTrapFrameKernel(t *testing.T) {
	tf := NewTrapFrame(0x1000, 0x2000, false)
	if tf.Sstatus&sstatusSPP == 0 {
		t.Fatal("expected SPP set for a kernel process")
	}
}

func TestArgsAndResults(t *testing.T) {
	var tf TrapFrame
	tf.X[10] = 3
	tf.X[11] = 7
	if tf.Arg0() != 3 || tf.Arg1() != 7 {
		t.Fatalf("Arg0/Arg1 = %d,%d; want 3,7", tf.Arg0(), tf.Arg1())
	}
	tf.SetResult0(0x6400_0000)
	tf.SetResult1(0x6400_1000)
	if tf.X[10] != 0x6400_0000 || tf.X[11] != 0x6400_1000 {
		t.Fatal("SetResult0/SetResult1 did not write a0/a1")
	}
}

func TestAdvancePC(t *testing.T) {
	tf := TrapFrame{Sepc: 0x8000}
	tf.AdvancePC()
	if tf.Sepc != 0x8004 {
		t.Fatalf("sepc = %#x; want 0x8004", tf.Sepc)
	}
}

func TestCauseDecoding(t *testing.T) {
	timer := TrapFrame{Scause: scauseInterruptBit | CauseSupervisorTimerInterrupt}
	if !timer.IsSupervisorTimerInterrupt() {
		t.Fatal("expected timer interrupt to be recognized")
	}
	if timer.IsUserEnvCall() {
		t.Fatal("timer interrupt must not also read as UserEnvCall")
	}

	ecall := TrapFrame{Scause: CauseUserEnvCall}
	if !ecall.IsUserEnvCall() {
		t.Fatal("expected ecall to be recognized")
	}
	if ecall.IsSupervisorTimerInterrupt() {
		t.Fatal("ecall must not also read as a timer interrupt")
	}
}
