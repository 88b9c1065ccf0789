// Package trap wires kernel/arch/riscv64's cause decoder to the rest of
// the kernel: a timer interrupt reaches the scheduler, a user ecall
// reaches the syscall surface, anything else is an unrecoverable fault
// (spec §4.5, §7). This is the kernel's only use of riscv64.DispatchFn.
package trap

import (
	"unsafe"

	"github.com/achilleasa/riscv-uk/kernel"
	"github.com/achilleasa/riscv-uk/kernel/arch/riscv64"
	"github.com/achilleasa/riscv-uk/kernel/kfmt/early"
	"github.com/achilleasa/riscv-uk/kernel/syscall"
	"github.com/achilleasa/riscv-uk/kernel/timer"
)

var errUnhandledTrap = &kernel.Error{Module: "trap", Message: "unhandled trap cause"}

// panicFn, timerTickFn, syscallDispatchFn and faultingWordFn are mocked by
// tests and are automatically inlined by the compiler, matching the seam
// kernel/vmm and kernel/pmm use.
var (
	panicFn           = kernel.Panic
	timerTickFn       = timer.Tick
	syscallDispatchFn = syscall.Dispatch
	faultingWordFn    = faultingWord
)

// Init installs the trap trampoline, clears sscratch (so a trap taken
// before the first process is scheduled is recognizable as a nested
// kernel-mode trap, per trap_riscv64.s's own convention) and arms the
// timer (spec §4.5, §4.8). Must run once, during boot, before interrupts
// are ever enabled.
func Init() {
	riscv64.WriteStvec(riscv64.TrapEntry())
	riscv64.WriteSscratch(0)
	riscv64.DispatchFn = dispatch
	timer.Init()
}

// dispatch is the cause decoder (spec §4.5, §7's fault kinds).
func dispatch(tf *riscv64.TrapFrame) {
	switch {
	case tf.IsSupervisorTimerInterrupt():
		timerTickFn(tf)
	case tf.IsUserEnvCall():
		syscallDispatchFn(tf)
	default:
		early.Printf("unhandled trap: scause=%x sepc=%x stval=%x bytes=%x\n",
			tf.Scause, tf.Sepc, tf.Stval, faultingWordFn(tf.Sepc))
		panicFn(errUnhandledTrap)
	}
}

// faultingWord reads the raw instruction bytes at sepc so a postmortem
// tool (tools/panictrace) can disassemble the faulting instruction without
// needing the kernel image itself. sepc always points at mapped,
// executable memory — the trap that got us here already proves that, or
// we would have taken an instruction page fault instead.
func faultingWord(sepc uint64) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(sepc)))
}
