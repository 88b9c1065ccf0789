// Package syscall is the kernel's entire user-facing ABI surface: decoding
// a0 on a user ecall and dispatching to the two syscalls this kernel
// defines (spec §4.7, §6). Grounded on the reference implementation's own
// syscall module (original_source/src); there is no teacher equivalent,
// since gopheros never takes a trap from user mode.
package syscall

import (
	"github.com/achilleasa/riscv-uk/kernel/addr"
	"github.com/achilleasa/riscv-uk/kernel/arch/riscv64"
	"github.com/achilleasa/riscv-uk/kernel/process"
	"github.com/achilleasa/riscv-uk/kernel/sbi"
	"github.com/achilleasa/riscv-uk/kernel/services"
	"github.com/achilleasa/riscv-uk/kernel/vmm"
)

// Syscall numbers, matching the original implementation's ABI (spec §6).
const (
	RequestService = 0x003
	Putchar        = 0x100
)

// CurrentProcessFn returns the process.Process currently backing the trap
// frame being dispatched, so REQUEST_SERVICE can install the service
// channel mapping into the right address space. Wired by boot.Run
// rather than imported directly, since sched (which owns "current") sits
// above process and this package must not import sched.
var CurrentProcessFn func() *process.Process

// putcharFn is sbi.ConsolePutchar; overridden by tests.
var putcharFn = sbi.ConsolePutchar

// Dispatch decodes tf's a0 and handles the two recognized syscalls. An
// unrecognized number is silently ignored (spec §6, worked example in
// §8): the kernel neither traps nor logs it, sepc simply advances and
// control returns to the caller unchanged.
func Dispatch(tf *riscv64.TrapFrame) {
	switch tf.Arg0() {
	case RequestService:
		reqPA, respPA := services.Request(tf.Arg1())

		p := CurrentProcessFn()
		reqRange := addr.Range{Start: process.ServiceRequestVA.Floor(), End: process.ServiceRequestVA.Floor().Add(1)}
		respRange := addr.Range{Start: process.ServiceResponseVA.Floor(), End: process.ServiceResponseVA.Floor().Add(1)}
		p.MapRemote(reqRange, vmm.FlagU|vmm.FlagR|vmm.FlagW, []addr.PhysPageNum{reqPA.Floor()})
		p.MapRemote(respRange, vmm.FlagU|vmm.FlagR|vmm.FlagW, []addr.PhysPageNum{respPA.Floor()})

		tf.SetResult0(uint64(process.ServiceRequestVA))
		tf.SetResult1(uint64(process.ServiceResponseVA))

	case Putchar:
		putcharFn(byte(tf.Arg1()))
	}

	tf.AdvancePC()
}
