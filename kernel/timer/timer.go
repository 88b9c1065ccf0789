// Package timer arms and services the supervisor timer interrupt that
// drives preemptive scheduling (spec §4.8). Grounded on the reference
// implementation's own timer module (original_source/src), which is
// itself a thin wrapper over the same two SBI calls kernel/sbi exposes.
package timer

import (
	"github.com/achilleasa/riscv-uk/kernel/arch/riscv64"
	"github.com/achilleasa/riscv-uk/kernel/sbi"
)

// Timebase is this platform's timer frequency in Hz (QEMU's riscv64 virt
// machine reports 10MHz over the device tree; this kernel does not parse
// the device tree per spec §1's non-goals, so the constant is hardcoded
// the same way the reference implementation hardcodes it). Slice is the
// resulting length of one scheduling quantum.
const (
	Timebase = uint64(10_000_000)
	Slice    = Timebase / 100
)

// readTimeFn reads the time CSR; overridden by tests.
var readTimeFn = riscv64.ReadTime

// enableFn unmasks the supervisor timer interrupt; overridden by tests.
var enableFn = riscv64.EnableSupervisorTimer

// tickFn is sched.Scheduler.Tick, wired by boot.Run through
// SetSchedulerHook without this package importing kernel/sched directly.
var tickFn func(tf *riscv64.TrapFrame, involuntary bool)

// SetSchedulerHook installs the scheduler callback Tick forwards to.
func SetSchedulerHook(fn func(tf *riscv64.TrapFrame, involuntary bool)) { tickFn = fn }

// Init unmasks the supervisor timer interrupt and arms the first deadline
// one slice out.
func Init() {
	enableFn()
	sbi.SetTimer(readTimeFn() + Slice)
}

// Tick rearms the next deadline and forwards to the scheduler with
// involuntary=true (spec §4.8): every timer interrupt preempts whatever
// was running, unconditionally.
func Tick(tf *riscv64.TrapFrame) {
	sbi.SetTimer(readTimeFn() + Slice)
	if tickFn != nil {
		tickFn(tf, true)
	}
}
