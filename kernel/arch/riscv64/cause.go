package riscv64

// scause's top bit distinguishes interrupts from exceptions; the remaining
// bits are the numeric cause code.
const scauseInterruptBit = uint64(1) << 63

// Cause codes this kernel recognizes (spec §4.5, §7). Every other scause
// value is a fatal, unhandled trap.
const (
	CauseSupervisorTimerInterrupt = 5 // interrupt bit set, code 5
	CauseUserEnvCall              = 8 // interrupt bit clear, code 8
)

// IsInterrupt reports whether scause's top bit is set.
func (tf *TrapFrame) IsInterrupt() bool {
	return tf.Scause&scauseInterruptBit != 0
}

// CauseCode returns scause with the interrupt bit masked off.
func (tf *TrapFrame) CauseCode() uint64 {
	return tf.Scause &^ scauseInterruptBit
}

// IsSupervisorTimerInterrupt reports whether this trap is the timer
// interrupt the scheduler reschedules on.
func (tf *TrapFrame) IsSupervisorTimerInterrupt() bool {
	return tf.IsInterrupt() && tf.CauseCode() == CauseSupervisorTimerInterrupt
}

// IsUserEnvCall reports whether this trap is a synchronous ecall from
// U-mode (cause 8), the only exception this kernel handles rather than
// escalating to a panic.
func (tf *TrapFrame) IsUserEnvCall() bool {
	return !tf.IsInterrupt() && tf.CauseCode() == CauseUserEnvCall
}
