// Package riscv64 collects the architecture-specific primitives every other
// kernel package treats as a collaborator: the trap frame layout, the naked
// trap entry/exit trampoline, and the small set of CSR-touching functions
// (interrupt enable/disable, TLB flush, satp activation, halt) that cannot
// be expressed in Go. It plays the role gopheros's kernel/cpu package plays
// for amd64 (func declarations with no body, backed by a matching .s file).
package riscv64

// TrapFrame is the uniform save area every trap (timer interrupt or ecall)
// is dispatched through (spec §4.5). It mirrors the provided original
// implementation's layout exactly: 32 general registers (x0 is never
// written, but the slot is kept so indices line up with the ISA's own
// numbering), followed by sstatus, sepc, stval and scause.
type TrapFrame struct {
	X      [32]uint64
	Sstatus uint64
	Sepc    uint64
	Stval   uint64
	Scause  uint64
}

// sstatus.SPP, the bit recording the privilege mode a trap came from.
const sstatusSPP = uint64(1) << 8

// sstatus.SPIE, the bit that will be copied into SIE on the next sret,
// re-enabling interrupts once the trapped context resumes.
const sstatusSPIE = uint64(1) << 5

// NewTrapFrame builds the initial trap frame for a process that has never
// run: sp (x2) set to the top of its stack, sepc set to its entry point,
// SPIE set so interrupts are enabled after the first sret, and SPP set
// according to whether the process runs in U-mode or S-mode (spec §4.6's
// new_user/new_kernel constructors).
func NewTrapFrame(entry, sp uint64, user bool) TrapFrame {
	var tf TrapFrame
	tf.X[2] = sp
	tf.Sepc = entry
	tf.Sstatus = sstatusSPIE
	if !user {
		tf.Sstatus |= sstatusSPP
	}
	return tf
}

// Arg0 and Arg1 return the syscall argument registers (a0, a1 = x10, x11).
func (tf *TrapFrame) Arg0() uint64 { return tf.X[10] }
func (tf *TrapFrame) Arg1() uint64 { return tf.X[11] }

// SetResult0 and SetResult1 write the syscall result registers (a0, a1).
func (tf *TrapFrame) SetResult0(v uint64) { tf.X[10] = v }
func (tf *TrapFrame) SetResult1(v uint64) { tf.X[11] = v }

// AdvancePC advances sepc past the 4-byte ecall instruction that trapped,
// the uniform "return to the next instruction" step every synchronous
// syscall handler performs (spec §4.5, §4.8).
func (tf *TrapFrame) AdvancePC() { tf.Sepc += 4 }
