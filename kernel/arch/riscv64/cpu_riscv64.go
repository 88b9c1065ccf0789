package riscv64

// EnableInterrupts sets sstatus.SIE, unmasking supervisor interrupts.
func EnableInterrupts()

// DisableInterrupts clears sstatus.SIE.
func DisableInterrupts()

// Halt parks the hart in a wfi loop. It never returns; kernel.Panic relies
// on that to turn a diagnostic print into a permanent stop (spec §7).
func Halt()

// FlushTLBEntry issues sfence.vma for a single virtual address.
func FlushTLBEntry(virtAddr uintptr)

// FlushTLBAll issues sfence.vma with no arguments, flushing every
// translation. Nothing in this kernel calls it at present; ActivateSatp
// issues its own fence.
func FlushTLBAll()

// ActivateSatp writes satp and fences the TLB, making the page table it
// names the active one.
func ActivateSatp(satp uint64)

// ReadSscratch and WriteSscratch access the CSR the trap trampoline uses
// to recover the kernel stack pointer on a user-to-kernel transition
// (spec §4.5).
func ReadSscratch() uint64
func WriteSscratch(v uint64)

// WriteStvec installs the trap entry trampoline's address in direct mode.
func WriteStvec(handler uintptr)

// TrapEntry is the address of the naked trap trampoline, for WriteStvec.
func TrapEntry() uintptr

// EnableSupervisorTimer sets sie.STIE, unmasking the supervisor timer
// interrupt (spec §4.8's Init step).
func EnableSupervisorTimer()

// ReadTime reads the time CSR (rdtime), the wall-clock counter SBI's
// set_timer deadlines are expressed against.
func ReadTime() uint64

// initKernelStack is the fixed kernel stack Bootstrap seeds with the first
// scheduled process's trap frame (spec §4.6): from that point on, every
// trap taken from that process is handled on this same stack.
var initKernelStack [16 * 1024]byte

// Bootstrap writes tf to the top of initKernelStack and tail-calls
// trapExit with sp pointing at it, making tf's process the first one to
// run (spec §4.6's bootstrap()). Never returns.
func Bootstrap(tf *TrapFrame)
