package riscv64

import (
	"unsafe"
)

// DispatchFn is called with every trap frame the trampoline captures. It is
// registered by kernel/trap.Init once traps are set up; left nil it is a
// fatal configuration bug, matching the panic-on-missing-collaborator
// posture the rest of this kernel takes towards its seams.
var DispatchFn func(tf *TrapFrame)

const errNoDispatcher = "riscv64: trap fired with no DispatchFn registered"

// panicFn is mocked by tests. It is the builtin panic rather than
// kernel.Panic because package kernel imports this package (for Halt);
// kernel.Panic's //go:redirect-from runtime.gopanic pragma is what routes a
// builtin panic to it in a linked kernel image.
var panicFn = func(e interface{}) { panic(e) }

// goTrapDispatch is the non-naked Go shim trapEntry calls into: it turns the
// raw stack pointer the assembly hands it back into a *TrapFrame and
// forwards to DispatchFn, exactly the role the provided reference kernel's
// `trap_impl` plays between trap_entry and the scheduler/syscall logic.
//
//go:nosplit
func goTrapDispatch(sp uintptr) {
	tf := (*TrapFrame)(unsafe.Pointer(sp))
	if DispatchFn == nil {
		panicFn(errNoDispatcher)
		return
	}
	DispatchFn(tf)
}
