package process

import (
	"github.com/achilleasa/riscv-uk/kernel/addr"
	"github.com/achilleasa/riscv-uk/kernel/arch/riscv64"
	"github.com/achilleasa/riscv-uk/kernel/elf"
	"github.com/achilleasa/riscv-uk/kernel/vdso"
	"github.com/achilleasa/riscv-uk/kernel/vmm"
)

// Process is a (MemorySet, TrapFrame) pair (spec §3): an address space and
// the saved architectural state the scheduler resumes it from. The
// scheduler owns TF between ticks; everything else here is fixed for the
// process's lifetime.
type Process struct {
	AS *vmm.AddressSpace
	TF riscv64.TrapFrame
}

// NewUser loads elfImage into a fresh address space built from layout's
// kernel template, maps the vDSO text/data pair and a user stack, applies
// every relocation the image's dynamic table names, and returns a process
// ready to enter U-mode at the ELF entry point with args in a0/a1 (spec
// §4.4 step 5, §6).
func NewUser(elfImage []byte, args [2]uint64, layout vmm.KernelLayout) *Process {
	as := vmm.NewKernelAddressSpace(layout)

	cfg := elf.VDSOConfig{
		Base:       vdso.TextBase,
		DataBase:   vdso.DataBase,
		KernelBase: vdso.KernelBase(),
		PhysPages:  vdso.PhysPages(),
	}
	entry, sp := elf.Load(as, elfImage, cfg, elf.Exports(vdso.Exports), UserStackTop, UserStackPages)

	tf := riscv64.NewTrapFrame(uint64(entry), uint64(sp), true)
	tf.X[10], tf.X[11] = args[0], args[1]

	return &Process{AS: as, TF: tf}
}

// NewKernel builds a supervisor-mode process that begins executing at
// entryPC with args in a0/a1. Used for the idle process and every
// service's helper process (spec §4.7, §4.8's "kernel processes begin at a
// kernel function pointer, never at a user ELF entry").
func NewKernel(entryPC uintptr, args [2]uint64, layout vmm.KernelLayout) *Process {
	as := vmm.NewKernelAddressSpace(layout)

	stackRange := addr.Range{
		Start: (KernelStackTop - addr.VirtAddr(KernelStackPages*addr.PageSize)).Floor(),
		End:   KernelStackTop.Floor(),
	}
	as.Map(vmm.NewFramed(stackRange, vmm.FlagR|vmm.FlagW))

	tf := riscv64.NewTrapFrame(uint64(entryPC), uint64(KernelStackTop), false)
	tf.X[10], tf.X[11] = args[0], args[1]

	return &Process{AS: as, TF: tf}
}

// MapRemote installs a Remote area backed by frames into p's address
// space, the step REQUEST_SERVICE performs to hand a process its two
// shared service-channel pages (spec §4.7).
func (p *Process) MapRemote(r addr.Range, perm vmm.PTEFlag, frames []addr.PhysPageNum) {
	p.AS.Map(vmm.NewRemote(r, perm, frames))
}
