// Package sched is the round-robin, FIFO-ready-queue process scheduler
// (spec §4.6). It has no teacher file of its own — gopheros never leaves
// ring 0 — and is instead grounded directly on the reference
// implementation's own scheduler (original_source/src), translated into
// the same plain-struct, function-seam style kernel/vmm and kernel/pmm
// already use for their own state.
package sched

import (
	"github.com/achilleasa/riscv-uk/kernel"
	"github.com/achilleasa/riscv-uk/kernel/arch/riscv64"
	"github.com/achilleasa/riscv-uk/kernel/process"
)

var (
	errEmptyReadyQueue = &kernel.Error{Module: "sched", Message: "tick with an empty ready queue"}

	// panicFn is mocked by tests and is automatically inlined by the
	// compiler, matching the seam kernel/vmm and kernel/pmm use.
	panicFn = kernel.Panic
)

// Scheduler holds every process this kernel knows about, a FIFO queue of
// ids ready to run, and which one is currently running (spec §4.6). The id
// space starts at 1; 0 means "nothing has run yet".
type Scheduler struct {
	procs   map[uint64]*process.Process
	ready   []uint64
	nextID  uint64
	running uint64
}

// New returns an empty scheduler with no processes queued.
func New() *Scheduler {
	return &Scheduler{procs: map[uint64]*process.Process{}, nextID: 1}
}

// Push admits p, assigns it the next process id, and appends it to the
// ready queue.
func (s *Scheduler) Push(p *process.Process) uint64 {
	id := s.nextID
	s.nextID++
	s.procs[id] = p
	s.ready = append(s.ready, id)
	return id
}

// Current returns the process currently running, or nil before Bootstrap.
func (s *Scheduler) Current() *process.Process {
	if s.running == 0 {
		return nil
	}
	return s.procs[s.running]
}

// Tick saves tf into the running process, requeues it if involuntary is
// true, and switches tf in place to the next ready process's saved frame
// and address space (spec §4.6, §4.8). Before Bootstrap has run, Tick is a
// no-op: nothing is running yet for a stray timer interrupt to preempt.
func (s *Scheduler) Tick(tf *riscv64.TrapFrame, involuntary bool) {
	if s.running == 0 {
		return
	}

	s.procs[s.running].TF = *tf
	if involuntary {
		s.ready = append(s.ready, s.running)
	}

	if len(s.ready) == 0 {
		panicFn(errEmptyReadyQueue)
		return
	}
	next := s.ready[0]
	s.ready = s.ready[1:]
	s.running = next

	p := s.procs[next]
	p.AS.Activate()
	*tf = p.TF
}

// Bootstrap pops the first ready process, activates its address space, and
// returns its trap frame so the boot sequence can seed the init kernel
// stack and tail-call into it (spec §4.6). Requires at least one process
// to have been pushed.
func (s *Scheduler) Bootstrap() riscv64.TrapFrame {
	if len(s.ready) == 0 {
		panicFn(errEmptyReadyQueue)
		return riscv64.TrapFrame{}
	}

	id := s.ready[0]
	s.ready = s.ready[1:]
	s.running = id

	p := s.procs[id]
	p.AS.Activate()
	return p.TF
}
