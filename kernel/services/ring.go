// Package services implements the built-in service registry and the
// lock-free SPSC ring buffer that every service channel (spec §4.7) is
// built from. There is no teacher file for this — gopheros never mediates
// resources through a producer/consumer protocol — so the ring's layout
// and acquire/release discipline is ported directly from the reference
// implementation's own ring buffer (original_source/src), and the atomic
// counter idiom from golang.org/x/sync's use elsewhere in this module for
// cross-goroutine coordination.
package services

import (
	"sync/atomic"
	"unsafe"

	"github.com/achilleasa/riscv-uk/kernel"
	"github.com/achilleasa/riscv-uk/kernel/addr"
)

// RingSlots is the number of (seq, data) slots in one ring page. Chosen so
// that ringHeaderSize + RingSlots*ringSlotSize fits exactly one page (spec
// §4.7: each of the two shared frames holds one ring).
const (
	RingSlots      = 255
	ringHeaderSize = 16
	ringSlotSize   = 16
)

var errRingSeqMismatch = &kernel.Error{Module: "services", Message: "ring slot seq does not match the consumer's recv counter"}

// panicFn is mocked by tests and is automatically inlined by the compiler,
// matching the seam kernel/vmm and kernel/pmm use.
var panicFn = kernel.Panic

type ringSlot struct {
	seq  uint64
	data uint64
}

// Ring overlays one physical page with the producer/consumer protocol's
// header and slot array. Go's natural struct layout lands slots at byte
// offset 16 (two uint32 counters, two flag bytes, six bytes of padding to
// the next 8-byte boundary), matching ringHeaderSize and the vDSO's own
// raw-offset asm implementation of the producer side
// (kernel/vdso/vdso_riscv64.s).
type Ring struct {
	recv           uint32
	trans          uint32
	remoteSleeping uint8
	closed         uint8
	_              [6]byte
	slots          [RingSlots]ringSlot
}

// Overlay returns the Ring living at pa. Every address space this kernel
// builds identity-maps all of physical memory, so the kernel can
// dereference pa directly (kernel/vmm's physToVirt convention).
func Overlay(pa addr.PhysAddr) *Ring {
	return (*Ring)(unsafe.Pointer(uintptr(pa)))
}

// Push is the producer side: it claims the next slot, writes data and a
// seq generation tag, and publishes the slot with a release store on
// trans. It returns false if the ring is full. Only one side of a channel
// may ever call Push; this kernel's own producer runs as raw assembly
// (vdso_riscv64.s's vdsoPutcharAsync) so this Go implementation exists to
// let the ring's protocol itself be unit-tested independent of any one
// caller.
func (r *Ring) Push(data uint64) bool {
	trans := r.trans // producer-owned counter; only this side ever writes it
	recv := atomic.LoadUint32(&r.recv) // acquire: syncs-with the consumer's release store
	if trans-recv >= RingSlots {
		return false
	}

	slot := &r.slots[trans%RingSlots]
	slot.data = data
	slot.seq = uint64(trans)

	atomic.StoreUint32(&r.trans, trans+1) // release: publishes the slot to the consumer
	return true
}

// Pop is the consumer side: it checks for a published slot, verifies the
// slot's seq generation tag against its own recv counter as a hardening
// check against a torn read, and releases the slot back to the producer.
// It returns ok=false if nothing has been published yet.
func (r *Ring) Pop() (data uint64, ok bool) {
	trans := atomic.LoadUint32(&r.trans) // acquire: syncs-with the producer's release store
	recv := r.recv                       // consumer-owned counter; only this side ever writes it
	if trans <= recv {
		return 0, false
	}

	slot := &r.slots[recv%RingSlots]
	if uint32(slot.seq) != recv {
		panicFn(errRingSeqMismatch)
		return 0, false
	}
	data = slot.data

	atomic.StoreUint32(&r.recv, recv+1) // release: frees the slot back to the producer
	return data, true
}
