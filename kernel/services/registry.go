package services

import (
	"github.com/achilleasa/riscv-uk/kernel"
	"github.com/achilleasa/riscv-uk/kernel/addr"
)

// Putchar is service id 0, the only built-in service this kernel ships
// (spec §4.7, §6).
const Putchar = 0

var errUnknownService = &kernel.Error{Module: "services", Message: "unknown service id"}

// Constructor allocates and zeroes the two frames backing a service
// channel, spawns whatever helper process consumes the request side, and
// returns the physical addresses of the request and response pages for
// REQUEST_SERVICE to map into the caller (spec §4.7).
type Constructor func() (reqPA, respPA addr.PhysAddr)

// Registry indexes every built-in service by id.
var Registry = []Constructor{
	Putchar: newPutcharChannel,
}

// Request dispatches to the constructor for serviceID, or panics on an
// unrecognized id (spec §6: REQUEST_SERVICE only defines behavior for ids
// the registry actually carries).
func Request(serviceID uint64) (reqPA, respPA addr.PhysAddr) {
	if serviceID >= uint64(len(Registry)) {
		panicFn(errUnknownService)
		return 0, 0
	}
	return Registry[serviceID]()
}
