// Package sbi wraps the two SBI calls this kernel depends on: set_timer
// and console_putchar (spec §6's "SBI client" collaborator). Grounded on
// the provided reference kernel's src/sbi.rs. Both go through the same
// ecall convention: EID in a7, FID in a6, two argument/return registers in
// a0/a1.
package sbi

// SBI extension ids: console_putchar is the legacy extension 0x01;
// set_timer goes through the v0.2 TIME extension, function 0.
const (
	eidSetTimer       = 0x54494D45 // "TIME"
	eidConsolePutchar = 1
	fidLegacy         = 0
)

// callFn issues the ecall; it is wired to the real riscv64 implementation
// in sbi_riscv64.go and overridden by tests on this package's logic (there
// is none beyond argument marshalling, but the seam keeps this file
// buildable as ordinary Go on any host, matching the panicFn/allocFrameFn
// seam convention used throughout this kernel).
var callFn func(eid, fid, arg0, arg1 uint64) (err, value uint64)

// SetTimer arms the next supervisor timer interrupt for the given absolute
// mtime deadline.
func SetTimer(deadline uint64) {
	callFn(eidSetTimer, fidLegacy, deadline, 0)
}

// ConsolePutchar writes one byte to the platform console, synchronously.
func ConsolePutchar(b byte) {
	callFn(eidConsolePutchar, fidLegacy, uint64(b), 0)
}
