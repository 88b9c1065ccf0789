// Package uart drives a 16550-compatible serial controller mapped into the
// kernel's identity-mapped MMIO window (spec §6's UART collaborator, out of
// the core per spec §1). Grounded on the provided reference kernel's
// src/serial.rs register layout, and on the MMIO-overlay idiom the teacher
// uses for its own framebuffer driver (kernel/driver/video/console/vga.go's
// reflect.SliceHeader overlay onto a fixed physical address).
package uart

import (
	"reflect"
	"unsafe"
)

// Register offsets, scaled by Shift before being added to Base. Identical
// to src/serial.rs's offsets module.
const (
	regRBR = 0x0 // receiver buffer (read)
	regTHR = 0x0 // transmitter holding (write)
	regIER = 0x1
	regFCR = 0x2
	regLCR = 0x3
	regMCR = 0x4
	regLSR = 0x5
	regDLL = 0x0 // divisor latch low (DLAB=1)
	regDLH = 0x1 // divisor latch high (DLAB=1)
)

const (
	lsrTHRE = byte(1) << 5 // transmitter holding register empty
	lsrDR   = byte(1) << 0 // data ready
)

// UART is a single 16550-compatible controller instance.
type UART struct {
	regs []byte // len 6<<Shift, overlaid on the MMIO window starting at Base
	Base uintptr
	Shift uint
	Clk  uint64
	Baud uint64
}

// New describes a controller at the given MMIO base. Init must be called
// before use.
func New(base uintptr, shift uint, clk, baud uint64) *UART {
	return &UART{Base: base, Shift: shift, Clk: clk, Baud: baud}
}

func (u *UART) overlay() []byte {
	if u.regs == nil {
		n := 6 << u.Shift
		u.regs = *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{
			Len:  n,
			Cap:  n,
			Data: u.Base,
		}))
	}
	return u.regs
}

func (u *UART) reg(offset int) *byte {
	return &u.overlay()[offset<<u.Shift]
}

func readVolatile(p *byte) byte  { return *(*byte)(unsafe.Pointer(p)) }
func writeVolatile(p *byte, v byte) { *(*byte)(unsafe.Pointer(p)) = v }

// Init programs the baud-rate divisor and enables 8N1 with no interrupts,
// matching src/serial.rs's init sequence exactly.
func (u *UART) Init() {
	writeVolatile(u.reg(regLCR), 0x80) // DLAB

	latch := u.Clk / (16 * u.Baud)
	writeVolatile(u.reg(regDLL), byte(latch))
	writeVolatile(u.reg(regDLH), byte(latch>>8))

	writeVolatile(u.reg(regLCR), 3) // 8 bits, no parity, DLAB off
	writeVolatile(u.reg(regMCR), 0)
	writeVolatile(u.reg(regIER), 0)
	writeVolatile(u.reg(regFCR), 0x7) // enable + reset FIFOs
}

// Putchar writes one byte and blocks until the transmitter holding
// register has drained.
func (u *UART) Putchar(c byte) {
	writeVolatile(u.reg(regTHR), c)
	for readVolatile(u.reg(regLSR))&lsrTHRE == 0 {
	}
}

// Getchar blocks until a byte is available and returns it.
func (u *UART) Getchar() byte {
	for readVolatile(u.reg(regLSR))&lsrDR == 0 {
	}
	return readVolatile(u.reg(regRBR))
}

// WriteByte writes a single byte through Putchar, satisfying io.ByteWriter
// so a *UART can back kfmt/early's Sink.
func (u *UART) WriteByte(c byte) error {
	u.Putchar(c)
	return nil
}

// Write writes p one byte at a time through Putchar, satisfying io.Writer
// so a *UART can back kfmt/early's Sink.
func (u *UART) Write(p []byte) (int, error) {
	for _, c := range p {
		u.Putchar(c)
	}
	return len(p), nil
}
