package main

import "github.com/achilleasa/riscv-uk/kernel/boot"

// main is the only Go symbol the rt0 trampoline needs kept reachable. The
// trampoline itself never calls it the ordinary way: per spec §6's boot
// contract, it jumps straight to boot.Run with hartid and fdt_addr already
// sitting in a0/a1, the same register-passing convention Go's own ABI uses
// for a two-argument call. main exists only so the Go compiler does not
// dead-code-eliminate the kernel packages, the same role gopheros's own
// boot.go assigns its dummy call to kernel.Kmain.
func main() {
	boot.Run(0, 0)
}
