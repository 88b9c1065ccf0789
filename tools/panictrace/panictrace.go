// Command panictrace disassembles the faulting instruction out of a
// captured kernel panic transcript (spec §7 kind 2: hardware faults dump
// sepc/stval/scause and halt, spec §4.5's fault path). The kernel itself
// never disassembles anything — doing so would need a decoder linked into
// a freestanding binary for a case that only matters during postmortem
// debugging — so this stays strictly host-side, the same boundary
// tools/redirects draws between "parses Go source and a built ELF" and
// "runs inside the kernel".
//
// A transcript line looks like:
//
//	unhandled trap: scause=2 sepc=80201084 stval=0 bytes=a000006f
//
// where bytes is the 32-bit word read at sepc, printed as a hex number
// (most significant digit first, no leading zeros) by the existing panic
// dump (kernel/trap.dispatch's early.Printf call); panictrace puts that
// word back into little-endian instruction byte order and turns it into a
// human-readable mnemonic.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"golang.org/x/arch/riscv64/riscv64asm"
)

var transcriptLine = regexp.MustCompile(`sepc=([0-9a-fA-F]+).*bytes=([0-9a-fA-F]+)`)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[panictrace] error: %s\n", err.Error())
	os.Exit(1)
}

// decodeFault parses a single transcript line and returns the faulting
// pc and a disassembled mnemonic, or ok=false if the line doesn't carry
// the fields this tool needs.
func decodeFault(line string) (pc uint64, mnemonic string, ok bool) {
	m := transcriptLine.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}

	if _, err := fmt.Sscanf(m[1], "%x", &pc); err != nil {
		return 0, "", false
	}

	word, err := strconv.ParseUint(m[2], 16, 32)
	if err != nil {
		return 0, "", false
	}
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, uint32(word))

	inst, err := riscv64asm.Decode(raw)
	if err != nil {
		return pc, fmt.Sprintf("<undecodable: %s>", err), true
	}
	return pc, inst.String(), true
}

func run(in *os.File) error {
	scanner := bufio.NewScanner(in)
	found := false
	for scanner.Scan() {
		pc, mnemonic, ok := decodeFault(scanner.Text())
		if !ok {
			continue
		}
		found = true
		fmt.Printf("%#x: %s\n", pc, mnemonic)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no fault lines found in transcript")
	}
	return nil
}

func main() {
	transcript := flag.String("in", "-", "path to a captured panic transcript, or - for STDIN")
	flag.Parse()

	in := os.Stdin
	if *transcript != "-" {
		f, err := os.Open(*transcript)
		if err != nil {
			exit(err)
		}
		defer f.Close()
		in = f
	}

	if err := run(in); err != nil {
		exit(err)
	}
}
