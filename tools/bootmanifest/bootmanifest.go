// Command bootmanifest turns a host-only YAML boot manifest (spec §6's
// "statically embedded user-program blobs") into the Go source for
// kernel/boot's embeddedPrograms table. The original reference kernel
// hard-codes this list as include_bytes! calls in main.rs; externalizing
// it into YAML is the same "host tool turns an external asset into a
// compiled-in Go table" shape as tools/makelogo, with gopkg.in/yaml.v3
// standing in for the image decoder.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// manifest is the on-disk shape of boot.yaml: one entry per embedded user
// program, its ELF path and the two syscall-ABI-visible arguments the
// scheduler hands it in tf.X[10]/tf.X[11] at first dispatch (spec §4.4
// step 5).
type manifest struct {
	Programs []struct {
		Name string `yaml:"name"`
		ELF  string `yaml:"elf"`
		Arg0 uint64 `yaml:"arg0"`
		Arg1 uint64 `yaml:"arg1"`
	} `yaml:"programs"`
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[bootmanifest] error: %s\n", err.Error())
	os.Exit(1)
}

func parseManifest(path string) (*manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// genEmbedTable emits a Go source file pairing each manifest entry's ELF
// bytes (via go:embed) with its two boot arguments, in the exact shape
// kernel/boot.embeddedPrograms expects.
func genEmbedTable(m *manifest) []byte {
	var buf bytes.Buffer
	fmt.Fprint(&buf, "package boot\n\n")
	fmt.Fprint(&buf, "// Code generated by tools/bootmanifest from boot.yaml. DO NOT EDIT.\n\n")
	fmt.Fprint(&buf, "import _ \"embed\"\n\n")

	for i, p := range m.Programs {
		fmt.Fprintf(&buf, "//go:embed %s\n", p.ELF)
		fmt.Fprintf(&buf, "var embeddedELF%d []byte // %s\n\n", i, p.Name)
	}

	fmt.Fprint(&buf, "func init() {\n")
	fmt.Fprint(&buf, "\tembeddedPrograms = []struct {\n")
	fmt.Fprint(&buf, "\t\tELF  []byte\n")
	fmt.Fprint(&buf, "\t\tArgs [2]uint64\n")
	fmt.Fprint(&buf, "\t}{\n")
	for i, p := range m.Programs {
		fmt.Fprintf(&buf, "\t\t{ELF: embeddedELF%d, Args: [2]uint64{%#x, %#x}},\n", i, p.Arg0, p.Arg1)
	}
	fmt.Fprint(&buf, "\t}\n}\n")

	return buf.Bytes()
}

func main() {
	manifestPath := flag.String("manifest", "boot.yaml", "path to the boot manifest")
	output := flag.String("out", "-", "a file to write the generated table or - to output to STDOUT")
	flag.Parse()

	m, err := parseManifest(*manifestPath)
	if err != nil {
		exit(err)
	}
	if len(m.Programs) == 0 {
		exit(fmt.Errorf("%s: no programs listed", *manifestPath))
	}

	src := genEmbedTable(m)

	if *output == "-" {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(*output, src, 0o644); err != nil {
		exit(err)
	}
}
