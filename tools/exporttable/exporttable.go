// Command exporttable scans kernel/vdso for //go:vdso-export pragma
// comments and emits the Go source for the vDSO's exported-symbol table
// (spec §4.4 step 4, §9's module-scope "lazy statics for shared tables").
//
// Unlike tools/redirects, which resolves addresses straight out of a
// go/parser AST walk, this tool loads the whole vdso package with
// golang.org/x/tools/go/packages so each //go:vdso-export pragma is
// matched against a fully type-checked *types.Func rather than a
// hand-built import-path string — the same reason the ecosystem built
// go/packages on top of go/parser in the first place.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"go/ast"
	"go/format"
	"os"
	"sort"

	"golang.org/x/tools/go/packages"
)

type export struct {
	symbol string
	fnName string
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[exporttable] error: %s\n", err.Error())
	os.Exit(1)
}

func collectExports(pkgPath string) ([]export, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		return nil, err
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("%s: failed to type-check package", pkgPath)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("%s: expected exactly one package, got %d", pkgPath, len(pkgs))
	}
	pkg := pkgs[0]

	var exports []export
	for _, file := range pkg.Syntax {
		cmap := ast.NewCommentMap(pkg.Fset, file, file.Comments)
		for node, groups := range cmap {
			fnDecl, ok := node.(*ast.FuncDecl)
			if !ok {
				continue
			}
			for _, group := range groups {
				for _, c := range group.List {
					symbol, ok := parsePragma(c.Text)
					if !ok {
						continue
					}
					obj := pkg.TypesInfo.Defs[fnDecl.Name]
					if obj == nil {
						return nil, fmt.Errorf("could not resolve type info for %s", fnDecl.Name)
					}
					exports = append(exports, export{symbol: symbol, fnName: fnDecl.Name.Name})
				}
			}
		}
	}

	sort.Slice(exports, func(i, j int) bool { return exports[i].symbol < exports[j].symbol })
	return exports, nil
}

func parsePragma(commentText string) (symbol string, ok bool) {
	const prefix = "//go:vdso-export "
	if len(commentText) <= len(prefix) || commentText[:len(prefix)] != prefix {
		return "", false
	}
	return commentText[len(prefix):], true
}

func genExportsFile(exports []export) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprint(&buf, "package vdso\n\n")
	fmt.Fprint(&buf, "// Code generated by tools/exporttable from //go:vdso-export pragmas. DO NOT EDIT.\n\n")
	fmt.Fprint(&buf, "var generatedExports = map[string]uintptr{\n")
	for _, e := range exports {
		fmt.Fprintf(&buf, "\t%q: funcAddrOf(%s),\n", e.symbol, e.fnName)
	}
	fmt.Fprint(&buf, "}\n")

	return format.Source(buf.Bytes())
}

func main() {
	pkgPath := flag.String("pkg", "github.com/achilleasa/riscv-uk/kernel/vdso", "import path of the package to scan for //go:vdso-export pragmas")
	output := flag.String("out", "-", "a file to write the generated table or - to output to STDOUT")
	flag.Parse()

	exports, err := collectExports(*pkgPath)
	if err != nil {
		exit(err)
	}
	if len(exports) == 0 {
		exit(errors.New("no //go:vdso-export pragmas found"))
	}

	src, err := genExportsFile(exports)
	if err != nil {
		exit(err)
	}

	if *output == "-" {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(*output, src, 0o644); err != nil {
		exit(err)
	}
}
