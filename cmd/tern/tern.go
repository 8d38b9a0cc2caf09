package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/peterh/liner"

	"tern-compiler/internal/pkg/ast"
	"tern-compiler/internal/pkg/ast/parsed"
	"tern-compiler/internal/pkg/common"
	"tern-compiler/internal/pkg/processors"
)

const historyFileName = ".tern_history"

func main() {
	homeDir, _ := os.UserHomeDir()
	defaultCacheDir := filepath.Join(homeDir, ".tern")

	cacheDir := flag.String("cache", defaultCacheDir, "package cache directory")
	upgrade := flag.Bool("upgrade", false, "upgrade cached packages")
	vendorDir := flag.String("vendor", "", "copy resolved dependency packages into this directory")
	trace := flag.Bool("trace", false, "print checker trace events")
	dump := flag.Bool("dump", false, "dump the final substitution and declaration stores")
	interactive := flag.Bool("i", false, "start an interactive session")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tern compiler version: %s\n", processors.Version)
		return
	}

	log := &common.LogWriter{Verbose: *trace}

	if *interactive {
		repl(log)
		return
	}

	if len(flag.Args()) == 0 {
		log.Err(common.NewSystemError(fmt.Errorf("no input, run as `tern <path-to-package-or-source>`")))
		log.Flush(os.Stdout)
		os.Exit(1)
	}

	ok := true
	for _, arg := range flag.Args() {
		if !checkTarget(arg, *cacheDir, *upgrade, *vendorDir, *dump, log) {
			ok = false
			break
		}
	}
	log.Flush(os.Stdout)
	if !ok {
		os.Exit(1)
	}
}

func checkTarget(arg, cacheDir string, upgrade bool, vendorDir string, dump bool, log *common.LogWriter) bool {
	var program *parsed.Program

	if strings.HasSuffix(arg, ".tn") {
		p, errs := processors.Parse(arg)
		if len(errs) > 0 {
			for _, e := range errs {
				log.Err(e)
			}
			return false
		}
		program = p
	} else {
		loadedPackages := map[ast.PackageIdentifier]*processors.LoadedPackage{}
		root, err := processors.LoadPackage(arg, cacheDir, "", upgrade, loadedPackages, log)
		if err != nil {
			log.Err(err)
			return false
		}
		if vendorDir != "" {
			for _, pkg := range loadedPackages {
				if err := processors.VendorPackage(pkg, vendorDir); err != nil {
					log.Err(err)
					return false
				}
			}
		}
		program = processors.BuildProgram(root, loadedPackages)
	}

	ctx, err := processors.CheckProgram(program, log)
	if err != nil {
		return false
	}

	printContext(os.Stdout, arg, ctx)
	if dump {
		fmt.Print(spew.Sdump(ctx.Rewrites()))
		fmt.Print(spew.Sdump(ctx.Declarations()))
	}
	return true
}

func printContext(w io.Writer, name string, ctx *processors.TypeContext) {
	_, _ = fmt.Fprintf(w, "%s: ok\n", name)
	decls := ctx.Declarations()
	for i := len(decls) - 1; i >= 0; i-- {
		_, _ = fmt.Fprintf(w, "  %s\n", decls[i])
	}
}

func repl(log *common.LogWriter) {
	fmt.Printf("tern %s interactive session\nstatements end with `.`, `? expr.` queries a type, :quit exits\n", processors.Version)

	histPath := filepath.Join(os.TempDir(), historyFileName)
	if homeDir, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(homeDir, historyFileName)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	ctx := processors.NewTypeContext(log)
	for {
		input, ok := readStatement(ln)
		if !ok {
			return
		}
		if input == "" {
			continue
		}
		ln.AppendHistory(input)

		if strings.HasPrefix(input, "?") {
			query(ctx, strings.TrimSuffix(strings.TrimSpace(input[1:]), "."), log)
			log.Flush(os.Stdout)
			continue
		}

		program, errs := processors.ParseWithContent("<repl>", input)
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Printf("%v", e)
			}
			continue
		}
		for _, stmt := range program.Statements {
			if err := processors.CheckStatement(ctx, stmt); err != nil {
				fmt.Printf("%v", err)
				break
			}
		}
		log.Flush(os.Stdout)
	}
}

func query(ctx *processors.TypeContext, text string, log *common.LogWriter) {
	e, err := processors.ParseExpressionString("<repl>", text)
	if err != nil {
		fmt.Printf("%v", err)
		return
	}

	// querying a name that was never checked reports the missing
	// declaration instead of inventing a fresh type for it
	if v, ok := e.(*parsed.Var); ok {
		tv, err := ctx.DeclaredType(v)
		if err != nil {
			fmt.Printf("%v", err)
			return
		}
		fmt.Printf("%s : %s\n", v.Code(), tv.Code())
		return
	}

	tv, err := processors.CheckExpression(ctx, e)
	if err != nil {
		fmt.Printf("%v", err)
		return
	}
	fmt.Printf("%s : %s\n", e.Code(), tv.Code())
}

func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := "tern> "
		if b.Len() > 0 {
			prompt = "....> "
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		trimmed := strings.TrimSpace(line)
		if b.Len() == 0 && (trimmed == ":quit" || trimmed == ":q") {
			return "", false
		}
		b.WriteString(line)
		b.WriteString("\n")

		text := strings.TrimSpace(b.String())
		if text == "" {
			return "", true
		}
		if strings.HasSuffix(text, ".") {
			return text, true
		}
	}
}
