// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ezrec/mic1/cpu"
	"github.com/ezrec/mic1/emulator"
	"github.com/ezrec/mic1/session"
	"github.com/ezrec/mic1/translate"
)

// options of the command line driver.
type options struct {
	verbose bool
	dump    bool
	binary  bool
	cycles  int
}

func main() {
	var opts options
	var interactive bool
	var lang string

	flag.BoolVar(&opts.verbose, "v", false, "Verbose mode")
	flag.BoolVar(&opts.dump, "d", false, "Dump registers and debug info")
	flag.BoolVar(&opts.binary, "b", false, "Print the binary listing")
	flag.IntVar(&opts.cycles, "n", cpu.MAX_CYCLES, "Maximum cycles per run")
	flag.BoolVar(&interactive, "i", false, "Interactive debugger")
	flag.StringVar(&lang, "l", "", "Message locale, such as en-US")

	flag.Parse()

	if len(lang) != 0 {
		translate.SetLocale(lang)
	}

	if flag.NArg() == 0 {
		log.Fatalf("%v: No program files", os.Args[0])
	}

	reg := session.NewRegistry(session.Config{
		Verbose:   opts.verbose,
		MaxCycles: opts.cycles,
	})

	if interactive {
		if flag.NArg() != 1 {
			log.Fatalf("%v: -i takes a single program file", os.Args[0])
		}
		err := debugger(reg, flag.Arg(0), opts)
		if err != nil {
			log.Fatalf("%v: %v", flag.Arg(0), err)
		}
		return
	}

	outputs := make([]bytes.Buffer, flag.NArg())

	g, ctx := errgroup.WithContext(context.Background())
	for n, path := range flag.Args() {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return runFile(reg, path, opts, &outputs[n])
		})
	}
	err := g.Wait()

	for n := range outputs {
		_, _ = outputs[n].WriteTo(os.Stdout)
	}

	if err != nil {
		log.Fatal(err)
	}
}

// loadFile parses and loads a program file into the session id.
func loadFile(reg *session.Registry, id string, path string) (prog *emulator.Program, err error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return
	}

	result, err := reg.ParseProgram(id, string(text))
	if err != nil {
		return
	}
	if !result.Valid {
		err = errors.Join(result.Errors...)
		return
	}

	prog = result.Program
	err = reg.LoadProgram(id, prog)

	return
}

// runFile runs a program file in a new session, and writes the report to w.
func runFile(reg *session.Registry, path string, opts options, w io.Writer) (err error) {
	id := reg.Create()
	defer reg.Delete(id)

	prog, err := loadFile(reg, id, path)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	fmt.Fprintf(w, "--- %v\n", path)

	if opts.binary {
		for n, bin := range emulator.ProgramToBinary(prog) {
			fmt.Fprintf(w, "%4d: %v  %v\n", n, bin, prog.Instructions[n])
		}
	}

	result, err := reg.Execute(id, false)
	if err != nil {
		return
	}

	report, err := reg.StateReport(id)
	if err != nil {
		return
	}
	fmt.Fprintln(w, report)

	if opts.dump {
		info, _ := reg.DebugInfo(id)
		pp.Fprintln(w, result.State.Registers, result.State.Alu, info)
	}

	if !result.Halted {
		err = fmt.Errorf("%v: %w", path, result.Err)
		return
	}

	fmt.Fprintln(w, strings.TrimSpace(result.Message()))

	return
}
