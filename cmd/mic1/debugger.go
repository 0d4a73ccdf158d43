package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/k0kubun/pp/v3"
	"github.com/shibukawa/configdir"

	"github.com/ezrec/mic1/emulator"
	"github.com/ezrec/mic1/session"
)

const debuggerHelp = `step              execute one instruction
continue          run to the next breakpoint or halt
run               run to halt
break N           set a breakpoint on step count N
delete N          remove the breakpoint on step count N
toggle N          toggle the breakpoint on step count N
reset             reset the processor and reload the program
state             print the processor state
mem START LEN     dump memory words
history           print the execution history
quit              leave the debugger`

var errQuit = errors.New("quit")

// debugger runs an interactive debugger prompt on a program file.
func debugger(reg *session.Registry, path string, opts options) (err error) {
	id := reg.Create()
	defer reg.Delete(id)

	prog, err := loadFile(reg, id, path)
	if err != nil {
		return
	}

	configDirs := configdir.New("mic1", "debugger")
	cacheDir := configDirs.QueryCacheFolder()
	historyPath := ""
	if err := cacheDir.MkdirAll(); err == nil {
		historyPath = filepath.Join(cacheDir.Path, "history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mic1> ",
		HistoryFile:     historyPath,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return
	}
	defer rl.Close()

	w := rl.Stdout()

	for {
		line, rerr := rl.Readline()
		if rerr == readline.ErrInterrupt {
			continue
		} else if rerr == io.EOF {
			break
		} else if rerr != nil {
			err = rerr
			return
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		cerr := command(reg, id, prog, opts, w, words)
		if errors.Is(cerr, errQuit) {
			break
		}
		if cerr != nil {
			fmt.Fprintf(w, "error: %v\n", cerr)
		}
	}

	return
}

// intArgs converts command arguments to integers.
func intArgs(args []string, count int) (values []int, err error) {
	if len(args) != count {
		err = fmt.Errorf("expected %d arguments", count)
		return
	}

	values = make([]int, count)
	for n, arg := range args {
		values[n], err = strconv.Atoi(arg)
		if err != nil {
			return
		}
	}

	return
}

// report prints an execution result.
func report(w io.Writer, result emulator.ExecutionResult, opts options) {
	state := result.State
	fmt.Fprintf(w, "PC=%d AC=%d SP=%d cycles=%d", state.Registers.PC, state.Registers.AC, state.Registers.SP, state.CycleCount)
	if state.LastInstruction != nil {
		fmt.Fprintf(w, " [%v]", state.LastInstruction)
	}
	fmt.Fprintln(w)

	if result.Err != nil {
		fmt.Fprintf(w, "stopped: %v\n", result.Err)
	}

	if opts.dump {
		pp.Fprintln(w, state.Registers, state.Alu, state.Bus)
	}
}

// command executes a single debugger command.
func command(reg *session.Registry, id string, prog *emulator.Program, opts options, w io.Writer, words []string) (err error) {
	var result emulator.ExecutionResult
	var values []int

	switch words[0] {
	case "step", "s":
		result, err = reg.Step(id)
		if err == nil {
			report(w, result, opts)
		}
	case "continue", "c":
		result, err = reg.Continue(id)
		if err == nil {
			report(w, result, opts)
		}
	case "run", "r":
		result, err = reg.Execute(id, false)
		if err == nil {
			report(w, result, opts)
		}
	case "break", "b":
		values, err = intArgs(words[1:], 1)
		if err == nil {
			err = reg.SetBreakpoint(id, values[0])
		}
	case "delete", "d":
		values, err = intArgs(words[1:], 1)
		if err == nil {
			err = reg.RemoveBreakpoint(id, values[0])
		}
	case "toggle", "t":
		values, err = intArgs(words[1:], 1)
		if err == nil {
			err = reg.ToggleBreakpoint(id, values[0])
		}
	case "reset":
		err = reg.LoadProgram(id, prog)
	case "state":
		var text string
		text, err = reg.StateReport(id)
		if err == nil {
			fmt.Fprintln(w, text)
		}
		var info emulator.DebugInfo
		info, err = reg.DebugInfo(id)
		if err == nil {
			fmt.Fprintf(w, "Step: %d  Line: %d\n", info.CurrentLine, info.SourceLine)
			for _, bp := range info.Breakpoints {
				fmt.Fprintf(w, "  break %d enabled=%v\n", bp.Line, bp.Enabled)
			}
		}
	case "mem", "m":
		values, err = intArgs(words[1:], 2)
		if err != nil {
			return
		}
		var mem []int
		mem, err = reg.MemoryDump(id, values[0], values[1])
		for n, word := range mem {
			if n%8 == 0 {
				if n > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%04d:", values[0]+n)
			}
			fmt.Fprintf(w, " %6d", word)
		}
		fmt.Fprintln(w)
	case "history", "h":
		history, herr := reg.History(id)
		err = herr
		for _, entry := range history {
			fmt.Fprintf(w, "%6d: %-12v %v -> %v\n", entry.Cycle, entry.Micro, entry.Bus.From, entry.Bus.To)
		}
	case "help", "?":
		fmt.Fprintln(w, debuggerHelp)
	case "quit", "q", "exit":
		err = errQuit
	default:
		err = fmt.Errorf("unknown command %q, try help", words[0])
	}

	return
}
