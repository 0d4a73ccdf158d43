// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator is the debug controller for a single MIC-1 session.
//
// An Emulator owns one CPU, and tracks the loaded program, breakpoints and
// the number of instructions stepped under debugger control.
package emulator

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/ezrec/mic1/cpu"
)

// Breakpoint on a debugger line count.
type Breakpoint struct {
	Line    int  `json:"line"`
	Enabled bool `json:"enabled"`
}

// DebugInfo is the debugger state.
type DebugInfo struct {
	CurrentLine int          `json:"currentLine"` // Instructions stepped under debugger control.
	SourceLine  int          `json:"sourceLine"`  // Program line at PC, or 0.
	Breakpoints []Breakpoint `json:"breakpoints"`
	StepMode    bool         `json:"stepMode"`
}

// Program is validated program text, ready to load.
type Program struct {
	Instructions []string    `json:"instructions"`
	Data         map[int]int `json:"data,omitempty"`
}

// ParseResult is the outcome of ParseProgram.
type ParseResult struct {
	Valid   bool     // Set if there are no errors.
	Errors  []error  // Per-line cpu.ErrSyntax errors.
	Program *Program // Set if Valid.
}

// ExecutionResult is the outcome of an execution request.
type ExecutionResult struct {
	Success bool      `json:"success"`
	State   cpu.State `json:"state"`
	Err     error     `json:"-"`
	Halted  bool      `json:"halted"` // Stopped on the halt word.
}

// Message returns the error text, or the empty string.
func (result *ExecutionResult) Message() string {
	if result.Err == nil {
		return ""
	}
	return result.Err.Error()
}

// Emulator state. CPU + debugger.
type Emulator struct {
	Verbose   bool         // If set, enables verbose logging.
	*cpu.Cpu               // Reference to the CPU simulation.
	Program   *cpu.Program // Listing of the loaded program.
	Lines     []string     // Instruction lines of the loaded program.
	Debug     DebugInfo    // Debugger state.
	MaxCycles int          // Cycle guard for Execute and Continue.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:       cpu.NewCpu(),
		MaxCycles: cpu.MAX_CYCLES,
	}

	return
}

// ParseProgram parses and validates program text.
func (emu *Emulator) ParseProgram(text string) (result ParseResult) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}

	src, errs := asm.Parse(strings.NewReader(text))

	result.Errors = errs
	result.Valid = len(errs) == 0
	if !result.Valid {
		return
	}

	prog := &Program{
		Instructions: src.Instructions,
		Data:         make(map[int]int, len(src.Data)),
	}
	for _, datum := range src.Data {
		prog.Data[datum.Address] = datum.Value
	}
	result.Program = prog

	return
}

// LoadProgram resets the CPU, then loads the program instructions at
// address 0 and the program data.
func (emu *Emulator) LoadProgram(prog *Program) (err error) {
	if prog == nil {
		err = ErrProgramMissing
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Lines = slices.Clone(prog.Instructions)
	emu.Program = nil

	listing, err := emu.Cpu.LoadProgram(prog.Instructions, 0)
	if err != nil {
		return
	}
	emu.Program = listing

	for addr, value := range prog.Data {
		if !emu.Cpu.SetMemory(addr, value) && emu.Verbose {
			log.Printf("emulator: data at %d outside of memory", addr)
		}
	}

	emu.Debug = DebugInfo{}

	return
}

// LineNo returns the program line at the PC, or 0.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	line, ok := emu.Program.Debug(emu.Cpu.PC)
	if !ok {
		return 0
	}

	return line.LineNo
}

// result builds the execution result for err.
func (emu *Emulator) result(err error) (result ExecutionResult) {
	if err != nil {
		lineno := emu.LineNo()
		if lineno > 0 {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
		if emu.Verbose {
			log.Printf("emulator: %v", err)
		}
	}

	result = ExecutionResult{
		Success: err == nil,
		State:   emu.Cpu.State(),
		Err:     err,
		Halted:  errors.Is(err, cpu.ErrEndOfProgram),
	}

	return
}

// Execute runs the program, or single steps it if stepMode is set.
func (emu *Emulator) Execute(stepMode bool) (result ExecutionResult) {
	emu.Debug.StepMode = stepMode

	if stepMode {
		return emu.Step()
	}

	emu.Cpu.Verbose = emu.Verbose
	err := emu.Cpu.Run(emu.MaxCycles)

	return emu.result(err)
}

// Step executes one instruction.
func (emu *Emulator) Step() (result ExecutionResult) {
	emu.Cpu.Verbose = emu.Verbose

	err := emu.Cpu.Step()
	if err == nil {
		emu.Debug.CurrentLine++
	}

	return emu.result(err)
}

// Continue steps until an error, an enabled breakpoint, or the halt word
// is next to execute.
func (emu *Emulator) Continue() (result ExecutionResult) {
	emu.Cpu.Verbose = emu.Verbose

	maxCycles := emu.MaxCycles
	if maxCycles <= 0 {
		maxCycles = cpu.MAX_CYCLES
	}

	for range maxCycles {
		err := emu.Cpu.Step()
		if err != nil {
			return emu.result(err)
		}

		emu.Debug.CurrentLine++

		if emu.breakpointHit() {
			if emu.Verbose {
				log.Printf("emulator: breakpoint at line %d", emu.Debug.CurrentLine)
			}
			return emu.result(nil)
		}

		if emu.Cpu.GetMemory(emu.Cpu.PC) == 0 {
			return emu.result(nil)
		}
	}

	return emu.result(cpu.ErrMaxCyclesExceeded)
}

// Reset the CPU and the debugger state.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Program = nil
	emu.Debug = DebugInfo{}
}

// breakpointHit returns true if an enabled breakpoint is on the current line.
func (emu *Emulator) breakpointHit() bool {
	return slices.ContainsFunc(emu.Debug.Breakpoints, func(bp Breakpoint) bool {
		return bp.Enabled && bp.Line == emu.Debug.CurrentLine
	})
}

// breakpoint returns the index of the breakpoint on line, or -1.
func (emu *Emulator) breakpoint(line int) int {
	return slices.IndexFunc(emu.Debug.Breakpoints, func(bp Breakpoint) bool {
		return bp.Line == line
	})
}

// SetBreakpoint sets, or re-enables, a breakpoint on line.
func (emu *Emulator) SetBreakpoint(line int) {
	n := emu.breakpoint(line)
	if n >= 0 {
		emu.Debug.Breakpoints[n].Enabled = true
		return
	}

	emu.Debug.Breakpoints = append(emu.Debug.Breakpoints, Breakpoint{Line: line, Enabled: true})
}

// RemoveBreakpoint removes the breakpoint on line.
func (emu *Emulator) RemoveBreakpoint(line int) {
	emu.Debug.Breakpoints = slices.DeleteFunc(emu.Debug.Breakpoints, func(bp Breakpoint) bool {
		return bp.Line == line
	})
}

// ToggleBreakpoint flips the breakpoint on line, setting it if missing.
func (emu *Emulator) ToggleBreakpoint(line int) {
	n := emu.breakpoint(line)
	if n < 0 {
		emu.SetBreakpoint(line)
		return
	}

	emu.Debug.Breakpoints[n].Enabled = !emu.Debug.Breakpoints[n].Enabled
}

// DebugInfo returns a copy of the debugger state.
func (emu *Emulator) DebugInfo() (info DebugInfo) {
	info = emu.Debug
	info.Breakpoints = slices.Clone(emu.Debug.Breakpoints)
	info.SourceLine = emu.LineNo()

	return
}

// GetMemoryDump returns length words from start. Words outside of memory
// read as 0.
func (emu *Emulator) GetMemoryDump(start, length int) []int {
	return emu.Cpu.Dump(start, length)
}

// History returns the executed instruction history, oldest first.
func (emu *Emulator) History() []cpu.HistoryEntry {
	return emu.Cpu.History.Entries()
}

// TruncateHistory keeps the newest n history entries.
func (emu *Emulator) TruncateHistory(n int) {
	emu.Cpu.History.Truncate(n)
}

// GetStateReport returns a human readable report of the processor.
func (emu *Emulator) GetStateReport() string {
	state := emu.Cpu.State()

	report := []string{
		"=== MIC-1 Processor State ===",
		fmt.Sprintf("Cycle Count: %d", state.CycleCount),
		fmt.Sprintf("Running: %v", state.Running),
		"",
		"Registers:",
		fmt.Sprintf("  PC: %d", state.Registers.PC),
		fmt.Sprintf("  AC: %d", state.Registers.AC),
		fmt.Sprintf("  SP: %d", state.Registers.SP),
		fmt.Sprintf("  IR: 0x%04x", uint16(state.Registers.IR)),
		"",
	}

	if state.LastInstruction != nil {
		report = append(report, "Last Instruction: "+state.LastInstruction.String())
	}

	return strings.Join(report, "\n")
}

// ProgramToBinary returns each instruction of the program as a 16 digit
// binary string, or "ERROR" if the line does not parse.
func ProgramToBinary(prog *Program) (bins []string) {
	if prog == nil {
		return
	}

	bins = make([]string, 0, len(prog.Instructions))
	for _, line := range prog.Instructions {
		inst, err := cpu.ParseInstruction(line)
		if err != nil {
			bins = append(bins, "ERROR")
			continue
		}
		bins = append(bins, fmt.Sprintf("%016b", inst.Encode()))
	}

	return
}
