package cpu

import (
	"iter"
	"strings"
)

// Line is a single assembled instruction of a program.
type Line struct {
	LineNo      int         // 1-based index into the program lines.
	Ip          int         // Memory address of the instruction.
	Words       []string    // Words of the source line.
	Instruction Instruction // Parsed instruction.
	Code        uint16      // Encoded instruction word.
}

// Program is an assembled program listing.
type Program struct {
	Base  int    // Address of the first instruction.
	Lines []Line // Assembled instructions, in memory order.
}

// Assemble parses and encodes program lines into a listing at base.
// Blank lines are skipped, but still count for line numbers.
func Assemble(lines []string, base int) (prog *Program, err error) {
	var line string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	if !inMemory(base) {
		err = ErrAddress(base)
		return
	}

	prog = &Program{Base: base}

	for lineno, line = range lines {
		lineno += 1
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}

		var inst Instruction
		inst, err = ParseInstruction(line)
		if err != nil {
			return
		}

		ip := prog.End()
		// Leave room for the halt word.
		if !inMemory(ip + 1) {
			err = ErrAddress(ip + 1)
			return
		}

		prog.Lines = append(prog.Lines, Line{
			LineNo:      lineno,
			Ip:          ip,
			Words:       strings.Fields(line),
			Instruction: inst,
			Code:        inst.Encode(),
		})
	}

	return
}

// End is the address following the last instruction; the halt word.
func (prog *Program) End() int {
	return prog.Base + len(prog.Lines)
}

// Debug returns the listing line at address ip.
func (prog *Program) Debug(ip int) (line Line, ok bool) {
	index := ip - prog.Base
	if index < 0 || index >= len(prog.Lines) {
		return
	}

	return prog.Lines[index], true
}

// Binary returns the encoded instruction words.
func (prog *Program) Binary() (bins []uint16) {
	for _, code := range prog.Codes() {
		bins = append(bins, code)
	}

	return
}

// Codes iterates the memory address and encoded word of each instruction.
func (prog *Program) Codes() iter.Seq2[int, uint16] {
	return func(yield func(ip int, code uint16) bool) {
		for _, line := range prog.Lines {
			if !yield(line.Ip, line.Code) {
				return
			}
		}
	}
}
