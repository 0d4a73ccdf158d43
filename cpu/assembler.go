// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":      "0",
	"MEMORY_SIZE": fmt.Sprintf("%d", MEMORY_SIZE),
	"STACK_BASE":  fmt.Sprintf("%d", STACK_BASE),
}

var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)

// Datum is a memory word initialised by a .data line.
type Datum struct {
	LineNo  int
	Address int
	Value   int
}

// Source is the result of assembling program text.
type Source struct {
	Instructions []string // Normalised instruction lines.
	LineNos      []int    // Source line of each instruction.
	Data         []Datum  // Initialised memory words.
}

// Assembler is a single pass assembler for MIC-1 program text.
//
// Supported syntax, one statement per line:
//
//	# comment
//	.equ NAME VALUE
//	.data ADDRESS VALUE
//	MNEMONIC [OPERAND]
//
// Any word naming an equate is replaced by its value, and $(expr) is
// evaluated as a starlark integer expression over the equates.
type Assembler struct {
	Verbose bool              // If set, verbosely logs the assembler actions.
	Equate  map[string]string // Map of equates.

	predefine map[string]string // Predefines
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, err := strconv.ParseInt(str, 0, 64)
		if err != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// parseLine expands a single line into words.
// Returns no words for .equ definitions.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%d", lineno)

	// Do $() evaluations
	line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil && err == nil {
			err = _err
		}
		return strconv.Itoa(value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ NAME VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// parseData parses the ADDRESS VALUE words of a .data line.
func parseData(words []string) (datum Datum, err error) {
	if len(words) != 2 {
		err = ErrDataSyntax
		return
	}

	datum.Address, err = strconv.Atoi(words[0])
	if err != nil {
		err = ErrDataValue
		return
	}

	datum.Value, err = strconv.Atoi(words[1])
	if err != nil {
		err = ErrDataValue
		return
	}

	if !inMemory(datum.Address) {
		err = ErrDataAddress
		return
	}

	return
}

// Parse parses program text.
//
// Errors are collected per line as ErrSyntax, and parsing continues
// with the next line.
func (asm *Assembler) Parse(input io.Reader) (src *Source, errs []error) {
	scanner := bufio.NewScanner(input)

	src = &Source{}

	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	var lineno int
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		line := strings.TrimSpace(text)
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		err := asm.parseWords(src, line, lineno)
		if err != nil {
			errs = append(errs, &ErrSyntax{LineNo: lineno, Line: line, Err: err})
		}
	}

	err := scanner.Err()
	if err != nil {
		errs = append(errs, &ErrSyntax{LineNo: lineno, Err: err})
	}

	return
}

// parseWords evaluates a line of assembly text into the source.
func (asm *Assembler) parseWords(src *Source, line string, lineno int) (err error) {
	words, err := asm.parseLine(line, lineno)
	if err != nil || len(words) == 0 {
		return
	}

	if words[0] == ".data" {
		var datum Datum
		datum, err = parseData(words[1:])
		if err != nil {
			return
		}
		datum.LineNo = lineno
		src.Data = append(src.Data, datum)
		return
	}

	inst, err := ParseInstruction(strings.Join(words, " "))
	if err != nil {
		return
	}

	src.Instructions = append(src.Instructions, inst.String())
	src.LineNos = append(src.LineNos, lineno)

	return
}
