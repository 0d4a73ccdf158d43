package cpu

import (
	"errors"

	"github.com/ezrec/mic1/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrOutOfBounds       = errors.New(f("out of bounds"))
	ErrEndOfProgram      = errors.New(f("end of program"))
	ErrStackUnderflow    = errors.New(f("stack underflow"))
	ErrStackOverflow     = errors.New(f("stack overflow"))
	ErrMaxCyclesExceeded = errors.New(f("max cycles exceeded"))

	// Instruction parse errors
	ErrUnknownInstruction = errors.New(f("unknown instruction"))
	ErrInvalidOperand     = errors.New(f("invalid operand"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrDataSyntax      = errors.New(f(".data syntax"))
	ErrDataValue       = errors.New(f(".data address or value invalid"))
	ErrDataAddress     = errors.New(f(".data address out of memory"))
)

// ErrOpcode reports the instruction that failed to execute.
type ErrOpcode struct {
	Instruction
	Err error
}

func (eo *ErrOpcode) Error() string {
	return f("%v: %v", eo.Instruction.String(), eo.Err)
}

func (eo *ErrOpcode) Unwrap() error {
	return eo.Err
}

// ErrAddress is an effective address outside of memory.
type ErrAddress int

func (ea ErrAddress) Error() string {
	return f("address %d out of bounds", int(ea))
}

func (ea ErrAddress) Unwrap() error {
	return ErrOutOfBounds
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrParseMnemonic is a word that names no instruction.
type ErrParseMnemonic string

func (err ErrParseMnemonic) Error() string {
	return f("unknown instruction '%v'", string(err))
}

func (err ErrParseMnemonic) Unwrap() error {
	return ErrUnknownInstruction
}

// ErrParseOperand is an operand that is not a base-10 integer.
type ErrParseOperand string

func (err ErrParseOperand) Error() string {
	return f("invalid operand '%v'", string(err))
}

func (err ErrParseOperand) Unwrap() error {
	return ErrInvalidOperand
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
