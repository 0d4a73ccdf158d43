package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

// Opcode is a MIC-1 macro-instruction.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	// Basic family, selected by the top nibble. 12-bit operand.
	OP_LODD = Opcode(0)  // LODD
	OP_STOD = Opcode(1)  // STOD
	OP_ADDD = Opcode(2)  // ADDD
	OP_SUBD = Opcode(3)  // SUBD
	OP_JPOS = Opcode(4)  // JPOS
	OP_JZER = Opcode(5)  // JZER
	OP_JUMP = Opcode(6)  // JUMP
	OP_LOCO = Opcode(7)  // LOCO
	OP_LODL = Opcode(8)  // LODL
	OP_STOL = Opcode(9)  // STOL
	OP_ADDL = Opcode(10) // ADDL
	OP_SUBL = Opcode(11) // SUBL
	OP_JNEG = Opcode(12) // JNEG
	OP_JNZE = Opcode(13) // JNZE
	OP_CALL = Opcode(14) // CALL

	// Extended family, top nibble 0xF. 8-bit operand.
	OP_PSHI = Opcode(15) // PSHI
	OP_POPI = Opcode(16) // POPI
	OP_PUSH = Opcode(17) // PUSH
	OP_POP  = Opcode(18) // POP
	OP_RETN = Opcode(19) // RETN
	OP_SWAP = Opcode(20) // SWAP
	OP_INSP = Opcode(21) // INSP
	OP_DESP = Opcode(22) // DESP

	OP_COUNT = 23 // Number of opcodes.
)

const (
	WORD_MASK     = 0xffff // Instruction word.
	BASIC_MASK    = 0x0fff // Basic family operand.
	EXTENDED_MASK = 0x00ff // Extended family operand.
	EXTENDED_BITS = 0xf000 // Top nibble of the extended family.
)

// mnemonicMap maps upper-case mnemonics to opcodes.
var mnemonicMap = func() map[string]Opcode {
	m := make(map[string]Opcode, OP_COUNT)
	for op := range Opcode(OP_COUNT) {
		m[op.String()] = op
	}
	return m
}()

// Extended returns true if the opcode is in the 0xF family.
func (op Opcode) Extended() bool {
	return op >= OP_PSHI && op < OP_COUNT
}

// HasOperand returns true if the opcode carries an operand.
func (op Opcode) HasOperand() bool {
	return op != OP_RETN
}

// Valid returns true for one of the 23 opcodes.
func (op Opcode) Valid() bool {
	return op >= OP_LODD && op < OP_COUNT
}

// sub returns the extended sub-selector nibble.
func (op Opcode) sub() uint16 {
	switch op {
	case OP_PSHI:
		return 0x0
	case OP_POPI:
		return 0x1
	case OP_PUSH:
		return 0x2
	case OP_POP:
		return 0x3
	case OP_RETN:
		return 0x4
	case OP_SWAP:
		return 0x5
	case OP_INSP:
		return 0xc
	case OP_DESP:
		return 0xe
	}
	panic("not an extended opcode")
}

// Instruction is a decoded macro-instruction.
type Instruction struct {
	Opcode  Opcode `json:"opcode"`
	Operand int    `json:"operand"`
}

// String returns the assembly text of the instruction.
func (inst Instruction) String() string {
	if !inst.Opcode.HasOperand() {
		return inst.Opcode.String()
	}
	return fmt.Sprintf("%v %d", inst.Opcode, inst.Operand)
}

// Encode the instruction into a 16-bit word.
func (inst Instruction) Encode() uint16 {
	return Encode(inst.Opcode, inst.Operand)
}

// Encode an opcode and operand into a 16-bit word.
// The operand is masked to the width of the opcode family.
func Encode(op Opcode, operand int) (word uint16) {
	if !op.HasOperand() {
		operand = 0
	}

	if op.Extended() {
		word = EXTENDED_BITS | (op.sub() << 8) | (uint16(operand) & EXTENDED_MASK)
	} else {
		word = (uint16(op) << 12) | (uint16(operand) & BASIC_MASK)
	}

	return
}

// Decode a 16-bit word.
//
// LOCO sign-extends its 12-bit immediate, all other operands are unsigned.
// Unknown extended sub-selectors decode as LODD of the 8-bit operand.
func Decode(word uint16) (inst Instruction) {
	top := (word >> 12) & 0xf

	if top != 0xf {
		inst.Opcode = Opcode(top)
		inst.Operand = int(word & BASIC_MASK)
		if inst.Opcode == OP_LOCO && (inst.Operand&0x800) != 0 {
			inst.Operand -= 0x1000
		}
		return
	}

	inst.Operand = int(word & EXTENDED_MASK)

	switch (word >> 8) & 0xf {
	case 0x0:
		inst.Opcode = OP_PSHI
	case 0x1:
		inst.Opcode = OP_POPI
	case 0x2:
		inst.Opcode = OP_PUSH
	case 0x3:
		inst.Opcode = OP_POP
	case 0x4:
		inst.Opcode = OP_RETN
		inst.Operand = 0
	case 0x5:
		inst.Opcode = OP_SWAP
	case 0xc:
		inst.Opcode = OP_INSP
	case 0xe:
		inst.Opcode = OP_DESP
	default:
		inst.Opcode = OP_LODD
	}

	return
}

// ParseInstruction parses a single line of assembly text.
//
// The first word names the opcode, case insensitive. The optional second
// word is a base-10 operand. Any further words are ignored.
func ParseInstruction(line string) (inst Instruction, err error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		err = ErrOpcodeMissing
		return
	}

	op, ok := mnemonicMap[strings.ToUpper(words[0])]
	if !ok {
		err = ErrParseMnemonic(words[0])
		return
	}

	inst.Opcode = op

	if len(words) > 1 {
		inst.Operand, err = strconv.Atoi(words[1])
		if err != nil {
			err = ErrParseOperand(words[1])
			return
		}
	}

	return
}
