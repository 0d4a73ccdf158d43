package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		inst Instruction
		word uint16
	}){
		{Instruction{OP_LODD, 100}, 0x0064},
		{Instruction{OP_STOD, 100}, 0x1064},
		{Instruction{OP_ADDD, 0xfff}, 0x2fff},
		{Instruction{OP_SUBD, 1}, 0x3001},
		{Instruction{OP_JPOS, 2}, 0x4002},
		{Instruction{OP_JZER, 10}, 0x500a},
		{Instruction{OP_JUMP, 0}, 0x6000},
		{Instruction{OP_LOCO, 10}, 0x700a},
		{Instruction{OP_LOCO, -1}, 0x7fff},
		{Instruction{OP_LODL, 1}, 0x8001},
		{Instruction{OP_STOL, 2}, 0x9002},
		{Instruction{OP_ADDL, 3}, 0xa003},
		{Instruction{OP_SUBL, 4}, 0xb004},
		{Instruction{OP_JNEG, 5}, 0xc005},
		{Instruction{OP_JNZE, 6}, 0xd006},
		{Instruction{OP_CALL, 7}, 0xe007},
		{Instruction{OP_PSHI, 8}, 0xf008},
		{Instruction{OP_POPI, 9}, 0xf109},
		{Instruction{OP_PUSH, 7}, 0xf207},
		{Instruction{OP_POP, 0}, 0xf300},
		{Instruction{OP_RETN, 0}, 0xf400},
		{Instruction{OP_RETN, 33}, 0xf400},
		{Instruction{OP_SWAP, 10}, 0xf50a},
		{Instruction{OP_INSP, 2}, 0xfc02},
		{Instruction{OP_DESP, 3}, 0xfe03},
		{Instruction{OP_PUSH, 0x1ff}, 0xf2ff},
	}

	for _, entry := range table {
		assert.Equal(entry.word, entry.inst.Encode(), entry.inst.String())
	}
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	// Every encoding of every opcode decodes to itself.
	for op := range Opcode(OP_COUNT) {
		operands := []int{0, 1, 0x7f, 0xff}
		if !op.Extended() {
			operands = append(operands, 0x100, 0x7ff, 0xfff)
		}
		if !op.HasOperand() {
			operands = []int{0}
		}
		for _, operand := range operands {
			inst := Instruction{Opcode: op, Operand: operand}
			word := inst.Encode()
			decoded := Decode(word)
			if op == OP_LOCO && operand >= 0x800 {
				assert.Equal(operand-0x1000, decoded.Operand, inst.String())
				continue
			}
			assert.Equal(inst, decoded, inst.String())
		}
	}

	// Unknown extended sub-selectors are LODD of the 8-bit operand.
	for _, word := range []uint16{0xf6ab, 0xf7ab, 0xf8ab, 0xf9ab, 0xfaab, 0xfbab, 0xfdab, 0xffab} {
		assert.Equal(Instruction{OP_LODD, 0xab}, Decode(word))
	}

	// LOCO sign extension.
	assert.Equal(Instruction{OP_LOCO, -1}, Decode(0x7fff))
	assert.Equal(Instruction{OP_LOCO, -2048}, Decode(0x7800))
	assert.Equal(Instruction{OP_LOCO, 2047}, Decode(0x77ff))

	// RETN has no operand.
	assert.Equal(Instruction{OP_RETN, 0}, Decode(0xf4ff))
}

func TestOpcodeString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("LODD", OP_LODD.String())
	assert.Equal("CALL", OP_CALL.String())
	assert.Equal("PSHI", OP_PSHI.String())
	assert.Equal("DESP", OP_DESP.String())
	assert.Equal("Opcode(23)", Opcode(OP_COUNT).String())

	assert.Equal("LODD 100", Instruction{OP_LODD, 100}.String())
	assert.Equal("LOCO -5", Instruction{OP_LOCO, -5}.String())
	assert.Equal("RETN", Instruction{OP_RETN, 0}.String())

	assert.True(OP_DESP.Valid())
	assert.False(Opcode(OP_COUNT).Valid())
	assert.False(Opcode(-1).Valid())
	assert.True(OP_PSHI.Extended())
	assert.False(OP_CALL.Extended())
}

func TestParseInstruction(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		inst Instruction
		err  error
	}){
		{"LODD 100", Instruction{OP_LODD, 100}, nil},
		{"  lodd   100  ", Instruction{OP_LODD, 100}, nil},
		{"Loco -3", Instruction{OP_LOCO, -3}, nil},
		{"RETN", Instruction{OP_RETN, 0}, nil},
		{"POP", Instruction{OP_POP, 0}, nil},
		{"PUSH 7 extra words", Instruction{OP_PUSH, 7}, nil},
		{"", Instruction{}, ErrOpcodeMissing},
		{"   ", Instruction{}, ErrOpcodeMissing},
		{"FOO 1", Instruction{}, ErrUnknownInstruction},
		{"LODD x", Instruction{OP_LODD, 0}, ErrInvalidOperand},
		{"LODD 0x10", Instruction{OP_LODD, 0}, ErrInvalidOperand},
	}

	for _, entry := range table {
		inst, err := ParseInstruction(entry.line)
		if entry.err != nil {
			assert.True(errors.Is(err, entry.err), entry.line)
			continue
		}
		assert.NoError(err, entry.line)
		assert.Equal(entry.inst, inst, entry.line)
	}

	var mnemonic ErrParseMnemonic
	_, err := ParseInstruction("BOGUS")
	assert.True(errors.As(err, &mnemonic))
	assert.Equal(ErrParseMnemonic("BOGUS"), mnemonic)
}

func FuzzCodec(f *testing.F) {
	f.Add(uint16(0x0000))
	f.Add(uint16(0x7fff))
	f.Add(uint16(0xf400))
	f.Add(uint16(0xf6ab))
	f.Add(uint16(0xffff))

	f.Fuzz(func(t *testing.T, word uint16) {
		assert := assert.New(t)

		inst := Decode(word)
		assert.True(inst.Opcode.Valid())

		// Decode is a left inverse of Encode on decoded words.
		again := Decode(inst.Encode())
		assert.Equal(inst, again)

		// The text form parses back to the same instruction.
		parsed, err := ParseInstruction(inst.String())
		assert.NoError(err)
		assert.Equal(inst, parsed)
	})
}
