package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_Push(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.True(cpu.StackEmpty())
	assert.Equal(0, cpu.StackDepth())

	assert.NoError(cpu.Push(0x1234))
	assert.False(cpu.StackEmpty())
	assert.Equal(1, cpu.StackDepth())
	assert.Equal(STACK_BASE-1, cpu.SP)
	assert.Equal(0x1234, cpu.GetMemory(STACK_BASE-1))
}

func TestStack_Pop(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.NoError(cpu.Push(0x1234))
	assert.NoError(cpu.Push(0xabcd))

	val, ok := cpu.Peek()
	assert.True(ok)
	assert.Equal(0xabcd, val)
	assert.Equal([]int{0xabcd, 0x1234}, cpu.StackValues())

	val, err := cpu.Pop()
	assert.NoError(err)
	assert.Equal(0xabcd, val)
	assert.Equal(1, cpu.StackDepth())

	val, err = cpu.Pop()
	assert.NoError(err)
	assert.Equal(0x1234, val)
	assert.True(cpu.StackEmpty())
	assert.Equal(STACK_BASE, cpu.SP)
}

func TestStack_Pop_Empty(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	_, err := cpu.Pop()
	assert.True(errors.Is(err, ErrStackUnderflow))
	assert.Equal(STACK_BASE, cpu.SP)

	_, ok := cpu.Peek()
	assert.False(ok)
	assert.Equal([]int{}, cpu.StackValues())

	// DESP past the base is still empty.
	cpu.SP = STACK_BASE + 3
	_, err = cpu.Pop()
	assert.True(errors.Is(err, ErrStackUnderflow))
	assert.Equal(0, cpu.StackDepth())
}

func TestStack_Push_Full(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.SP = 1

	assert.NoError(cpu.Push(5))
	assert.Equal(0, cpu.SP)
	assert.Equal(5, cpu.GetMemory(0))

	err := cpu.Push(6)
	assert.True(errors.Is(err, ErrStackOverflow))
	assert.Equal(0, cpu.SP)
	assert.Equal(STACK_BASE, cpu.StackDepth())

	cpu.SP = -4
	assert.True(errors.Is(cpu.Push(7), ErrStackOverflow))
	assert.Equal(STACK_BASE, len(cpu.StackValues()))
}
