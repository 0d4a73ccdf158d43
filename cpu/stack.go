package cpu

// The stack lives in memory between SP and STACK_BASE, growing downward.

// Push decrements SP, then writes the value at the new SP.
func (cpu *Cpu) Push(value int) (err error) {
	if cpu.SP <= 0 {
		err = ErrStackOverflow
		return
	}

	if !inMemory(cpu.SP - 1) {
		err = ErrAddress(cpu.SP - 1)
		return
	}

	cpu.SP--
	err = cpu.store(cpu.SP, value)

	return
}

// Pop reads the value at SP, then increments SP.
func (cpu *Cpu) Pop() (value int, err error) {
	if cpu.StackEmpty() {
		err = ErrStackUnderflow
		return
	}

	value, err = cpu.load(cpu.SP)
	if err != nil {
		return
	}
	cpu.SP++

	return
}

// Peek returns the value at the top of the stack.
func (cpu *Cpu) Peek() (value int, ok bool) {
	if cpu.StackEmpty() || !inMemory(cpu.SP) {
		return
	}

	return cpu.Memory[cpu.SP], true
}

// StackEmpty returns true when nothing has been pushed.
func (cpu *Cpu) StackEmpty() bool {
	return cpu.SP >= STACK_BASE
}

// StackDepth is the number of words on the stack.
func (cpu *Cpu) StackDepth() int {
	if cpu.StackEmpty() {
		return 0
	}
	return STACK_BASE - cpu.SP
}

// StackValues returns a copy of the stack, top of stack first.
func (cpu *Cpu) StackValues() (values []int) {
	values = []int{}
	for addr := max(cpu.SP, 0); addr < STACK_BASE; addr++ {
		values = append(values, cpu.Memory[addr])
	}

	return
}
