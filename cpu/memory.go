package cpu

const (
	MEMORY_SIZE   = 4096            // Words of memory.
	STACK_BASE    = MEMORY_SIZE - 1 // Initial SP; the stack grows down from here.
	MAX_CYCLES    = 10000           // Default Run() cycle guard.
	HISTORY_LIMIT = 1024            // Default execution history capacity.
)

// inMemory returns true if addr is a valid memory address.
func inMemory(addr int) bool {
	return addr >= 0 && addr < MEMORY_SIZE
}

// GetMemory reads a memory word. Addresses outside of memory read as 0.
func (cpu *Cpu) GetMemory(addr int) int {
	if !inMemory(addr) {
		return 0
	}
	return cpu.Memory[addr]
}

// SetMemory writes a memory word. Addresses outside of memory are ignored.
func (cpu *Cpu) SetMemory(addr int, value int) (ok bool) {
	if !inMemory(addr) {
		return
	}
	cpu.Memory[addr] = value
	return true
}

// Dump returns length consecutive words from start.
func (cpu *Cpu) Dump(start, length int) (words []int) {
	if length <= 0 {
		return []int{}
	}

	words = make([]int, length)
	for n := range words {
		words[n] = cpu.GetMemory(start + n)
	}

	return
}

// load reads a word through MAR/MBR.
func (cpu *Cpu) load(addr int) (value int, err error) {
	if !inMemory(addr) {
		err = ErrAddress(addr)
		return
	}

	value = cpu.Memory[addr]
	cpu.MAR = addr
	cpu.MBR = value

	return
}

// store writes a word through MAR/MBR.
func (cpu *Cpu) store(addr int, value int) (err error) {
	if !inMemory(addr) {
		err = ErrAddress(addr)
		return
	}

	cpu.Memory[addr] = value
	cpu.MAR = addr
	cpu.MBR = value

	return
}
