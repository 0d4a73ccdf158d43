package cpu

import (
	"fmt"
	"log"
)

// ALU trace operations.
const (
	ALU_IDLE = "IDLE" // No ALU activity.
	ALU_MOV  = "MOV"  // Pass-through of A.
	ALU_ADD  = "ADD"  // A + B.
	ALU_SUB  = "SUB"  // A - B.
	ALU_SWP  = "SWP"  // Exchange.
	ALU_TST  = "TST"  // Condition test of A; result 1 if the jump is taken.
)

// Bus trace endpoints, in addition to MEM[addr].
const (
	BUS_AC    = "AC"
	BUS_PC    = "PC"
	BUS_SP    = "SP"
	BUS_IMM   = "IMM"
	BUS_STACK = "STACK"
)

// Registers is the MIC-1 register file.
type Registers struct {
	PC  int `json:"PC"`  // Program counter.
	AC  int `json:"AC"`  // Accumulator.
	SP  int `json:"SP"`  // Stack pointer.
	IR  int `json:"IR"`  // Instruction register.
	TIR int `json:"TIR"` // Temporary instruction register (decoded word).
	MAR int `json:"MAR"` // Memory address register.
	MBR int `json:"MBR"` // Memory buffer register.
}

// Alu is the trace of the most recent ALU operation.
type Alu struct {
	Operation string `json:"operation"`
	A         int    `json:"A"`
	B         int    `json:"B"`
	Result    int    `json:"result"`
}

// Cpu is the simulation context for a MIC-1 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Registers                  // Register file.
	Memory    [MEMORY_SIZE]int // Main memory, including the stack.
	Running   bool             // Set while Run() is executing.
	Cycles    int              // Instructions executed since reset.

	Alu             Alu          // Last ALU operation.
	Bus             Bus          // Last bus transfer.
	LastInstruction *Instruction // Last executed instruction, if any.
	Micro           string       // Last executed instruction, as text.
	History         History      // Executed instruction history.
}

// NewCpu creates a new, reset, CPU.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.History.Limit = HISTORY_LIMIT
	cpu.Reset()

	return
}

// Reset the CPU state.
// - Clears the registers and memory.
// - Sets SP to the stack base.
// - Clears the ALU and bus traces, and the history.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Registers = Registers{SP: STACK_BASE}
	clear(cpu.Memory[:])
	cpu.Running = false
	cpu.Cycles = 0

	cpu.Alu = Alu{Operation: ALU_IDLE}
	cpu.Bus = Bus{}
	cpu.LastInstruction = nil
	cpu.Micro = ""
	cpu.History.Reset()
}

// String returns the register file as text.
func (cpu *Cpu) String() (text string) {
	regs := []struct {
		name  string
		value int
	}{
		{"pc", cpu.PC},
		{"ac", cpu.AC},
		{"sp", cpu.SP},
		{"ir", cpu.IR},
		{"tir", cpu.TIR},
		{"mar", cpu.MAR},
		{"mbr", cpu.MBR},
	}
	for _, reg := range regs {
		text += fmt.Sprintf("% 4s: %6d (%04X)\n", reg.name, reg.value, uint16(reg.value))
	}

	return
}

// LoadProgram assembles the lines into consecutive memory words starting at
// base, followed by a zero halt word. Blank lines are skipped.
// On error, memory is not modified.
func (cpu *Cpu) LoadProgram(lines []string, base int) (prog *Program, err error) {
	prog, err = Assemble(lines, base)
	if err != nil {
		return
	}

	for ip, code := range prog.Codes() {
		cpu.Memory[ip] = int(code)
	}
	cpu.Memory[prog.End()] = 0

	if cpu.Verbose {
		log.Printf("cpu: loaded %d words at %d", len(prog.Lines), base)
	}

	return
}

// Step executes a single fetch-decode-execute cycle.
//
// A zero word at PC is the halt sentinel, and returns ErrEndOfProgram.
func (cpu *Cpu) Step() (err error) {
	if !inMemory(cpu.PC) {
		err = ErrAddress(cpu.PC)
		return
	}

	cpu.IR = cpu.Memory[cpu.PC]
	if cpu.IR == 0 {
		err = ErrEndOfProgram
		return
	}

	inst := Decode(uint16(cpu.IR & WORD_MASK))
	cpu.TIR = cpu.IR & WORD_MASK

	err = cpu.Execute(inst)
	if err != nil {
		return
	}

	cpu.PC++
	cpu.Cycles++

	return
}

// Run steps until an error, or maxCycles instructions have executed.
// If maxCycles is not positive, MAX_CYCLES is used.
func (cpu *Cpu) Run(maxCycles int) (err error) {
	if maxCycles <= 0 {
		maxCycles = MAX_CYCLES
	}

	cpu.Running = true
	defer func() { cpu.Running = false }()

	for range maxCycles {
		err = cpu.Step()
		if err != nil {
			return
		}
	}

	err = ErrMaxCyclesExceeded

	return
}

// memLabel is the bus label of a memory word.
func memLabel(addr int) string {
	return fmt.Sprintf("MEM[%d]", addr)
}

// Execute executes a single decoded instruction.
// The PC is not advanced; jumps store the target less one.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil {
			err = &ErrOpcode{Instruction: inst, Err: err}
		}
	}()

	if cpu.Verbose {
		log.Printf("cpu: %03x: %v", cpu.PC, inst)
	}

	operand := inst.Operand
	alu := Alu{Operation: ALU_IDLE}
	var bus Bus

	// jump sets the PC so that the post-increment lands on addr.
	jump := func(taken bool) {
		alu = Alu{Operation: ALU_TST, A: cpu.AC}
		if taken {
			alu.Result = 1
			cpu.PC = operand - 1
			bus = Bus{From: BUS_IMM, To: BUS_PC}
		}
	}

	switch inst.Opcode {
	case OP_LODD, OP_LODL:
		addr := operand
		if inst.Opcode == OP_LODL {
			addr += cpu.SP
		}
		var value int
		value, err = cpu.load(addr)
		if err != nil {
			return
		}
		cpu.AC = value
		alu = Alu{Operation: ALU_MOV, A: value, Result: value}
		bus = Bus{From: memLabel(addr), To: BUS_AC}
	case OP_STOD, OP_STOL:
		addr := operand
		if inst.Opcode == OP_STOL {
			addr += cpu.SP
		}
		err = cpu.store(addr, cpu.AC)
		if err != nil {
			return
		}
		alu = Alu{Operation: ALU_MOV, A: cpu.AC, Result: cpu.AC}
		bus = Bus{From: BUS_AC, To: memLabel(addr)}
	case OP_ADDD, OP_SUBD, OP_ADDL, OP_SUBL:
		addr := operand
		if inst.Opcode == OP_ADDL || inst.Opcode == OP_SUBL {
			addr += cpu.SP
		}
		var b int
		b, err = cpu.load(addr)
		if err != nil {
			return
		}
		a := cpu.AC
		if inst.Opcode == OP_ADDD || inst.Opcode == OP_ADDL {
			alu = Alu{Operation: ALU_ADD, A: a, B: b, Result: a + b}
		} else {
			alu = Alu{Operation: ALU_SUB, A: a, B: b, Result: a - b}
		}
		cpu.AC = alu.Result
		bus = Bus{From: memLabel(addr), To: BUS_AC}
	case OP_LOCO:
		cpu.AC = operand
		alu = Alu{Operation: ALU_MOV, A: operand, Result: operand}
		bus = Bus{From: BUS_IMM, To: BUS_AC}
	case OP_JUMP:
		cpu.PC = operand - 1
		bus = Bus{From: BUS_IMM, To: BUS_PC}
	case OP_JPOS:
		jump(cpu.AC > 0)
	case OP_JZER:
		jump(cpu.AC == 0)
	case OP_JNEG:
		jump(cpu.AC < 0)
	case OP_JNZE:
		jump(cpu.AC != 0)
	case OP_CALL:
		// Return to the instruction after the CALL.
		err = cpu.Push(cpu.PC + 1)
		if err != nil {
			return
		}
		cpu.PC = operand - 1
		bus = Bus{From: BUS_PC, To: BUS_STACK}
	case OP_RETN:
		var ret int
		ret, err = cpu.Pop()
		if err != nil {
			return
		}
		cpu.PC = ret - 1
		bus = Bus{From: BUS_STACK, To: BUS_PC}
	case OP_PUSH:
		err = cpu.Push(operand)
		if err != nil {
			return
		}
		bus = Bus{From: BUS_IMM, To: BUS_STACK}
	case OP_POP:
		var value int
		value, err = cpu.Pop()
		if err != nil {
			return
		}
		cpu.AC = value
		alu = Alu{Operation: ALU_MOV, A: value, Result: value}
		bus = Bus{From: BUS_STACK, To: BUS_AC}
	case OP_PSHI:
		var value int
		value, err = cpu.load(operand)
		if err != nil {
			return
		}
		err = cpu.Push(value)
		if err != nil {
			return
		}
		bus = Bus{From: memLabel(operand), To: BUS_STACK}
	case OP_POPI:
		if !inMemory(operand) {
			err = ErrAddress(operand)
			return
		}
		var value int
		value, err = cpu.Pop()
		if err != nil {
			return
		}
		err = cpu.store(operand, value)
		if err != nil {
			return
		}
		bus = Bus{From: BUS_STACK, To: memLabel(operand)}
	case OP_SWAP:
		var value int
		value, err = cpu.load(operand)
		if err != nil {
			return
		}
		prior := cpu.AC
		err = cpu.store(operand, prior)
		if err != nil {
			return
		}
		cpu.AC = value
		alu = Alu{Operation: ALU_SWP, A: prior, Result: value}
		bus = Bus{From: memLabel(operand), To: BUS_AC}
	case OP_INSP:
		alu = Alu{Operation: ALU_SUB, A: cpu.SP, B: operand, Result: cpu.SP - operand}
		cpu.SP = alu.Result
		bus = Bus{From: BUS_IMM, To: BUS_SP}
	case OP_DESP:
		alu = Alu{Operation: ALU_ADD, A: cpu.SP, B: operand, Result: cpu.SP + operand}
		cpu.SP = alu.Result
		bus = Bus{From: BUS_IMM, To: BUS_SP}
	default:
		err = ErrOpcodeInvalid
		return
	}

	last := inst
	cpu.LastInstruction = &last
	cpu.Alu = alu
	cpu.Bus = bus
	cpu.Micro = inst.String()
	cpu.History.Append(HistoryEntry{Cycle: cpu.Cycles, Micro: cpu.Micro, Bus: bus})

	return
}
