package cpu

import (
	"slices"
)

// State is an immutable snapshot of the processor.
type State struct {
	Registers            Registers    `json:"registers"`
	Memory               []int        `json:"memory"`
	Stack                []int        `json:"stack"` // Top of stack first.
	Running              bool         `json:"running"`
	CycleCount           int          `json:"cycleCount"`
	Alu                  Alu          `json:"alu"`
	LastInstruction      *Instruction `json:"lastInstruction,omitempty"`
	LastMicroInstruction string       `json:"lastMicroInstruction"`
	Bus                  Bus          `json:"bus"`
}

// State returns a snapshot of the processor, sharing no memory with it.
func (cpu *Cpu) State() (state State) {
	state = State{
		Registers:            cpu.Registers,
		Memory:               slices.Clone(cpu.Memory[:]),
		Stack:                cpu.StackValues(),
		Running:              cpu.Running,
		CycleCount:           cpu.Cycles,
		Alu:                  cpu.Alu,
		LastMicroInstruction: cpu.Micro,
		Bus:                  cpu.Bus,
	}

	if cpu.LastInstruction != nil {
		last := *cpu.LastInstruction
		state.LastInstruction = &last
	}

	return
}
