// Package cpu implements the processor and assembler for the MIC-1 system.
//
// The CPU consists of a program counter (PC), an accumulator (AC), a stack
// pointer (SP), the instruction registers (IR, TIR), the memory interface
// registers (MAR, MBR) and an ALU. Memory is 4096 words, and the stack grows
// down from STACK_BASE at the top of memory.
//
// Instructions are 16-bit words. The top nibble selects one of 15 basic
// opcodes with a 12-bit operand, or 0xF selects the extended family, where
// the next nibble selects one of 8 opcodes with an 8-bit operand. A zero
// word halts the program.
//
// The assembler accepts one instruction per line, with .equ and .data
// directives and compile-time $(expr) evaluation.
package cpu
