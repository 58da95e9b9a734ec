// Package cpu implements the Intcode machine and its assembler.
//
// The machine executes a tape of signed integers. Each instruction is an
// opcode word, whose two low decimal digits select the operation and whose
// higher digits select the addressing mode of each parameter, followed by
// its parameters. The machine consists of the tape, an instruction pointer
// (IP), and, in the extended variant, a relative base register used by
// relative mode addressing.
//
// Input and output go through ports (see package io). A read from an empty
// input suspends the machine in STATE_WAITING with the IP unchanged, so it
// can be resumed by supplying input and calling Run again. RunBlocking
// instead blocks the calling goroutine until input arrives.
//
// The assembler provides a small assembly language for the instruction
// set, supporting labels, equates, macros, and compile-time expression
// evaluation.
package cpu
