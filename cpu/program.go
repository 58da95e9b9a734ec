package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Link is an operand whose value is the address of a label, resolved
// once every label is known.
type Link struct {
	Index int    // Index into Codes.
	Label string // Label name.
}

// Opcode represents a line of assembled code with its source location and
// generated tape cells.
type Opcode struct {
	LineNo int
	Ip     int
	Words  []string
	Codes  []int64
	Links  []Link
}

// Program is an assembled program listing.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the listing line covering the tape address ip.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= op.Ip && ip < op.Ip+len(op.Codes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  ip - op.Ip,
			}
			break
		}
	}

	return
}

// Binary returns the program as a tape.
func (prog *Program) Binary() (tape []int64) {
	for ip, code := range prog.Codes() {
		for len(tape) < ip {
			tape = append(tape, 0)
		}
		tape = append(tape, code)
	}

	return
}

// Codes iterates over every tape cell of the program, with its address.
func (prog *Program) Codes() iter.Seq2[int, int64] {
	return func(yield func(ip int, code int64) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Ip+n, code) {
					return
				}
			}
		}
	}
}

// String returns the listing as assembly text, one line per opcode.
func (prog *Program) String() string {
	var text strings.Builder
	for _, op := range prog.Opcodes {
		fmt.Fprintf(&text, "%6d: %v\n", op.Ip, strings.Join(op.Words, " "))
	}

	return text.String()
}

// Disassemble decodes a tape into a listing. Cells that do not decode to
// an instruction that assembles back to the same cells are listed as
// .data, so the listing always reassembles to the original tape.
func Disassemble(tape []int64, variant Variant) (prog *Program) {
	prog = &Program{}
	t := &Tape{Data: tape, Strict: true}

	for ip := 0; ip < len(tape); {
		op := Opcode{Ip: ip, LineNo: len(prog.Opcodes) + 1}

		ins, err := Decode(t, int64(ip), variant)
		if err == nil && ins.Word() == tape[ip] && ins.Writable() {
			op.Words = strings.Split(ins.String(), " ")
			op.Codes = ins.Codes()
		} else {
			op.Words = []string{".data", fmt.Sprintf("%d", tape[ip])}
			op.Codes = []int64{tape[ip]}
		}

		prog.Opcodes = append(prog.Opcodes, op)
		ip += len(op.Codes)
	}

	return
}

// Writable reports whether every write target of the instruction is a
// memory reference rather than an immediate.
func (ins Instruction) Writable() bool {
	var target int
	switch ins.Op {
	case OP_ADD, OP_MUL, OP_LT, OP_EQ:
		target = 2
	case OP_IN:
		target = 0
	default:
		return true
	}

	return ins.Params[target].Mode != MODE_IMMEDIATE
}
