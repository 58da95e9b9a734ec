package cpu

import (
	"errors"
	"fmt"
	"strings"
)

// Op is an operation, the two low decimal digits of an opcode word.
type Op int

//go:generate go tool stringer -linecomment -type=Op,Mode,State,Variant
const (
	OP_ADD  = Op(1)  // add
	OP_MUL  = Op(2)  // mul
	OP_IN   = Op(3)  // in
	OP_OUT  = Op(4)  // out
	OP_JT   = Op(5)  // jt
	OP_JF   = Op(6)  // jf
	OP_LT   = Op(7)  // lt
	OP_EQ   = Op(8)  // eq
	OP_ARB  = Op(9)  // arb
	OP_HALT = Op(99) // hlt
)

// Mode is a parameter addressing mode.
type Mode int

const (
	MODE_POSITION  = Mode(0) // position
	MODE_IMMEDIATE = Mode(1) // immediate
	MODE_RELATIVE  = Mode(2) // relative
)

// Variant selects the instruction set revision.
type Variant int

const (
	VARIANT_EXTENDED = Variant(0) // extended
	VARIANT_BASIC    = Variant(1) // basic
)

// opArity is the parameter count of each operation.
var opArity = map[Op]int{
	OP_ADD:  3,
	OP_MUL:  3,
	OP_IN:   1,
	OP_OUT:  1,
	OP_JT:   2,
	OP_JF:   2,
	OP_LT:   3,
	OP_EQ:   3,
	OP_ARB:  1,
	OP_HALT: 0,
}

// Arity returns the number of parameters of the operation, and false if
// the operation is unknown.
func (op Op) Arity() (n int, ok bool) {
	n, ok = opArity[op]
	return
}

// Supported reports whether the variant implements the operation.
func (v Variant) Supported(op Op) bool {
	_, ok := opArity[op]
	if v == VARIANT_BASIC && op == OP_ARB {
		return false
	}
	return ok
}

// Param is a single instruction parameter, as stored on the tape.
type Param struct {
	Mode  Mode
	Value int64
}

// String returns the assembly language form of the parameter.
func (p Param) String() string {
	switch p.Mode {
	case MODE_POSITION:
		return fmt.Sprintf("[%d]", p.Value)
	case MODE_RELATIVE:
		return fmt.Sprintf("[rb%+d]", p.Value)
	default:
		return fmt.Sprintf("%d", p.Value)
	}
}

// Instruction is a decoded instruction.
type Instruction struct {
	Op     Op
	Params []Param
}

// Width is the number of tape cells the instruction occupies.
func (ins Instruction) Width() int64 {
	return int64(1 + len(ins.Params))
}

// Word encodes the opcode word of the instruction.
func (ins Instruction) Word() (word int64) {
	word = int64(ins.Op)
	scale := int64(100)
	for _, p := range ins.Params {
		word += int64(p.Mode) * scale
		scale *= 10
	}
	return
}

// Codes encodes the instruction as tape cells.
func (ins Instruction) Codes() (codes []int64) {
	codes = append(codes, ins.Word())
	for _, p := range ins.Params {
		codes = append(codes, p.Value)
	}
	return
}

// String returns the assembly language form of the instruction.
func (ins Instruction) String() string {
	words := []string{ins.Op.String()}
	for _, p := range ins.Params {
		words = append(words, p.String())
	}
	return strings.Join(words, " ")
}

// DecodeModes returns the addressing mode of each of count parameters of an
// opcode word. The mode of parameter n is the decimal digit n+2 places from
// the right; missing digits are position mode.
func DecodeModes(word int64, count int, variant Variant) (modes []Mode, err error) {
	digits := word / 100
	modes = make([]Mode, count)
	for n := range count {
		mode := Mode(digits % 10)
		digits /= 10
		switch mode {
		case MODE_POSITION, MODE_IMMEDIATE:
		case MODE_RELATIVE:
			if variant == VARIANT_BASIC {
				err = ErrMode
			}
		default:
			err = ErrMode
		}
		if err != nil {
			err = errors.Join(argErrs[n], err)
			modes = nil
			return
		}
		modes[n] = mode
	}

	return
}

// Decode decodes the instruction at ip.
func Decode(tape *Tape, ip int64, variant Variant) (ins Instruction, err error) {
	word, err := tape.Read(ip)
	if err != nil {
		return
	}

	op := Op(word % 100)
	if !variant.Supported(op) {
		err = ErrOpcode(word)
		return
	}

	arity, _ := op.Arity()
	modes, err := DecodeModes(word, arity, variant)
	if err != nil {
		return
	}

	ins.Op = op
	ins.Params = make([]Param, arity)
	for n, mode := range modes {
		var value int64
		value, err = tape.Read(ip + 1 + int64(n))
		if err != nil {
			err = errors.Join(argErrs[n], err)
			return
		}
		ins.Params[n] = Param{Mode: mode, Value: value}
	}

	return
}
