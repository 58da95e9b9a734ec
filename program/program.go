// Package program loads Intcode programs, from comma separated tapes or
// assembler sources, and the network topology files that run them.
package program

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var ErrEmpty = errors.New(f("empty program"))

// ParseCSV reads a tape of comma separated integers. Whitespace around
// fields, including line breaks, is ignored, as is a trailing comma.
func ParseCSV(r io.Reader) (tape []int64, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read failed")
	}

	fields := strings.Split(string(data), ",")
	if len(fields) > 0 && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}

	for n, field := range fields {
		var value int64
		value, err = strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", n)
		}
		tape = append(tape, value)
	}

	if len(tape) == 0 {
		return nil, ErrEmpty
	}

	return
}

// Assemble assembles a program source. The predefines are made available
// to the source as equates.
func Assemble(r io.Reader, predefine map[string]string) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{}
	for equ, value := range predefine {
		asm.Predefine(equ, value)
	}

	prog, err = asm.Parse(r)
	if err != nil {
		return nil, err
	}

	if len(prog.Opcodes) == 0 {
		return nil, ErrEmpty
	}

	return
}

// Load reads a program file. Files ending in .asm are assembled; anything
// else is a comma separated tape, listed by disassembly.
func Load(path string) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer inf.Close()

	if filepath.Ext(path) == ".asm" {
		prog, err = Assemble(inf, nil)
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		return
	}

	tape, err := ParseCSV(inf)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	prog = cpu.Disassemble(tape, cpu.VARIANT_EXTENDED)

	return
}

// LoadTape reads a program file and returns its tape.
func LoadTape(path string) (tape []int64, err error) {
	prog, err := Load(path)
	if err != nil {
		return
	}

	tape = prog.Binary()
	return
}
