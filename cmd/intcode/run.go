package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/emulator"
	"github.com/ezrec/intcode/program"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] program",
	Short: "run a program, printing its output",
	Long: `Run a program (comma separated tape, or .asm source) to completion,
printing each output value. Input values come from --input; when none are
given, from stdin, prompting for each value if stdin is a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		inputs, err := cmd.Flags().GetInt64Slice("input")
		if err != nil {
			return
		}

		prog, err := program.Load(args[0])
		if err != nil {
			return
		}

		variant := cpu.VARIANT_EXTENDED
		if getFlag(cmd, "basic") {
			variant = cpu.VARIANT_BASIC
		}

		emu := emulator.NewEmulator(prog.Binary(),
			cpu.WithVariant(variant),
			cpu.WithVerbose(getFlag(cmd, "verbose")))
		emu.Program = prog

		for _, value := range inputs {
			err = emu.InputPort().Push(value)
			if err != nil {
				return
			}
		}

		in, out := cmd.InOrStdin(), cmd.OutOrStdout()
		interactive := false
		if file, ok := in.(*os.File); ok && len(inputs) == 0 {
			interactive = term.IsTerminal(int(file.Fd()))
		}

		if interactive {
			err = interact(emu, bufio.NewScanner(in), out)
			if err != nil {
				return
			}
		} else {
			if len(inputs) == 0 {
				var piped []int64
				piped, err = readValues(in)
				if err != nil {
					return
				}
				for _, value := range piped {
					emu.InputPort().Push(value)
				}
			}
			emu.InputPort().Close()

			err = emu.Run(context.Background())
			if err != nil {
				return
			}
			for _, value := range emu.Outputs() {
				fmt.Fprintln(out, value)
			}
			if emu.Cpu.State == cpu.STATE_WAITING {
				return errors.Errorf("ip %d: input exhausted", emu.Cpu.Ip)
			}
		}

		log.Debugf("%v", emu.Cpu)

		if getFlag(cmd, "result") {
			fmt.Fprintln(out, emu.Cpu.Result())
		}

		return
	},
}

// readValues reads whitespace or comma separated values.
func readValues(r io.Reader) (values []int64, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return
	}

	fields := strings.FieldsFunc(string(data), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	for _, field := range fields {
		var value int64
		value, err = strconv.ParseInt(field, 0, 64)
		if err != nil {
			return nil, errors.Wrap(err, "input")
		}
		values = append(values, value)
	}

	return
}

// interact steps the machine, asking for a value each time it waits.
func interact(emu *emulator.Emulator, prompt *bufio.Scanner, out io.Writer) (err error) {
	printed := 0
	for {
		var done bool
		done, err = emu.Tick()
		if err != nil {
			return
		}

		outputs := emu.Outputs()
		for _, value := range outputs[printed:] {
			fmt.Fprintln(out, value)
		}
		printed = len(outputs)

		if done {
			return
		}

		if emu.Cpu.State != cpu.STATE_WAITING {
			continue
		}

		fmt.Fprint(out, "? ")
		if !prompt.Scan() {
			return errors.Errorf("ip %d: input exhausted", emu.Cpu.Ip)
		}

		var value int64
		value, err = strconv.ParseInt(strings.TrimSpace(prompt.Text()), 0, 64)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			err = nil
			continue
		}

		err = emu.InputPort().Push(value)
		if err != nil {
			return
		}
	}
}

func init() {
	runCmd.Flags().Int64SliceP("input", "i", nil, "input values")
	runCmd.Flags().Bool("result", false, "print tape cell 0 after halting")
	runCmd.Flags().Bool("basic", false, "basic instruction set, without relative mode")
}
