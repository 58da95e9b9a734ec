package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/program"
)

var asmCmd = &cobra.Command{
	Use:   "asm [flags] source.asm",
	Short: "assemble a program, printing its tape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defines, err := cmd.Flags().GetStringArray("define")
		if err != nil {
			return
		}

		predefine := map[string]string{}
		for _, define := range defines {
			name, value, ok := strings.Cut(define, "=")
			if !ok {
				return errors.Errorf("define %q: expected NAME=VALUE", define)
			}
			predefine[name] = value
		}

		inf, err := os.Open(args[0])
		if err != nil {
			return
		}
		defer inf.Close()

		prog, err := program.Assemble(inf, predefine)
		if err != nil {
			return errors.Wrap(err, args[0])
		}

		if getFlag(cmd, "listing") {
			fmt.Fprint(cmd.OutOrStdout(), prog.String())
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), csv(prog.Binary()))

		return
	},
}

var disCmd = &cobra.Command{
	Use:   "dis [flags] program",
	Short: "disassemble a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		tape, err := program.LoadTape(args[0])
		if err != nil {
			return
		}

		variant := cpu.VARIANT_EXTENDED
		if getFlag(cmd, "basic") {
			variant = cpu.VARIANT_BASIC
		}

		fmt.Fprint(cmd.OutOrStdout(), cpu.Disassemble(tape, variant).String())

		return
	},
}

func init() {
	asmCmd.Flags().StringArrayP("define", "D", nil, "predefine an equate, as NAME=VALUE")
	asmCmd.Flags().Bool("listing", false, "print the listing instead of the tape")
	disCmd.Flags().Bool("basic", false, "basic instruction set, without relative mode")
}
