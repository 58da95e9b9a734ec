// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/intcode/translate"
)

var rootCmd = &cobra.Command{
	Use:   "intcode",
	Short: "An Intcode machine, assembler and amplifier network.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		if lang, _ := cmd.Flags().GetString("lang"); lang != "" {
			translate.Use(lang)
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		log.Fatal(err)
	}

	return r
}

// csv formats a tape or output stream.
func csv(values []int64) string {
	text := make([]string, len(values))
	for n, value := range values {
		text[n] = strconv.FormatInt(value, 10)
	}
	return strings.Join(text, ",")
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().String("lang", "", "message language, instead of the system locale")

	rootCmd.AddCommand(runCmd, amplifyCmd, networkCmd, asmCmd, disCmd)
}

func main() {
	log.SetOutput(os.Stderr)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
