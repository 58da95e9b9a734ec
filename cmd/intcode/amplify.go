package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/intcode/network"
	"github.com/ezrec/intcode/program"
)

var amplifyCmd = &cobra.Command{
	Use:   "amplify [flags] program",
	Short: "find the best phase setting of a five amplifier network",
	Long: `Run the program as five amplifiers over every phase setting, and print
the largest signal with the phase setting producing it. Amplifiers form a
single pass chain over phases 0..4, or with --feedback a ring over 5..9.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		tape, err := program.LoadTape(args[0])
		if err != nil {
			return
		}

		topology, phases := network.Chain(5), network.PHASE_SINGLE_PASS
		if getFlag(cmd, "feedback") {
			topology, phases = network.Ring(5), network.PHASE_FEEDBACK
		}

		strategy := network.STRATEGY_COOPERATIVE
		if getFlag(cmd, "concurrent") {
			strategy = network.STRATEGY_CONCURRENT
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		best, setting, err := network.Search(ctx, tape, topology, phases, strategy)
		if err != nil {
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", best, csv(setting))

		return
	},
}

var networkCmd = &cobra.Command{
	Use:   "network [flags] topology.cue",
	Short: "run a network described by a CUE file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := program.LoadTopology(args[0])
		if err != nil {
			return
		}

		tape, err := program.LoadTape(cfg.Program)
		if err != nil {
			return
		}

		topology, err := cfg.Topology()
		if err != nil {
			return
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		phases, search := cfg.PhaseRange()
		strategy := cfg.RunStrategy()
		log.Debugf("network: %d nodes, %v, phases %v", topology.Size, strategy, phases)

		if search {
			var best int64
			var setting []int64
			best, setting, err = network.Search(ctx, tape, topology, phases, strategy)
			if err != nil {
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", best, csv(setting))
			return
		}

		net, err := network.NewNetwork(tape, topology, phases)
		if err != nil {
			return
		}
		net.Verbose = cfg.Verbose || getFlag(cmd, "verbose")

		value, err := net.Run(ctx, strategy)
		if err != nil {
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), value)

		return
	},
}

func init() {
	amplifyCmd.Flags().Bool("feedback", false, "amplifiers form a feedback ring")
	amplifyCmd.Flags().Bool("concurrent", false, "run each amplifier on its own goroutine")
}
