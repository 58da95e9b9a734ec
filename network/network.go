// Package network wires several Intcode machines into a static topology,
// typically a ring of amplifiers, and drives them to a converged value.
package network

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/emulator"
	"github.com/ezrec/intcode/io"
)

// Strategy selects how the machines of a network are scheduled.
type Strategy int

//go:generate go tool stringer -linecomment -type=Strategy
const (
	STRATEGY_COOPERATIVE = Strategy(0) // cooperative
	STRATEGY_CONCURRENT  = Strategy(1) // concurrent
)

// Network is one configured run of a program over a topology.
type Network struct {
	Verbose  bool         // If set, logs node progress.
	Program  []int64      // Program run by every node.
	Topology Topology     // Node wiring.
	Phases   []int64      // Phase setting, one per node.
	Options  []cpu.Option // Extra options for every node.
}

// NewNetwork checks the topology and phase setting, and returns a network
// ready to run.
func NewNetwork(program []int64, topology Topology, phases []int64) (net *Network, err error) {
	err = topology.Validate()
	if err != nil {
		return
	}

	if len(phases) != topology.Size {
		err = ErrPhases
		return
	}

	net = &Network{
		Program:  program,
		Topology: topology,
		Phases:   phases,
	}

	return
}

// options returns the machine options for a node.
func (net *Network) options(node int) []cpu.Option {
	logger := log.WithField("node", node)
	opts := []cpu.Option{cpu.WithVerbose(net.Verbose), cpu.WithLogger(logger)}
	return append(opts, net.Options...)
}

// prime loads the phase setting, and the seed, into a node input.
func (net *Network) prime(node int, push func(int64) error) (err error) {
	err = push(net.Phases[node])
	if err != nil {
		return
	}

	if node == net.Topology.SeedNode {
		err = push(net.Topology.Seed)
	}

	return
}

// Run drives the network with the selected strategy.
func (net *Network) Run(ctx context.Context, strategy Strategy) (value int64, err error) {
	switch strategy {
	case STRATEGY_COOPERATIVE:
		return net.RunCooperative()
	case STRATEGY_CONCURRENT:
		return net.RunConcurrent(ctx)
	default:
		err = ErrStrategy
		return
	}
}

// RunCooperative runs every node on the calling goroutine, in node order,
// forwarding fresh output along the edges after each node yields. It ends
// once the terminal node halts. A pass in which no node makes progress is
// a deadlock.
func (net *Network) RunCooperative() (value int64, err error) {
	topo := net.Topology

	nodes := make([]*cpu.Cpu, topo.Size)
	for n := range nodes {
		nodes[n] = cpu.NewCpu(net.Program, net.options(n)...)
		err = net.prime(n, nodes[n].PushInput)
		if err != nil {
			err = &ErrNode{Node: n, Err: err}
			return
		}
	}

	var found bool
	for pass := 0; ; pass++ {
		progress := false

		for n, node := range nodes {
			if node.State == cpu.STATE_HALTED {
				continue
			}

			ticks := node.Ticks
			_, err = node.Run()
			if err != nil {
				err = &ErrNode{Node: n, Err: err}
				return
			}
			if node.Ticks != ticks {
				progress = true
			}

			for _, out := range node.Outputs() {
				if n == topo.Terminal {
					value = out
					found = true
				}
				for _, edge := range topo.from(n) {
					err = nodes[edge.To].PushInput(out)
					if err != nil {
						err = &ErrNode{Node: edge.To, Err: err}
						return
					}
				}
			}
		}

		if net.Verbose {
			log.Debugf("network: pass %d: %v", pass, net.Phases)
		}

		if nodes[topo.Terminal].State == cpu.STATE_HALTED {
			break
		}

		if !progress {
			err = ErrDeadlock
			return
		}
	}

	if !found {
		err = ErrNoOutput
	}

	return
}

// RunConcurrent runs every node on its own goroutine, with one forwarding
// goroutine per edge. A node input is closed once every edge feeding it
// has drained, so a node left waiting on a finished producer ends cleanly.
// The first node fault cancels the rest of the network.
func (net *Network) RunConcurrent(ctx context.Context) (value int64, err error) {
	topo := net.Topology

	g, gctx := errgroup.WithContext(ctx)

	emus := make([]*emulator.Emulator, topo.Size)
	for n := range emus {
		emus[n] = emulator.NewEmulator(net.Program, net.options(n)...)
		err = net.prime(n, emus[n].InputPort().Push)
		if err != nil {
			return
		}
	}

	// Every reader subscribes before any node starts.
	collector, err := emus[topo.Terminal].OutputPort()
	if err != nil {
		return
	}

	subs := make([]*io.Queue, len(topo.Edges))
	for n, edge := range topo.Edges {
		subs[n], err = emus[edge.From].OutputPort()
		if err != nil {
			return
		}
	}

	// Inputs with no feeding edge have everything they will ever get.
	feeders := make([]sync.WaitGroup, topo.Size)
	for n, degree := range topo.inDegree() {
		if degree == 0 {
			emus[n].InputPort().Close()
			continue
		}
		feeders[n].Add(degree)
		go func() {
			feeders[n].Wait()
			emus[n].InputPort().Close()
		}()
	}

	for n, edge := range topo.Edges {
		sub := subs[n]
		input := emus[edge.To].InputPort()
		g.Go(func() error {
			defer feeders[edge.To].Done()
			return forward(gctx, sub, input)
		})
	}

	for n, emu := range emus {
		h := emu.Start(gctx)
		g.Go(func() (err error) {
			_, err = h.Wait()
			if err != nil {
				err = &ErrNode{Node: n, Err: err}
			}
			return
		})
	}

	err = g.Wait()
	if err != nil {
		return
	}

	values := collector.Drain()
	if len(values) == 0 {
		err = ErrNoOutput
		return
	}

	value = values[len(values)-1]

	if net.Verbose {
		log.Debugf("network: %v: %d", net.Phases, value)
	}

	return
}

// forward copies values from an output subscription into an input until
// the subscription is closed and drained.
func forward(ctx context.Context, from *io.Queue, to *io.Queue) (err error) {
	for {
		var value int64
		value, err = from.Wait(ctx)
		if errors.Is(err, io.ErrClosed) {
			err = nil
			return
		}
		if err != nil {
			return
		}

		err = to.Push(value)
		if errors.Is(err, io.ErrClosed) {
			// Downstream has stopped listening.
			err = nil
		}
		if err != nil {
			return
		}
	}
}
