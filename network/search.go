package network

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/ezrec/intcode/internal"
)

// Phase ranges of the two amplifier configurations.
var (
	PHASE_SINGLE_PASS = internal.Range[int64](0, 4) // single pass chain
	PHASE_FEEDBACK    = internal.Range[int64](5, 9) // feedback ring
)

// Search runs the network once for every ordering of phaseRange, each run
// on fresh machines, and returns the largest converged value and the
// phase setting that produced it.
func Search(ctx context.Context, program []int64, topology Topology, phaseRange []int64, strategy Strategy) (best int64, phases []int64, err error) {
	if len(phaseRange) != topology.Size {
		err = ErrPhases
		return
	}

	for setting := range internal.Permutations(phaseRange) {
		var net *Network
		net, err = NewNetwork(program, topology, setting)
		if err != nil {
			return
		}

		var value int64
		value, err = net.Run(ctx, strategy)
		if err != nil {
			return
		}

		log.Debugf("network: %v %v: %d", strategy, setting, value)

		if phases == nil || value > best {
			best = value
			phases = setting
		}
	}

	return
}
