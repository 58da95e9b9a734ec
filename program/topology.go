package program

import (
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pkg/errors"

	"github.com/ezrec/intcode/network"
)

// topologySchema constrains topology files.
const topologySchema = `close({
	program:   string
	nodes:     int & >0
	feedback:  bool | *false
	strategy:  *"concurrent" | "cooperative"
	seed:      int | *0
	seed_node: int | *0
	terminal?: int
	edges?: [...[int, int]]
	phases?: [...int]
	search?: [...int]
	verbose:   bool | *false
})`

// TopologyConfig is a network described by a CUE file:
//
//	program:  "amplifier.csv"
//	nodes:    5
//	feedback: true
//	search:   [5, 6, 7, 8, 9]
//
// Without explicit edges, nodes form a ring when feedback is set, and a
// chain otherwise. A fixed phase setting runs once; a search range runs
// every ordering of it.
type TopologyConfig struct {
	Program  string  `json:"program"`
	Nodes    int     `json:"nodes"`
	Feedback bool    `json:"feedback"`
	Strategy string  `json:"strategy"`
	Seed     int64   `json:"seed"`
	SeedNode int     `json:"seed_node"`
	Terminal *int    `json:"terminal,omitempty"`
	Edges    [][]int `json:"edges,omitempty"`
	Phases   []int64 `json:"phases,omitempty"`
	Search   []int64 `json:"search,omitempty"`
	Verbose  bool    `json:"verbose"`
}

// ParseTopology decodes and validates a topology description. filename is
// used in error messages.
func ParseTopology(content []byte, filename string) (cfg *TopologyConfig, err error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(topologySchema)
	if err = schema.Err(); err != nil {
		return nil, errors.Wrap(err, "schema")
	}

	value := ctx.CompileBytes(content, cue.Filename(filename))
	if err = value.Err(); err != nil {
		return nil, errors.Wrap(err, filename)
	}

	value = schema.Unify(value)
	if err = value.Validate(cue.Concrete(true)); err != nil {
		return nil, errors.Wrap(err, filename)
	}

	cfg = &TopologyConfig{}
	if err = value.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, filename)
	}

	if len(cfg.Phases) != 0 && len(cfg.Search) != 0 {
		return nil, errors.New(f("%v: phases and search are exclusive", filename))
	}

	_, err = cfg.Topology()
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}

	return
}

// LoadTopology reads a topology file. A relative program path is taken
// from the directory of the topology file.
func LoadTopology(path string) (cfg *TopologyConfig, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}

	cfg, err = ParseTopology(content, path)
	if err != nil {
		return
	}

	if !filepath.IsAbs(cfg.Program) {
		cfg.Program = filepath.Join(filepath.Dir(path), cfg.Program)
	}

	return
}

// Topology returns the node wiring.
func (cfg *TopologyConfig) Topology() (topo network.Topology, err error) {
	switch {
	case len(cfg.Edges) != 0:
		topo = network.Topology{Size: cfg.Nodes, Terminal: cfg.Nodes - 1}
		for _, edge := range cfg.Edges {
			if len(edge) != 2 {
				err = network.ErrTopology
				return
			}
			topo.Edges = append(topo.Edges, network.Edge{From: edge[0], To: edge[1]})
		}
	case cfg.Feedback:
		topo = network.Ring(cfg.Nodes)
	default:
		topo = network.Chain(cfg.Nodes)
	}

	if cfg.Terminal != nil {
		topo.Terminal = *cfg.Terminal
	}
	topo.Seed = cfg.Seed
	topo.SeedNode = cfg.SeedNode

	err = topo.Validate()

	return
}

// PhaseRange returns the phase values, and whether every ordering of them
// is to be searched.
func (cfg *TopologyConfig) PhaseRange() (phases []int64, search bool) {
	switch {
	case len(cfg.Phases) != 0:
		return cfg.Phases, false
	case len(cfg.Search) != 0:
		return cfg.Search, true
	case cfg.Feedback:
		return network.PHASE_FEEDBACK, true
	default:
		return network.PHASE_SINGLE_PASS, true
	}
}

// RunStrategy returns the scheduling strategy.
func (cfg *TopologyConfig) RunStrategy() network.Strategy {
	if cfg.Strategy == network.STRATEGY_COOPERATIVE.String() {
		return network.STRATEGY_COOPERATIVE
	}
	return network.STRATEGY_CONCURRENT
}
