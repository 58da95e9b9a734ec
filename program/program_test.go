package program

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/network"
)

func TestParseCSV(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text string
		tape []int64
	}){
		{"1,0,0,0,99", []int64{1, 0, 0, 0, 99}},
		{"1,0,0,0,99\n", []int64{1, 0, 0, 0, 99}},
		{" 104, -3,\n 99,\n", []int64{104, -3, 99}},
		{"104,1125899906842624,99", []int64{104, 1125899906842624, 99}},
	}

	for _, entry := range table {
		tape, err := ParseCSV(strings.NewReader(entry.text))
		assert.NoError(err, entry.text)
		assert.Equal(entry.tape, tape, entry.text)
	}
}

func TestParseCSV_Errors(t *testing.T) {
	assert := assert.New(t)

	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(err, ErrEmpty)
	assert.EqualError(err, "empty program")

	_, err = ParseCSV(strings.NewReader("\n"))
	assert.ErrorIs(err, ErrEmpty)

	_, err = ParseCSV(strings.NewReader("1,2,x,4"))
	assert.ErrorIs(err, strconv.ErrSyntax)
	assert.Contains(err.Error(), "field 2")

	_, err = ParseCSV(strings.NewReader("1,,3"))
	assert.Contains(err.Error(), "field 1")

	_, err = ParseCSV(strings.NewReader("99999999999999999999"))
	assert.ErrorIs(err, strconv.ErrRange)
}

func writeFile(t *testing.T, name string, text string) (path string) {
	path = filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(text), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	return
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "echo.csv", "3,0,4,0,99\n")
	prog, err := Load(path)
	assert.NoError(err)
	assert.Equal([]int64{3, 0, 4, 0, 99}, prog.Binary())
	assert.Equal([]string{"in", "[0]"}, prog.Opcodes[0].Words)

	tape, err := LoadTape(path)
	assert.NoError(err)
	assert.Equal([]int64{3, 0, 4, 0, 99}, tape)

	path = writeFile(t, "echo.asm", "in [0]\nout [0]\nhlt\n")
	prog, err = Load(path)
	assert.NoError(err)
	assert.Equal([]int64{3, 0, 4, 0, 99}, prog.Binary())
	assert.Equal(2, prog.Opcodes[1].LineNo)

	path = writeFile(t, "bad.asm", "in 0\n")
	_, err = Load(path)
	assert.ErrorIs(err, cpu.ErrTargetInvalid)
	assert.Contains(err.Error(), path)

	path = writeFile(t, "empty.asm", "; nothing\n")
	_, err = Load(path)
	assert.ErrorIs(err, ErrEmpty)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestAssemble(t *testing.T) {
	assert := assert.New(t)

	prog, err := Assemble(strings.NewReader("out PHASE\nhlt\n"), map[string]string{"PHASE": "7"})
	assert.NoError(err)
	assert.Equal([]int64{104, 7, 99}, prog.Binary())
}

func TestParseTopology(t *testing.T) {
	assert := assert.New(t)

	cfg, err := ParseTopology([]byte(`
program:  "amp.csv"
nodes:    5
feedback: true
`), "ring.cue")
	assert.NoError(err)
	assert.Equal("amp.csv", cfg.Program)
	assert.Equal(5, cfg.Nodes)
	assert.Equal("concurrent", cfg.Strategy)
	assert.Equal(network.STRATEGY_CONCURRENT, cfg.RunStrategy())
	assert.Nil(cfg.Terminal)

	topo, err := cfg.Topology()
	assert.NoError(err)
	assert.Equal(network.Ring(5), topo)

	phases, search := cfg.PhaseRange()
	assert.True(search)
	assert.Equal(network.PHASE_FEEDBACK, phases)

	cfg, err = ParseTopology([]byte(`
program:  "amp.csv"
nodes:    3
strategy: "cooperative"
phases:   [2, 0, 1]
seed:     4
`), "chain.cue")
	assert.NoError(err)
	assert.Equal(network.STRATEGY_COOPERATIVE, cfg.RunStrategy())

	topo, err = cfg.Topology()
	assert.NoError(err)
	assert.Equal(network.Chain(3).Edges, topo.Edges)
	assert.Equal(int64(4), topo.Seed)

	phases, search = cfg.PhaseRange()
	assert.False(search)
	assert.Equal([]int64{2, 0, 1}, phases)

	cfg, err = ParseTopology([]byte(`
program:  "amp.csv"
nodes:    3
edges:    [[0, 1], [0, 2]]
terminal: 1
search:   [1, 2, 3]
`), "fan.cue")
	assert.NoError(err)

	topo, err = cfg.Topology()
	assert.NoError(err)
	assert.Equal([]network.Edge{{From: 0, To: 1}, {From: 0, To: 2}}, topo.Edges)
	assert.Equal(1, topo.Terminal)

	phases, search = cfg.PhaseRange()
	assert.True(search)
	assert.Equal([]int64{1, 2, 3}, phases)
}

func TestParseTopology_Errors(t *testing.T) {
	assert := assert.New(t)

	table := []string{
		`nodes: 5`,
		`program: "a.csv", nodes: 0`,
		`program: "a.csv", nodes: 2, strategy: "eventually"`,
		`program: "a.csv", nodes: 2, colour: "red"`,
		`program: "a.csv", nodes: 2, edges: [[0, 7]]`,
		`program: "a.csv", nodes: 2, terminal: 2`,
		`program: "a.csv", nodes: 2, phases: [0, 1], search: [0, 1]`,
		`program: "a.csv" nodes`,
	}

	for _, text := range table {
		_, err := ParseTopology([]byte(text), "bad.cue")
		assert.Error(err, text)
	}
}

func TestLoadTopology(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "net.cue", `program: "amp.csv"`+"\nnodes: 5\n")
	cfg, err := LoadTopology(path)
	assert.NoError(err)
	assert.Equal(filepath.Join(filepath.Dir(path), "amp.csv"), cfg.Program)

	path = writeFile(t, "abs.cue", `program: "/srv/amp.csv"`+"\nnodes: 5\n")
	cfg, err = LoadTopology(path)
	assert.NoError(err)
	assert.Equal("/srv/amp.csv", cfg.Program)

	_, err = LoadTopology(filepath.Join(t.TempDir(), "missing.cue"))
	assert.ErrorIs(err, os.ErrNotExist)
}
