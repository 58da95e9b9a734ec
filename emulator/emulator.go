// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs Intcode machines concurrently, each on its own
// goroutine, with blocking input and a broadcast output stream.
package emulator

import (
	"context"
	"errors"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/io"
)

// Emulator state. CPU + input queue + output broadcast.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Optional program listing, for error locations.

	input  *io.Queue
	output *io.Broadcast
}

// NewEmulator creates a new emulator running a copy of program. The
// emulator owns the machine's ports; any port options are overridden.
func NewEmulator(program []int64, opts ...cpu.Option) (emu *Emulator) {
	emu = &Emulator{
		input:  &io.Queue{},
		output: &io.Broadcast{},
	}

	opts = append(opts, cpu.WithInput(emu.input), cpu.WithOutput(emu.output))
	emu.Cpu = cpu.NewCpu(program, opts...)
	emu.Verbose = emu.Cpu.Verbose

	return
}

// InputPort is the queue the machine reads from.
func (emu *Emulator) InputPort() *io.Queue {
	return emu.input
}

// OutputPort subscribes a new reader to the machine output. Readers must
// subscribe before the emulator is started.
func (emu *Emulator) OutputPort() (*io.Queue, error) {
	return emu.output.Subscribe()
}

// Outputs returns every value written so far.
func (emu *Emulator) Outputs() []int64 {
	return emu.output.Values()
}

// LineNo returns the current line number for the executing opcode, or 0
// if there is no program listing.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(int(emu.Cpu.Ip))
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// runtimeError adds the location of the machine to err.
func (emu *Emulator) runtimeError(err error) error {
	if err == nil {
		return nil
	}

	return &ErrRuntime{Ip: emu.Cpu.Ip, LineNo: emu.LineNo(), Err: err}
}

// Tick performs a single instruction, without blocking. It reports done
// once the machine has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}
	if err != nil {
		err = emu.runtimeError(err)
		return
	}

	done = emu.Cpu.State == cpu.STATE_HALTED

	return
}

// Run executes the machine on the calling goroutine until it halts,
// faults, its input is closed and drained, or ctx is done. The output
// stream is closed on return.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	defer emu.output.Close()

	emu.Cpu.Verbose = emu.Verbose
	emu.output.Start()

	_, err = emu.Cpu.RunBlocking(ctx)

	return emu.runtimeError(err)
}

// Start runs the machine on a new goroutine. The output subscriber list
// is fixed once Start returns.
func (emu *Emulator) Start(ctx context.Context) (h *Handle) {
	h = &Handle{done: make(chan struct{})}

	emu.output.Start()

	go func() {
		defer close(h.done)
		h.err = emu.Run(ctx)
		h.cpu = emu.Cpu
	}()

	return
}

// Handle is a running emulator.
type Handle struct {
	done chan struct{}
	cpu  *cpu.Cpu
	err  error
}

// Done is closed once the machine has stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the machine stops and yields it for inspection.
func (h *Handle) Wait() (*cpu.Cpu, error) {
	<-h.done
	return h.cpu, h.err
}
