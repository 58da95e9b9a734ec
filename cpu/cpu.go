package cpu

import (
	"context"
	"errors"
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/ezrec/intcode/io"
)

// State is the execution state of a Cpu.
type State int

const (
	STATE_RUNNING = State(0) // running
	STATE_WAITING = State(1) // waiting
	STATE_HALTED  = State(2) // halted
	STATE_FAULTED = State(3) // faulted
)

// Option configures a Cpu.
type Option func(cpu *Cpu)

// WithVariant selects the instruction set variant.
func WithVariant(variant Variant) Option {
	return func(cpu *Cpu) {
		cpu.Variant = variant
		cpu.Tape.Strict = variant == VARIANT_BASIC
	}
}

// WithInput attaches an input port.
func WithInput(input io.Input) Option {
	return func(cpu *Cpu) { cpu.Input = input }
}

// WithOutput attaches an output port.
func WithOutput(output io.Output) Option {
	return func(cpu *Cpu) { cpu.Output = output }
}

// WithVerbose enables instruction tracing.
func WithVerbose(verbose bool) Option {
	return func(cpu *Cpu) { cpu.Verbose = verbose }
}

// WithLogger sets the log entry used for tracing.
func WithLogger(logger *log.Entry) Option {
	return func(cpu *Cpu) { cpu.Logger = logger }
}

// Cpu is the simulation context of one Intcode machine.
type Cpu struct {
	Verbose bool       // Set to enable verbose logging.
	Logger  *log.Entry // Destination of verbose logging.

	Variant      Variant // Instruction set variant.
	Tape         Tape    // Program and data memory.
	Ip           int64   // Current instruction pointer.
	RelativeBase int64   // Relative mode base register.
	State        State   // Current execution state.
	Fault        error   // Fault that stopped the machine.

	Ticks int // Instructions executed.

	Input  io.Input  // Input port.
	Output io.Output // Output port.
}

// NewCpu creates a new machine running a copy of program.
func NewCpu(program []int64, opts ...Option) (cpu *Cpu) {
	cpu = &Cpu{
		Tape:   Tape{Data: slices.Clone(program)},
		Input:  &io.Queue{},
		Output: &io.Queue{},
	}

	for _, opt := range opts {
		opt(cpu)
	}

	if cpu.Logger == nil {
		cpu.Logger = log.NewEntry(log.StandardLogger())
	}

	return
}

// Process runs a basic variant program, without input, to completion and
// returns the final value of cell 0.
func Process(program []int64) (result int64, err error) {
	cpu := NewCpu(program, WithVariant(VARIANT_BASIC))

	state, err := cpu.Run()
	if err != nil {
		return
	}

	if state != STATE_HALTED {
		err = ErrWaiting
		return
	}

	result = cpu.Result()
	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 6s: %v\n", "state", cpu.State)
	text += fmt.Sprintf("% 6s: %d\n", "ip", cpu.Ip)
	text += fmt.Sprintf("% 6s: %d\n", "rb", cpu.RelativeBase)
	text += fmt.Sprintf("% 6s: %d\n", "tape", cpu.Tape.Len())
	text += fmt.Sprintf("% 6s: %d\n", "ticks", cpu.Ticks)
	if cpu.Fault != nil {
		text += fmt.Sprintf("% 6s: %v\n", "fault", cpu.Fault)
	}

	return
}

// Result is the value of tape cell 0.
func (cpu *Cpu) Result() int64 {
	return cpu.Tape.Peek(0)
}

// MemoryAt returns the tape cell at addr, zero if outside the tape.
func (cpu *Cpu) MemoryAt(addr int64) int64 {
	return cpu.Tape.Peek(addr)
}

// PushInput queues an input value. The input port must accept pushes.
func (cpu *Cpu) PushInput(value int64) (err error) {
	in, ok := cpu.Input.(interface{ Push(int64) error })
	if !ok {
		err = ErrOpcodeIo
		return
	}

	return in.Push(value)
}

// PopOutput removes the oldest unread output value. It returns false if
// there is none, or if the output port cannot be read back.
func (cpu *Cpu) PopOutput() (value int64, ok bool) {
	out, ok := cpu.Output.(interface{ Pop() (int64, bool) })
	if !ok {
		return
	}

	return out.Pop()
}

// Outputs removes and returns every unread output value.
func (cpu *Cpu) Outputs() (values []int64) {
	for {
		value, ok := cpu.PopOutput()
		if !ok {
			return
		}
		values = append(values, value)
	}
}

// Run executes instructions until the machine halts, faults, or waits for
// input. A waiting machine resumes from the blocked instruction once input
// has been supplied. Faults are terminal: a faulted machine returns its
// fault on every call.
func (cpu *Cpu) Run() (state State, err error) {
	switch cpu.State {
	case STATE_HALTED:
		return cpu.State, nil
	case STATE_FAULTED:
		return cpu.State, cpu.Fault
	}

	cpu.State = STATE_RUNNING
	for cpu.State == STATE_RUNNING {
		err = cpu.Tick()
		if err != nil {
			break
		}
	}

	state = cpu.State
	return
}

// RunBlocking executes until the machine halts or faults, blocking on the
// input port whenever it is empty. If the input port is closed while the
// machine waits on it, RunBlocking returns STATE_WAITING and no error.
func (cpu *Cpu) RunBlocking(ctx context.Context) (state State, err error) {
	for {
		state, err = cpu.Run()
		if err != nil || state != STATE_WAITING {
			return
		}

		if cpu.Verbose {
			cpu.Logger.Debugf("%d: await input", cpu.Ip)
		}

		err = cpu.Input.Await(ctx)
		if errors.Is(err, io.ErrClosed) {
			if cpu.Verbose {
				cpu.Logger.Debugf("%d: input closed", cpu.Ip)
			}
			err = nil
			return
		}
		if err != nil {
			return
		}
	}
}

// Tick executes a single instruction.
func (cpu *Cpu) Tick() (err error) {
	switch cpu.State {
	case STATE_HALTED:
		return ErrHalted
	case STATE_FAULTED:
		return cpu.Fault
	case STATE_WAITING:
		cpu.State = STATE_RUNNING
	}

	ins, err := Decode(&cpu.Tape, cpu.Ip, cpu.Variant)
	if err == nil {
		err = cpu.Execute(ins)
	}

	if err != nil {
		err = &ErrFault{Ip: cpu.Ip, Word: cpu.Tape.Peek(cpu.Ip), Err: err}
		cpu.State = STATE_FAULTED
		cpu.Fault = err
		if cpu.Verbose {
			cpu.Logger.Debugf("%v", err)
		}
	}

	return
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(ins Instruction) (err error) {
	if cpu.Verbose {
		cpu.Logger.Debugf("%d: %v", cpu.Ip, ins)
	}

	next_ip := cpu.Ip + ins.Width()

	switch ins.Op {
	case OP_ADD, OP_MUL, OP_LT, OP_EQ:
		var a, b, dst int64
		a, err = cpu.get(ins.Params[0])
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		b, err = cpu.get(ins.Params[1])
		if err != nil {
			err = errors.Join(ErrOpcodeArg2, err)
			return
		}
		dst, err = cpu.set(ins.Params[2])
		if err != nil {
			err = errors.Join(ErrOpcodeArg3, err)
			return
		}
		err = cpu.Tape.Write(dst, doAlu(ins.Op, a, b))
		if err != nil {
			err = errors.Join(ErrOpcodeArg3, err)
			return
		}
	case OP_IN:
		var dst int64
		dst, err = cpu.set(ins.Params[0])
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		value, ok := cpu.Input.Pop()
		if !ok {
			// Don't advance to next IP.
			cpu.State = STATE_WAITING
			return
		}
		err = cpu.Tape.Write(dst, value)
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
	case OP_OUT:
		var value int64
		value, err = cpu.get(ins.Params[0])
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		err = cpu.Output.Send(value)
		if err != nil {
			err = errors.Join(ErrOpcodeIo, err)
			return
		}
	case OP_JT, OP_JF:
		var test, target int64
		test, err = cpu.get(ins.Params[0])
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		target, err = cpu.get(ins.Params[1])
		if err != nil {
			err = errors.Join(ErrOpcodeArg2, err)
			return
		}
		if (test != 0) == (ins.Op == OP_JT) {
			next_ip = target
		}
	case OP_ARB:
		var delta int64
		delta, err = cpu.get(ins.Params[0])
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		cpu.RelativeBase += delta
	case OP_HALT:
		cpu.State = STATE_HALTED
		next_ip = cpu.Ip
	default:
		err = ErrOpcode(ins.Word())
		return
	}

	cpu.Ip = next_ip
	cpu.Ticks++

	return
}

// get resolves a parameter to the value it reads.
func (cpu *Cpu) get(p Param) (value int64, err error) {
	switch p.Mode {
	case MODE_POSITION:
		value, err = cpu.Tape.Read(p.Value)
	case MODE_IMMEDIATE:
		value = p.Value
	case MODE_RELATIVE:
		value, err = cpu.Tape.Read(cpu.RelativeBase + p.Value)
	default:
		err = ErrMode
	}

	return
}

// set resolves a parameter to the address it writes. Immediate mode is not
// a meaningful target, but resolves like position mode.
func (cpu *Cpu) set(p Param) (addr int64, err error) {
	switch p.Mode {
	case MODE_POSITION, MODE_IMMEDIATE:
		addr = p.Value
	case MODE_RELATIVE:
		addr = cpu.RelativeBase + p.Value
	default:
		err = ErrMode
		return
	}

	if addr < 0 {
		err = ErrAddress
	}

	return
}

// doAlu performs the requested arithmetic or comparison.
func doAlu(op Op, a, b int64) (output int64) {
	switch op {
	case OP_ADD:
		output = a + b
	case OP_MUL:
		output = a * b
	case OP_LT:
		if a < b {
			output = 1
		}
	case OP_EQ:
		if a == b {
			output = 1
		}
	}

	return
}
