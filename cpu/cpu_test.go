package cpu

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/intcode/io"
)

const diagnostic = "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31," +
	"1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104," +
	"999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"

const quine = "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"

// tape converts comma separated text to a program.
func tape(t *testing.T, text string) (program []int64) {
	for _, field := range strings.Split(text, ",") {
		value, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			t.Fatal(err)
		}
		program = append(program, value)
	}
	return
}

// runAll runs a program with inputs to completion.
func runAll(t *testing.T, text string, inputs ...int64) (cpu *Cpu) {
	assert := assert.New(t)

	cpu = NewCpu(tape(t, text), WithInput(io.NewQueue(inputs...)))
	state, err := cpu.Run()
	assert.NoError(err, text)
	assert.Equal(STATE_HALTED, state, text)

	return
}

func TestProcess(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		program string
		result  int64
	}){
		{"1,0,0,0,99", 2},
		{"2,3,0,3,99", 2},
		{"2,4,4,5,99,0", 2},
		{"1,1,1,4,99,5,6,0,99", 30},
		{"1,9,10,3,2,3,11,0,99,30,40,50", 3500},
	}

	for _, entry := range table {
		result, err := Process(tape(t, entry.program))
		assert.NoError(err, entry.program)
		assert.Equal(entry.result, result, entry.program)
	}
}

func TestProcess_Waiting(t *testing.T) {
	assert := assert.New(t)

	_, err := Process(tape(t, "3,0,99"))
	assert.ErrorIs(err, ErrWaiting)
}

func TestCpu_Modes(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		program string
		addr    int64
		value   int64
	}){
		{"1002,4,3,4,33", 4, 99},
		{"1101,100,-1,4,0", 4, 99},
		{"11101,2,3,0,99", 0, 5}, // immediate target writes its raw address
	}

	for _, entry := range table {
		cpu := runAll(t, entry.program)
		assert.Equal(entry.value, cpu.MemoryAt(entry.addr), entry.program)
	}
}

func TestCpu_Echo(t *testing.T) {
	assert := assert.New(t)

	cpu := runAll(t, "3,0,4,0,99", 365)
	assert.Equal([]int64{365}, cpu.Outputs())
	assert.Equal(int64(365), cpu.Result())
}

func TestCpu_Compare(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		program string
		input   int64
		output  int64
	}){
		{"3,9,8,9,10,9,4,9,99,-1,8", 8, 1},
		{"3,9,8,9,10,9,4,9,99,-1,8", 7, 0},
		{"3,9,7,9,10,9,4,9,99,-1,8", 7, 1},
		{"3,9,7,9,10,9,4,9,99,-1,8", 9, 0},
		{"3,3,1108,-1,8,3,4,3,99", 8, 1},
		{"3,3,1108,-1,8,3,4,3,99", 3, 0},
		{"3,3,1107,-1,8,3,4,3,99", 3, 1},
		{"3,3,1107,-1,8,3,4,3,99", 8, 0},
		{"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", 0, 0},
		{"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", 5, 1},
		{"3,3,1105,-1,9,1101,0,0,12,4,12,99,1", 0, 0},
		{"3,3,1105,-1,9,1101,0,0,12,4,12,99,1", -5, 1},
		{diagnostic, 4, 999},
		{diagnostic, 8, 1000},
		{diagnostic, 9, 1001},
	}

	for _, entry := range table {
		cpu := runAll(t, entry.program, entry.input)
		assert.Equal([]int64{entry.output}, cpu.Outputs(), "%v <- %v", entry.program, entry.input)
	}
}

func TestCpu_Quine(t *testing.T) {
	assert := assert.New(t)

	cpu := runAll(t, quine)
	assert.Equal(tape(t, quine), cpu.Outputs())
}

func TestCpu_LargeNumbers(t *testing.T) {
	assert := assert.New(t)

	cpu := runAll(t, "1102,34915192,34915192,7,4,7,99,0")
	outputs := cpu.Outputs()
	assert.Equal([]int64{1219070632396864}, outputs)
	assert.Len(strconv.FormatInt(outputs[0], 10), 16)

	cpu = runAll(t, "104,1125899906842624,99")
	assert.Equal([]int64{1125899906842624}, cpu.Outputs())
}

func TestCpu_RelativeBase(t *testing.T) {
	assert := assert.New(t)

	cpu := runAll(t, "109,2000,109,19,99")
	assert.Equal(int64(2019), cpu.RelativeBase)

	// rb = 2000 + 19, then output [rb-34] = [1985]
	program := tape(t, "109,2000,109,19,204,-34,99")
	cpu = NewCpu(program)
	assert.NoError(cpu.Tape.Write(1985, 77))
	state, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(STATE_HALTED, state)
	assert.Equal([]int64{77}, cpu.Outputs())

	// Relative input target
	cpu = runAll(t, "109,10,203,5,99", 42)
	assert.Equal(int64(42), cpu.MemoryAt(15))
}

func TestCpu_Deterministic(t *testing.T) {
	assert := assert.New(t)

	for _, program := range []string{quine, diagnostic} {
		a := runAll(t, program, 6)
		b := runAll(t, program, 6)
		assert.Equal(a.Tape.Data, b.Tape.Data)
		assert.Equal(a.Outputs(), b.Outputs())
		assert.Equal(a.Ticks, b.Ticks)
	}
}

func TestCpu_Monotonic(t *testing.T) {
	assert := assert.New(t)

	program := tape(t, "1101,1,2,500,99")
	cpu := NewCpu(program)
	before := cpu.Tape.Len()
	_, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(501, cpu.Tape.Len())
	assert.GreaterOrEqual(cpu.Tape.Len(), before)
	assert.Equal(int64(3), cpu.MemoryAt(500))

	// The caller's program is not modified.
	assert.Equal(tape(t, "1101,1,2,500,99"), program)
}

func TestCpu_Waiting(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(tape(t, "3,0,4,0,3,0,4,0,99"))

	state, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(STATE_WAITING, state)
	assert.Equal(int64(0), cpu.Ip)
	assert.Equal(0, cpu.Ticks)

	// Still waiting without input.
	state, err = cpu.Run()
	assert.NoError(err)
	assert.Equal(STATE_WAITING, state)

	assert.NoError(cpu.PushInput(1))
	state, err = cpu.Run()
	assert.NoError(err)
	assert.Equal(STATE_WAITING, state)
	assert.Equal(int64(4), cpu.Ip)
	val, ok := cpu.PopOutput()
	assert.True(ok)
	assert.Equal(int64(1), val)

	assert.NoError(cpu.PushInput(2))
	state, err = cpu.Run()
	assert.NoError(err)
	assert.Equal(STATE_HALTED, state)
	assert.Equal([]int64{2}, cpu.Outputs())

	// Halted is terminal.
	state, err = cpu.Run()
	assert.NoError(err)
	assert.Equal(STATE_HALTED, state)
	assert.ErrorIs(cpu.Tick(), ErrHalted)
}

func TestCpu_Faults(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program string
		variant Variant
		err     error
	}){
		{"opcode", "42,0,0,0,99", VARIANT_EXTENDED, ErrOpcode(0)},
		{"negative_opcode", "-1,0,0,0,99", VARIANT_EXTENDED, ErrOpcode(0)},
		{"mode", "301,0,0,0,99", VARIANT_EXTENDED, ErrMode},
		{"mode_arg2", "3001,0,0,0,99", VARIANT_EXTENDED, ErrOpcodeArg2},
		{"relative_basic", "201,0,0,0,99", VARIANT_BASIC, ErrMode},
		{"arb_basic", "109,1,99", VARIANT_BASIC, ErrOpcode(0)},
		{"read_negative", "1,-1,0,0,99", VARIANT_EXTENDED, ErrAddress},
		{"write_negative", "1101,1,1,-4,99", VARIANT_EXTENDED, ErrAddress},
		{"relative_negative", "109,-10,22201,0,0,0,99", VARIANT_EXTENDED, ErrAddress},
		{"read_past_basic", "1,0,10,0,99", VARIANT_BASIC, ErrAddress},
		{"jump_negative", "1105,1,-7", VARIANT_EXTENDED, ErrAddress},
	}

	for _, entry := range table {
		cpu := NewCpu(tape(t, entry.program), WithVariant(entry.variant))
		state, err := cpu.Run()
		assert.Equal(STATE_FAULTED, state, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)

		var fault *ErrFault
		assert.True(errors.As(err, &fault), entry.name)

		// Faults are not retried.
		state, again := cpu.Run()
		assert.Equal(STATE_FAULTED, state, entry.name)
		assert.Equal(err, again, entry.name)
		assert.Equal(err, cpu.Tick(), entry.name)
	}
}

func TestCpu_ReadPastExtended(t *testing.T) {
	assert := assert.New(t)

	cpu := runAll(t, "1,0,10,0,99")
	assert.Equal(int64(1), cpu.Result())
	assert.Equal(11, cpu.Tape.Len())
}

func TestCpu_ReadPastLimit(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(tape(t, "4,1073741824,99"))
	state, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(STATE_HALTED, state)
	assert.Equal([]int64{0}, cpu.Outputs())
	assert.Equal(3, cpu.Tape.Len())

	// Writes past the limit still fault.
	cpu = NewCpu(tape(t, "1101,1,1,1073741824,99"))
	state, err = cpu.Run()
	assert.Equal(STATE_FAULTED, state)
	assert.ErrorIs(err, ErrAddress)
}

func TestCpu_TickAfterWaiting(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(tape(t, "3,5,99,0,0,0"))
	state, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(STATE_WAITING, state)

	// Without input, a step stays on the read.
	assert.NoError(cpu.Tick())
	assert.Equal(STATE_WAITING, cpu.State)
	assert.Equal(int64(0), cpu.Ip)

	assert.NoError(cpu.PushInput(7))
	assert.NoError(cpu.Tick())
	assert.Equal(STATE_RUNNING, cpu.State)
	assert.Equal(int64(2), cpu.Ip)
	assert.Equal(int64(7), cpu.MemoryAt(5))

	assert.NoError(cpu.Tick())
	assert.Equal(STATE_HALTED, cpu.State)
}

func TestCpu_OutputClosed(t *testing.T) {
	assert := assert.New(t)

	out := &io.Queue{}
	out.Close()
	cpu := NewCpu(tape(t, "104,1,99"), WithOutput(out))
	state, err := cpu.Run()
	assert.Equal(STATE_FAULTED, state)
	assert.ErrorIs(err, io.ErrClosed)
	assert.ErrorIs(err, ErrOpcodeIo)
}

func TestCpu_PortsUnreadable(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(tape(t, "104,1,99"), WithOutput(&io.Broadcast{}))
	_, err := cpu.Run()
	assert.NoError(err)

	_, ok := cpu.PopOutput()
	assert.False(ok)
}

func TestCpu_RunBlocking(t *testing.T) {
	assert := assert.New(t)

	in := &io.Queue{}
	cpu := NewCpu(tape(t, "3,0,4,0,3,0,4,0,99"), WithInput(in))

	go func() {
		time.Sleep(5 * time.Millisecond)
		in.Push(5)
		time.Sleep(5 * time.Millisecond)
		in.Push(6)
	}()

	state, err := cpu.RunBlocking(context.Background())
	assert.NoError(err)
	assert.Equal(STATE_HALTED, state)
	assert.Equal([]int64{5, 6}, cpu.Outputs())
}

func TestCpu_RunBlocking_Closed(t *testing.T) {
	assert := assert.New(t)

	in := io.NewQueue(5)
	in.Close()
	cpu := NewCpu(tape(t, "3,0,4,0,3,0,4,0,99"), WithInput(in))

	state, err := cpu.RunBlocking(context.Background())
	assert.NoError(err)
	assert.Equal(STATE_WAITING, state)
	assert.Equal([]int64{5}, cpu.Outputs())
}

func TestCpu_RunBlocking_Cancel(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	cpu := NewCpu(tape(t, "3,0,99"))
	state, err := cpu.RunBlocking(ctx)
	assert.ErrorIs(err, context.DeadlineExceeded)
	assert.Equal(STATE_WAITING, state)
}

func TestCpu_String(t *testing.T) {
	assert := assert.New(t)

	cpu := runAll(t, "109,7,99")
	text := cpu.String()
	assert.Contains(text, "halted")
	assert.Contains(text, "rb: 7")
}
