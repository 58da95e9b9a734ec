package cpu

const (
	TAPE_LIMIT = 1 << 26 // Maximum tape length, in cells.
)

// Tape is the growable memory of a machine, holding both program and data.
// It grows with zero-filled cells whenever an access lands past its end,
// and never shrinks.
type Tape struct {
	Data []int64

	// Strict refuses reads past the end of the tape instead of growing it.
	Strict bool
}

// Len is the current tape length.
func (t *Tape) Len() int {
	return len(t.Data)
}

// grow extends the tape so addr is valid.
func (t *Tape) grow(addr int64) (err error) {
	if addr < 0 || addr >= TAPE_LIMIT {
		err = ErrAddress
		return
	}

	if int(addr) >= len(t.Data) {
		t.Data = append(t.Data, make([]int64, int(addr)+1-len(t.Data))...)
	}

	return
}

// Read returns the cell at addr. Past TAPE_LIMIT the cell reads as zero,
// and the tape is not grown.
func (t *Tape) Read(addr int64) (value int64, err error) {
	if addr < 0 {
		err = ErrAddress
		return
	}

	if addr >= int64(len(t.Data)) {
		if t.Strict {
			err = ErrAddress
			return
		}
		if addr >= TAPE_LIMIT {
			return
		}
		err = t.grow(addr)
		if err != nil {
			return
		}
	}

	value = t.Data[addr]
	return
}

// Write stores value at addr.
func (t *Tape) Write(addr int64, value int64) (err error) {
	err = t.grow(addr)
	if err != nil {
		return
	}

	t.Data[addr] = value
	return
}

// Peek returns the cell at addr, or zero if it is outside the tape.
// The tape is left unchanged.
func (t *Tape) Peek(addr int64) int64 {
	if addr < 0 || addr >= int64(len(t.Data)) {
		return 0
	}

	return t.Data[addr]
}
