// Package io provides the ports connecting an Intcode machine to the
// outside world: an unbounded first-in-first-out Queue for input, and a
// Broadcast sink whose output stream is observed by several readers.
package io

import (
	"context"
)

// Input is the source consumed by the read-input instruction.
type Input interface {
	// Pop returns the next pending value without blocking.
	Pop() (value int64, ok bool)
	// Await blocks until a value is pending, the input is closed and
	// drained (ErrClosed), or the context is done.
	Await(ctx context.Context) error
}

// Output receives the values written by the write-output instruction,
// in execution order.
type Output interface {
	// Send appends a value to the output stream.
	Send(value int64) error
	// Close marks the end of the output stream.
	Close() error
}
