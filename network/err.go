package network

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	ErrDeadlock = errors.New(f("every node is waiting for input"))
	ErrNoOutput = errors.New(f("terminal node produced no output"))
	ErrPhases   = errors.New(f("phase setting does not match the topology"))
	ErrTopology = errors.New(f("topology invalid"))
	ErrStrategy = errors.New(f("strategy invalid"))
)

// ErrNode indicates which node of a network failed.
type ErrNode struct {
	Node int
	Err  error
}

func (err *ErrNode) Error() string {
	return f("node %d: %v", err.Node, err.Err)
}

func (err *ErrNode) Unwrap() error {
	return err.Err
}
