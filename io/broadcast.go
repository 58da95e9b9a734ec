package io

import (
	"slices"
	"sync"
)

// Broadcast is an Output observed by any number of readers. Each reader
// subscribes before the producer starts and receives its own unbounded
// Queue holding the full ordered stream. Late subscription is refused
// rather than guessing at replay semantics.
type Broadcast struct {
	mutex       sync.Mutex
	started     bool
	closed      bool
	subscribers []*Queue
	history     []int64
}

var _ Output = (*Broadcast)(nil)

// Subscribe attaches a new reader.
func (bc *Broadcast) Subscribe() (sub *Queue, err error) {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	if bc.started || bc.closed {
		err = ErrLateSubscribe
		return
	}

	sub = &Queue{}
	bc.subscribers = append(bc.subscribers, sub)

	return
}

// Start locks the subscriber list. Send implies Start.
func (bc *Broadcast) Start() {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	bc.started = true
}

// Send delivers a value to every subscriber.
func (bc *Broadcast) Send(value int64) (err error) {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	if bc.closed {
		err = ErrClosed
		return
	}

	bc.started = true
	bc.history = append(bc.history, value)
	for _, sub := range bc.subscribers {
		// A subscriber closed by its reader no longer wants values.
		_ = sub.Push(value)
	}

	return
}

// Close closes every subscriber queue.
func (bc *Broadcast) Close() (err error) {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	if bc.closed {
		return
	}

	bc.closed = true
	bc.started = true
	for _, sub := range bc.subscribers {
		sub.Close()
	}

	return
}

// Values returns a copy of everything sent so far.
func (bc *Broadcast) Values() []int64 {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	return slices.Clone(bc.history)
}

// Last returns the most recent value sent.
func (bc *Broadcast) Last() (value int64, ok bool) {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	if len(bc.history) == 0 {
		return
	}

	return bc.history[len(bc.history)-1], true
}
