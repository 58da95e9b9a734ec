package io

import (
	"context"
	"slices"
	"sync"
)

// Queue is an unbounded FIFO of values, safe for use by one producer and
// one consumer on different goroutines. The zero value is an empty, open
// queue.
type Queue struct {
	mutex  sync.Mutex
	data   []int64
	closed bool
	signal chan struct{}
	done   chan struct{}
}

var _ Input = (*Queue)(nil)
var _ Output = (*Queue)(nil)

// NewQueue returns a queue pre-loaded with values.
func NewQueue(values ...int64) (q *Queue) {
	q = &Queue{}
	q.data = slices.Clone(values)
	return
}

// lazy must be called with the mutex held.
func (q *Queue) lazy() {
	if q.signal == nil {
		q.signal = make(chan struct{}, 1)
		q.done = make(chan struct{})
	}
}

// wake must be called with the mutex held.
func (q *Queue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Push appends a value. Pushing to a closed queue returns ErrClosed.
func (q *Queue) Push(value int64) (err error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.lazy()
	if q.closed {
		err = ErrClosed
		return
	}

	q.data = append(q.data, value)
	q.wake()

	return
}

// Send is Push, so a Queue can be used directly as an Output.
func (q *Queue) Send(value int64) error {
	return q.Push(value)
}

// Pop removes and returns the oldest value, if any.
func (q *Queue) Pop() (value int64, ok bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.pop()
}

// pop must be called with the mutex held.
func (q *Queue) pop() (value int64, ok bool) {
	if len(q.data) == 0 {
		return
	}

	value = q.data[0]
	q.data = q.data[1:]
	ok = true

	// Hand the wakeup on if values remain.
	if len(q.data) > 0 {
		q.lazy()
		q.wake()
	}

	return
}

// Await blocks until a value is pending. Once the queue is closed and
// every pending value consumed, Await returns ErrClosed.
func (q *Queue) Await(ctx context.Context) (err error) {
	for {
		q.mutex.Lock()
		q.lazy()
		if len(q.data) > 0 {
			q.mutex.Unlock()
			return
		}
		if q.closed {
			q.mutex.Unlock()
			err = ErrClosed
			return
		}
		signal, done := q.signal, q.done
		q.mutex.Unlock()

		select {
		case <-signal:
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// Wait blocks until a value can be popped, and pops it.
func (q *Queue) Wait(ctx context.Context) (value int64, err error) {
	for {
		err = q.Await(ctx)
		if err != nil {
			return
		}
		var ok bool
		value, ok = q.Pop()
		if ok {
			return
		}
	}
}

// Close ends the stream. Pending values remain readable.
func (q *Queue) Close() (err error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.lazy()
	if !q.closed {
		q.closed = true
		close(q.done)
	}

	return
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.closed
}

// Len is the number of pending values.
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return len(q.data)
}

// Drain removes and returns every pending value.
func (q *Queue) Drain() (values []int64) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	values = q.data
	q.data = nil

	return
}
