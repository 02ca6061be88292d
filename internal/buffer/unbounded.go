// Package buffer provides a growable queue between a producer that must
// never block and a consumer that drains at its own pace.
package buffer

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Queue is a channel pair backed by a growable slice.
// Writes to In() are accepted immediately until hardLimit items are pending,
// after which the oldest item is dropped.
type Queue[T any] struct {
	in  chan T
	out chan T

	pending atomic.Int64
	dropped atomic.Uint64
}

// NewQueue starts a queue goroutine. Closing In() flushes pending items to
// Out() and then closes Out().
//
// initialCap: starting size of the backing slice.
// hardLimit: maximum number of items buffered before dropping the oldest.
func NewQueue[T any](name string, initialCap, hardLimit int) *Queue[T] {
	q := &Queue[T]{
		in:  make(chan T, 10),
		out: make(chan T, 10),
	}
	go q.run(logrus.WithField("queue", name), initialCap, hardLimit)
	return q
}

// In returns the producer side.
func (q *Queue[T]) In() chan<- T { return q.in }

// Out returns the consumer side.
func (q *Queue[T]) Out() <-chan T { return q.out }

// Len returns the number of items buffered inside the queue.
func (q *Queue[T]) Len() int { return int(q.pending.Load()) }

// Dropped returns how many items were discarded at the hard limit.
func (q *Queue[T]) Dropped() uint64 { return q.dropped.Load() }

func (q *Queue[T]) run(log *logrus.Entry, initialCap, hardLimit int) {
	defer close(q.out)

	queue := make([]T, 0, initialCap)

	for {
		var next T
		var downstream chan T

		// Enable the send case only when there is something to send.
		if len(queue) > 0 {
			next = queue[0]
			downstream = q.out
		}

		select {
		case val, ok := <-q.in:
			if !ok {
				for _, item := range queue {
					q.out <- item
				}
				q.pending.Store(0)
				return
			}

			if len(queue) >= hardLimit {
				if q.dropped.Add(1) == 1 {
					log.WithField("limit", hardLimit).Warn("Queue limit reached, dropping oldest items")
				}
				queue = queue[1:]
			}
			queue = append(queue, val)

		case downstream <- next:
			queue = queue[1:]
		}

		q.pending.Store(int64(len(queue)))
	}
}

// Unbounded is shorthand for a Queue when only the channels are needed.
//
//	in, out := buffer.Unbounded[string]("lines", 100, 50000)
//	in <- "hello"
//	msg := <-out
func Unbounded[T any](name string, initialCap, hardLimit int) (chan<- T, <-chan T) {
	q := NewQueue[T](name, initialCap, hardLimit)
	return q.In(), q.Out()
}
