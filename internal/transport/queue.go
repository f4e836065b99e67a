package transport

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/seabridge/internal/observability"
)

// QueueCapacity bounds every transport byte queue.
const QueueCapacity = 1000

// dropQueue is a bounded FIFO of byte chunks. Producers never block: when
// the queue is full the newest chunk is dropped with a warning.
type dropQueue struct {
	owner string
	name  string
	ch    chan []byte
}

func newDropQueue(owner, name string, capacity int) *dropQueue {
	if capacity <= 0 {
		capacity = QueueCapacity
	}
	return &dropQueue{owner: owner, name: name, ch: make(chan []byte, capacity)}
}

// TryPut enqueues b and reports whether it was kept.
func (q *dropQueue) TryPut(b []byte) bool {
	select {
	case q.ch <- b:
		return true
	default:
		log.Warn().
			Str("transport", q.owner).
			Str("queue", q.name).
			Int("bytes", len(b)).
			Int("capacity", cap(q.ch)).
			Msg("queue full, dropping chunk")
		observability.RecordQueueDrop(q.owner, q.name)
		return false
	}
}

// Get blocks for the oldest chunk. closed, when it fires, ends the wait
// with ErrClosed.
func (q *dropQueue) Get(ctx context.Context, closed <-chan struct{}) ([]byte, error) {
	select {
	case b := <-q.ch:
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-closed:
		return nil, ErrClosed
	}
}

func (q *dropQueue) Len() int {
	return len(q.ch)
}

func (q *dropQueue) Cap() int {
	return cap(q.ch)
}
