package queue

import (
	"context"

	"github.com/wishfox/notifier/internal/domain"
)

// Queue is the in-process at-least-once delivery queue backed by a single
// buffered channel. It is a cheap hint, not a source of truth: it may drop
// items under backpressure or lose them on restart. Correctness depends only
// on the store's atomic claim plus the reconciler re-enqueueing stale rows,
// never on the queue being reliable. No ordering is guaranteed beyond FIFO
// within one process, and none is required.
type Queue struct {
	items chan Item
}

func New(capacity int) *Queue {
	return &Queue{items: make(chan Item, capacity)}
}

// Enqueue places an item on the queue. It is non-blocking: if the buffer is
// full, ErrQueueFull is returned immediately rather than blocking the caller.
// The dropped item is recovered later by the reconciler sweep.
func (q *Queue) Enqueue(item Item) error {
	select {
	case q.items <- item:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until an item is available or ctx is cancelled.
// Returns (Item{}, false) when ctx is cancelled (graceful shutdown signal).
func (q *Queue) Dequeue(ctx context.Context) (Item, bool) {
	select {
	case item := <-q.items:
		return item, true
	case <-ctx.Done():
		return Item{}, false
	}
}

// Depth returns the current number of items waiting in the queue.
// Used by the metrics handler for the queue-depth snapshot.
func (q *Queue) Depth() int {
	return len(q.items)
}
