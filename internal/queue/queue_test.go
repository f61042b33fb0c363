package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wishfox/notifier/internal/domain"
	"github.com/wishfox/notifier/internal/queue"
)

func TestQueue_EnqueueDequeue(t *testing.T) {
	q := queue.New(10)

	if err := q.Enqueue(queue.Item{NotificationID: "n1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", q.Depth())
	}

	item, ok := q.Dequeue(context.Background())
	if !ok {
		t.Fatal("expected an item")
	}
	if item.NotificationID != "n1" {
		t.Fatalf("expected n1, got %s", item.NotificationID)
	}
	if q.Depth() != 0 {
		t.Fatalf("expected depth 0, got %d", q.Depth())
	}
}

func TestQueue_FullReturnsError(t *testing.T) {
	q := queue.New(2)

	if err := q.Enqueue(queue.Item{NotificationID: "n1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Enqueue(queue.Item{NotificationID: "n2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := q.Enqueue(queue.Item{NotificationID: "n3"})
	if !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestQueue_DequeueStopsOnCancel(t *testing.T) {
	q := queue.New(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue(ctx)
		done <- ok
	}()

	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false on cancelled context")
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue did not return after cancel")
	}
}

func TestQueue_DequeueBlocksUntilItem(t *testing.T) {
	q := queue.New(1)

	got := make(chan queue.Item, 1)
	go func() {
		item, _ := q.Dequeue(context.Background())
		got <- item
	}()

	time.Sleep(10 * time.Millisecond)
	if err := q.Enqueue(queue.Item{NotificationID: "late"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case item := <-got:
		if item.NotificationID != "late" {
			t.Fatalf("expected late, got %s", item.NotificationID)
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue never received the item")
	}
}
