package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wishfox/notifier/internal/domain"
	"github.com/wishfox/notifier/internal/queue"
	"github.com/wishfox/notifier/internal/repository"
)

func TestReconciler_ReenqueuesStalePending(t *testing.T) {
	store := repository.NewMockNotificationRepository()
	q := queue.New(10)
	rc := NewReconciler(store, q, time.Hour, 0, time.Hour, zap.NewNop())
	ctx := context.Background()

	n := seedNotification(t, store, 10)

	rc.Sweep(ctx)

	if q.Depth() != 1 {
		t.Fatalf("expected 1 re-enqueued item, got %d", q.Depth())
	}
	item, _ := q.Dequeue(ctx)
	if item.NotificationID != n.ID {
		t.Fatalf("expected %s, got %s", n.ID, item.NotificationID)
	}
}

func TestReconciler_ReleasesStaleClaims(t *testing.T) {
	store := repository.NewMockNotificationRepository()
	q := queue.New(10)
	// pendingAge of an hour keeps fresh pending rows out of this sweep.
	rc := NewReconciler(store, q, time.Hour, time.Hour, 0, zap.NewNop())
	ctx := context.Background()

	n := seedNotification(t, store, 10)
	if _, ok, _ := store.Claim(ctx, n.ID); !ok {
		t.Fatal("claim should succeed")
	}

	rc.Sweep(ctx)

	got, _ := store.GetByID(ctx, n.ID)
	if got.Status != domain.StatusPending {
		t.Fatalf("expected stale claim released, got %s", got.Status)
	}
	if q.Depth() != 1 {
		t.Fatalf("expected 1 re-enqueued item, got %d", q.Depth())
	}
}

func TestReconciler_LeavesFreshRowsAlone(t *testing.T) {
	store := repository.NewMockNotificationRepository()
	q := queue.New(10)
	rc := NewReconciler(store, q, time.Hour, time.Hour, time.Hour, zap.NewNop())
	ctx := context.Background()

	seedNotification(t, store, 10)
	claimed := seedNotification(t, store, 11)
	if _, ok, _ := store.Claim(ctx, claimed.ID); !ok {
		t.Fatal("claim should succeed")
	}

	rc.Sweep(ctx)

	if q.Depth() != 0 {
		t.Fatalf("expected nothing re-enqueued, got %d", q.Depth())
	}
	got, _ := store.GetByID(ctx, claimed.ID)
	if got.Status != domain.StatusSending {
		t.Fatalf("fresh claim must not be released, got %s", got.Status)
	}
}

func TestReconciler_IgnoresTerminalRows(t *testing.T) {
	store := repository.NewMockNotificationRepository()
	q := queue.New(10)
	rc := NewReconciler(store, q, time.Hour, 0, 0, zap.NewNop())
	ctx := context.Background()

	n := seedNotification(t, store, 10)
	if _, ok, _ := store.Claim(ctx, n.ID); !ok {
		t.Fatal("claim should succeed")
	}
	if err := store.FinalizeSent(ctx, n.ID, time.Now().UTC()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rc.Sweep(ctx)

	if q.Depth() != 0 {
		t.Fatalf("sent rows must not be re-enqueued, got depth %d", q.Depth())
	}
}
