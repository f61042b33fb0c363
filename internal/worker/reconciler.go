package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wishfox/notifier/internal/queue"
	"github.com/wishfox/notifier/internal/repository"
)

// sweepLimit bounds how many rows one sweep may re-enqueue per category.
const sweepLimit = 500

// Reconciler is the periodic sweep that keeps the store and the queue
// consistent. The in-process queue may drop items under backpressure and
// loses its contents on restart, so the durable store is the source of truth
// and the reconciler re-derives work from it:
//
//   - pending rows older than pendingAge get their work item re-enqueued
//     (duplicates are harmless; the claim deduplicates);
//   - sending rows claimed longer than claimTimeout ago belong to workers
//     that died or exhausted their retries; their claim is released and the
//     work re-enqueued.
//
// This DB-backed approach means recovery survives server restarts: delivery
// state is persisted, not held in memory.
type Reconciler struct {
	store        repository.NotificationRepository
	q            *queue.Queue
	interval     time.Duration
	pendingAge   time.Duration
	claimTimeout time.Duration
	logger       *zap.Logger
}

func NewReconciler(
	store repository.NotificationRepository,
	q *queue.Queue,
	interval, pendingAge, claimTimeout time.Duration,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		store: store, q: q,
		interval: interval, pendingAge: pendingAge, claimTimeout: claimTimeout,
		logger: logger,
	}
}

// Run ticks every interval and sweeps once per tick.
// Stops cleanly when ctx is cancelled.
func (rc *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()

	rc.logger.Info("reconciler started", zap.Duration("interval", rc.interval))

	for {
		select {
		case <-ctx.Done():
			rc.logger.Info("reconciler stopping")
			return
		case <-ticker.C:
			rc.Sweep(ctx)
		}
	}
}

// Sweep performs one reconciliation pass.
func (rc *Reconciler) Sweep(ctx context.Context) {
	pending, err := rc.store.FindStalePending(ctx, rc.pendingAge, sweepLimit)
	if err != nil {
		rc.logger.Error("stale pending sweep failed", zap.Error(err))
	} else {
		rc.enqueue(pending)
	}

	stuck, err := rc.store.FindStaleClaims(ctx, rc.claimTimeout, sweepLimit)
	if err != nil {
		rc.logger.Error("stale claim sweep failed", zap.Error(err))
		return
	}
	for _, id := range stuck {
		if err := rc.store.RevertToPending(ctx, id); err != nil {
			rc.logger.Error("failed to release stale claim",
				zap.String("notification_id", id), zap.Error(err))
			continue
		}
	}
	rc.enqueue(stuck)

	if len(pending) > 0 || len(stuck) > 0 {
		rc.logger.Info("reconciliation sweep complete",
			zap.Int("stale_pending", len(pending)),
			zap.Int("stale_claims", len(stuck)))
	}
}

func (rc *Reconciler) enqueue(ids []string) {
	for _, id := range ids {
		if err := rc.q.Enqueue(queue.Item{NotificationID: id}); err != nil {
			// Queue is full again; the next sweep will pick the row back up.
			rc.logger.Warn("could not re-enqueue notification",
				zap.String("notification_id", id), zap.Error(err))
			return
		}
	}
}
