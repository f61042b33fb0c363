package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wishfox/notifier/internal/domain"
	"github.com/wishfox/notifier/internal/format"
	"github.com/wishfox/notifier/internal/queue"
	"github.com/wishfox/notifier/internal/ratelimiter"
	"github.com/wishfox/notifier/internal/repository"
	"github.com/wishfox/notifier/internal/telegram"
)

// Backoff controls the in-process retry schedule of a single delivery:
// up to Attempts transport calls, the first retry after Initial, doubling
// per attempt, capped at Cap.
type Backoff struct {
	Attempts int
	Initial  time.Duration
	Cap      time.Duration
}

// Worker is a single goroutine that continuously pulls notification IDs from
// the delivery queue, claims the record, formats the message, and delivers it
// through the transport.
//
// The queue delivers at-least-once: duplicates and redeliveries are expected
// and harmless, because the store's atomic claim is the sole de-duplication
// point. A worker that loses the claim race simply drops the item.
type Worker struct {
	id          int
	q           *queue.Queue
	store       repository.NotificationRepository
	directory   repository.DirectoryRepository
	sender      telegram.Sender
	limiter     *ratelimiter.SendLimiter
	backoff     Backoff
	sendTimeout time.Duration
	logger      *zap.Logger

	// Hooks for metrics — injected by the pool so the worker stays metrics-agnostic.
	onSent       func(typ domain.NotificationType, latency time.Duration)
	onSuppressed func(typ domain.NotificationType)
	onStalled    func(typ domain.NotificationType)
}

// NewWorker constructs a worker. The metric hooks are optional (nil = no-op).
func NewWorker(
	id int,
	q *queue.Queue,
	store repository.NotificationRepository,
	directory repository.DirectoryRepository,
	sender telegram.Sender,
	limiter *ratelimiter.SendLimiter,
	backoff Backoff,
	sendTimeout time.Duration,
	logger *zap.Logger,
	hooks MetricHooks,
) *Worker {
	if hooks.OnSent == nil {
		hooks.OnSent = func(domain.NotificationType, time.Duration) {}
	}
	if hooks.OnSuppressed == nil {
		hooks.OnSuppressed = func(domain.NotificationType) {}
	}
	if hooks.OnStalled == nil {
		hooks.OnStalled = func(domain.NotificationType) {}
	}
	return &Worker{
		id: id, q: q, store: store, directory: directory,
		sender: sender, limiter: limiter,
		backoff: backoff, sendTimeout: sendTimeout, logger: logger,
		onSent: hooks.OnSent, onSuppressed: hooks.OnSuppressed, onStalled: hooks.OnStalled,
	}
}

// Run blocks until ctx is cancelled, processing one queue item per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started", zap.Int("id", w.id))
	for {
		item, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("worker stopping", zap.Int("id", w.id))
			return
		}
		w.process(ctx, item)
	}
}

func (w *Worker) process(ctx context.Context, item queue.Item) {
	start := time.Now()
	log := w.logger.With(zap.String("notification_id", item.NotificationID))

	n, ok, err := w.store.Claim(ctx, item.NotificationID)
	if err != nil {
		log.Error("claim failed", zap.Error(err))
		return
	}
	if !ok {
		// Already claimed, already terminal, or never existed: a duplicate or
		// late work item. Nothing to do.
		log.Debug("claim lost, dropping work item")
		return
	}

	rec, err := w.directory.Recipient(ctx, n.RecipientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			w.suppress(ctx, n, "recipient no longer exists")
			return
		}
		// Transient store error: leave the claim for the reconciler sweep.
		log.Error("recipient lookup failed", zap.Error(err))
		w.onStalled(n.Type)
		return
	}
	if !rec.Reachable() {
		w.suppress(ctx, n, "recipient has no chat identity")
		return
	}

	text := format.Render(n.Payload, rec.Locale)

	err = w.deliver(ctx, *rec.ChatID, text)
	switch {
	case err == nil:
		now := time.Now().UTC()
		if err := w.store.FinalizeSent(ctx, n.ID, now); err != nil {
			log.Error("failed to finalize sent", zap.Error(err))
			return
		}
		w.onSent(n.Type, time.Since(start))
		log.Info("notification sent",
			zap.Int64("recipient_id", n.RecipientID),
			zap.Duration("latency", time.Since(start)))

	case errors.Is(err, telegram.ErrPermanent):
		w.suppress(ctx, n, err.Error())

	case errors.Is(err, telegram.ErrNotAttempted):
		// No request ever left the process, so no remote side effect can
		// exist: the claim is safe to release for a later redelivery.
		if err := w.store.RevertToPending(ctx, n.ID); err != nil {
			log.Error("failed to revert claim", zap.Error(err))
			return
		}
		log.Warn("send not attempted, claim released", zap.Error(err))

	default:
		// Transient failure with retries exhausted, or shutdown mid-delivery.
		// The outcome is ambiguous (the remote may have received an attempt),
		// so the record stays claimed until the reconciler expires it.
		w.onStalled(n.Type)
		log.Warn("delivery stalled, retries exhausted",
			zap.Int("attempts", w.backoff.Attempts), zap.Error(err))
	}
}

// deliver calls the transport with bounded retry. It returns nil on the first
// successful attempt, a telegram.ErrPermanent-wrapped error as soon as one is
// seen, telegram.ErrNotAttempted only when the very first attempt never
// issued a request, and otherwise the last transient error.
func (w *Worker) deliver(ctx context.Context, chatID int64, text string) error {
	var lastErr error
	delay := w.backoff.Initial

	for attempt := 0; attempt < w.backoff.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
			if delay > w.backoff.Cap {
				delay = w.backoff.Cap
			}
		}

		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
		err := w.sender.Send(attemptCtx, chatID, text)
		cancel()

		if err == nil {
			return nil
		}
		if errors.Is(err, telegram.ErrPermanent) {
			return err
		}
		if errors.Is(err, telegram.ErrNotAttempted) {
			if attempt == 0 {
				return err
			}
			// An earlier attempt reached the wire; the outcome is ambiguous,
			// so this no longer qualifies as not-attempted.
			return lastErr
		}

		lastErr = err
		w.logger.Warn("transport attempt failed",
			zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return lastErr
}

func (w *Worker) suppress(ctx context.Context, n *domain.Notification, reason string) {
	if err := w.store.MarkSuppressed(ctx, n.ID, reason); err != nil {
		w.logger.Error("failed to suppress notification",
			zap.String("notification_id", n.ID), zap.Error(err))
		return
	}
	w.onSuppressed(n.Type)
	w.logger.Info("notification suppressed",
		zap.String("notification_id", n.ID),
		zap.Int64("recipient_id", n.RecipientID),
		zap.String("reason", reason))
}
