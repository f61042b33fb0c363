package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wishfox/notifier/internal/config"
	"github.com/wishfox/notifier/internal/domain"
	"github.com/wishfox/notifier/internal/queue"
	"github.com/wishfox/notifier/internal/ratelimiter"
	"github.com/wishfox/notifier/internal/repository"
	"github.com/wishfox/notifier/internal/telegram"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the worker constructor signature clean.
type MetricHooks struct {
	OnSent       func(typ domain.NotificationType, latency time.Duration)
	OnSuppressed func(typ domain.NotificationType)
	OnStalled    func(typ domain.NotificationType)
}

// Pool manages the lifecycle of all delivery workers.
// All workers are identical and share the same queue; no notification has
// affinity to a specific worker.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

func NewPool(
	cfg *config.Config,
	q *queue.Queue,
	store repository.NotificationRepository,
	directory repository.DirectoryRepository,
	sender telegram.Sender,
	limiter *ratelimiter.SendLimiter,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	backoff := Backoff{
		Attempts: cfg.SendAttempts,
		Initial:  cfg.SendBackoff,
		Cap:      cfg.SendBackoffCap,
	}

	workers := make([]*Worker, cfg.Workers)
	for i := range workers {
		workers[i] = NewWorker(
			i, q, store, directory, sender, limiter,
			backoff, cfg.SendTimeout,
			logger.With(zap.Int("worker_id", i)),
			hooks,
		)
	}

	return &Pool{workers: workers}
}

// Start launches all workers as goroutines.
// The provided ctx is forwarded to every worker; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Call this after cancelling the context to ensure in-flight deliveries finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}
