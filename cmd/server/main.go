package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wishfox/notifier/internal/api"
	"github.com/wishfox/notifier/internal/config"
	"github.com/wishfox/notifier/internal/db"
	"github.com/wishfox/notifier/internal/metrics"
	"github.com/wishfox/notifier/internal/queue"
	"github.com/wishfox/notifier/internal/ratelimiter"
	"github.com/wishfox/notifier/internal/repository"
	"github.com/wishfox/notifier/internal/service"
	"github.com/wishfox/notifier/internal/telegram"
	"github.com/wishfox/notifier/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	q := queue.New(cfg.QueueCapacity)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, q.Depth)
	store := repository.NewPgNotificationRepository(pool)
	directory := repository.NewPgDirectoryRepository(pool)
	sender := telegram.NewClient(cfg.TelegramBaseURL, cfg.BotToken, cfg.SendTimeout)
	limiter := ratelimiter.New(cfg.SendRate)
	svc := service.NewFanOutService(store, directory, q, cfg.BotName, logger, m.FanOutHook())

	// ---- delivery workers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	onSent, onSuppressed, onStalled := m.WorkerHooks()
	deliveryPool := worker.NewPool(cfg, q, store, directory, sender, limiter, logger, worker.MetricHooks{
		OnSent:       onSent,
		OnSuppressed: onSuppressed,
		OnStalled:    onStalled,
	})
	deliveryPool.Start(workerCtx)

	reconciler := worker.NewReconciler(store, q, cfg.ReconcileInterval, cfg.PendingAge, cfg.ClaimTimeout, logger)
	go reconciler.Run(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(svc, q, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests (and with them, new fan-outs).
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal all workers to stop pulling new queue items.
	cancelWorkers()

	// 3. Wait for in-flight deliveries to finish. Anything still claimed is
	//    picked up by the reconciler on the next start.
	deliveryPool.Wait()

	logger.Info("server stopped cleanly")
}
