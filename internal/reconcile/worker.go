package reconcile

import (
	"context"
	"time"

	"github.com/remitkit/remitroute/pkg/config"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/metrics"
	"github.com/remitkit/remitroute/pkg/redis"
)

const lockScope = "reconcile"

// Worker runs reconcile passes on a timer, serialized across replicas by a
// Redis lock.
type Worker struct {
	reconciler *Reconciler
	locker     redis.Locker
	cfg        config.ReconcileConfig
	logg       *logger.Logger
	metrics    *metrics.ReconcileMetrics
}

// WorkerParams groups dependencies for the reconcile worker.
type WorkerParams struct {
	Reconciler *Reconciler
	Locker     redis.Locker
	Config     config.ReconcileConfig
	Logger     *logger.Logger
	Metrics    *metrics.ReconcileMetrics
}

// NewWorker builds the reconcile worker.
func NewWorker(params WorkerParams) (*Worker, error) {
	if params.Reconciler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reconciler is required")
	}
	if params.Locker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "locker is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	cfg := params.Config
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	return &Worker{
		reconciler: params.Reconciler,
		locker:     params.Locker,
		cfg:        cfg,
		logg:       params.Logger,
		metrics:    params.Metrics,
	}, nil
}

// Start runs reconcile passes until ctx is cancelled. One pass runs
// immediately, then on every tick.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick attempts one locked reconcile pass. When another replica holds the
// lock the pass is skipped.
func (w *Worker) Tick(ctx context.Context) {
	key := w.locker.LockKey(lockScope)
	acquired, err := w.locker.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), w.cfg.LockTTL)
	if err != nil {
		w.metrics.IncFailure(lockScope)
		w.logg.Error(ctx, "acquiring reconcile lock", err)
		return
	}
	if !acquired {
		w.logg.Info(ctx, "reconcile lock held elsewhere, skipping pass")
		return
	}
	defer func() {
		if err := w.locker.Del(context.WithoutCancel(ctx), key); err != nil {
			w.logg.Error(ctx, "releasing reconcile lock", err)
		}
	}()

	started := time.Now()
	summary, err := w.reconciler.Run(ctx, w.cfg.BatchSize)
	w.metrics.ObserveDuration(lockScope, time.Since(started))
	if err != nil {
		w.metrics.IncFailure(lockScope)
		w.logg.Error(ctx, "reconcile pass failed", err)
		return
	}
	w.metrics.IncSuccess(lockScope)
	w.logg.Info(w.logg.WithFields(ctx, map[string]any{
		"polled":   summary.Polled,
		"settled":  summary.Settled,
		"pending":  summary.Pending,
		"failures": summary.Failures,
	}), "reconcile pass complete")
}
