package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/remitkit/remitroute/internal/orders"
	"github.com/remitkit/remitroute/internal/reconcile"
	"github.com/remitkit/remitroute/internal/vendors"
	"github.com/remitkit/remitroute/pkg/config"
	"github.com/remitkit/remitroute/pkg/db"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/metrics"
	"github.com/remitkit/remitroute/pkg/migrate"
	"github.com/remitkit/remitroute/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "reconcile-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "reconcile-worker"

	logg = logger.New(logger.Options{
		ServiceName: "reconcile-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry, err := vendors.BuildRegistry(cfg.Vendors, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build vendor registry", err)
		os.Exit(1)
	}

	vendorResolver, err := vendors.NewResolver(vendors.NewRepository(dbClient.DB()), registry)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor resolver", err)
		os.Exit(1)
	}

	reconcileMetrics := metrics.NewReconcileMetrics(prometheus.DefaultRegisterer)

	reconciler, err := reconcile.NewReconciler(reconcile.ReconcilerParams{
		Orders:  orders.NewRepository(dbClient.DB()),
		Vendors: vendorResolver,
		Logger:  logg,
		Metrics: reconcileMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciler", err)
		os.Exit(1)
	}

	worker, err := reconcile.NewWorker(reconcile.WorkerParams{
		Reconciler: reconciler,
		Locker:     redisClient,
		Config:     cfg.Reconcile,
		Logger:     logg,
		Metrics:    reconcileMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"serviceKind":   cfg.Service.Kind,
		"poll_interval": cfg.Reconcile.PollInterval.String(),
		"vendors":       registry.Slugs(),
	})
	logg.Info(ctx, "starting reconcile worker")

	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "reconcile worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "reconcile worker shutting down gracefully")
}
