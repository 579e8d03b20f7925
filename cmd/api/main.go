package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/remitkit/remitroute/api/routes"
	"github.com/remitkit/remitroute/internal/assignment"
	"github.com/remitkit/remitroute/internal/orders"
	"github.com/remitkit/remitroute/internal/vendors"
	"github.com/remitkit/remitroute/pkg/config"
	"github.com/remitkit/remitroute/pkg/db"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/migrate"
	"github.com/remitkit/remitroute/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	vendorRepo := vendors.NewRepository(dbClient.DB())
	if err := vendors.SeedRegistered(context.Background(), vendorRepo, registry, cfg.Vendors); err != nil {
		logg.Error(context.Background(), "failed to seed vendor records", err)
		os.Exit(1)
	}

	vendorResolver, err := vendors.NewResolver(vendorRepo, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor resolver", err)
		os.Exit(1)
	}

	assignService, err := assignment.NewService(assignment.ServiceParams{
		Orders:  orders.NewRepository(dbClient.DB()),
		Vendors: vendorResolver,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create assignment service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"vendors": registry.Slugs(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, assignService, vendorResolver),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error shutting down api server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
