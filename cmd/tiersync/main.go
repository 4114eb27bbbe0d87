package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/ManuelReschke/tiersync/app/controllers"
	"github.com/ManuelReschke/tiersync/app/repository"
	"github.com/ManuelReschke/tiersync/internal/pkg/billing"
	"github.com/ManuelReschke/tiersync/internal/pkg/cache"
	"github.com/ManuelReschke/tiersync/internal/pkg/config"
	"github.com/ManuelReschke/tiersync/internal/pkg/database"
	"github.com/ManuelReschke/tiersync/internal/pkg/env"
	"github.com/ManuelReschke/tiersync/internal/pkg/logger"
	"github.com/ManuelReschke/tiersync/internal/pkg/router"
	"github.com/ManuelReschke/tiersync/internal/pkg/supabase"
)

const bodyLimit = 1 << 20

func main() {
	if _, err := env.SetupEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newSubscriberStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("subscriber store setup failed", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeStore()

	app := NewApplication(cfg, store, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr()), zap.String("store", store.Backend()))
		errCh <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}
}

// NewApplication builds the fiber app with the webhook and operational routes.
func NewApplication(cfg config.Config, store repository.SubscriberRepository, log *zap.Logger) *fiber.App {
	customers := billing.NewStripeCustomers(cfg.Stripe.SecretKey, cfg.Stripe.APIURL)
	tiers := billing.NewTierMap(cfg.Tiers.Products, cfg.Tiers.Default)
	service := billing.NewService(customers, store, tiers, log)
	webhook := controllers.NewWebhookController(billing.NewWebhookVerifier(cfg.Stripe.WebhookSecret), service, log)

	app := fiber.New(fiber.Config{
		BodyLimit:             bodyLimit,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		DisableStartupMessage: true,
	})

	// recovery and logging
	app.Use(recover.New(), fiberlogger.New())

	router.InstallRouter(app, webhook)

	log.Info("application ready", zap.Int("tier_mappings", tiers.Len()), zap.String("default_tier", tiers.Fallback()))
	return app
}

// newSubscriberStore opens the backend named by SUBSCRIBER_STORE. The returned
// func releases its connections.
func newSubscriberStore(ctx context.Context, cfg config.Config, log *zap.Logger) (repository.SubscriberRepository, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case repository.BackendSupabase:
		store, err := supabase.NewStore(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case repository.BackendPostgres, repository.BackendMySQL:
		db, err := database.SetupDatabase(cfg.Store.Backend, cfg.Store.DatabaseDSN, log)
		if err != nil {
			return nil, noop, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repository.NewSubscriberRepository(db, cfg.Store.Backend), closeDB, nil
	case repository.BackendRedis:
		client, err := cache.SetupCache(ctx, cfg.CacheAddr(), cfg.Store.CachePassword, log)
		if err != nil {
			return nil, noop, err
		}
		return repository.NewRedisSubscriberRepository(client), func() { _ = client.Close() }, nil
	case repository.BackendMemory:
		log.Warn("using in-memory subscriber store; records are lost on restart")
		return repository.NewMemorySubscriberRepository(), noop, nil
	default:
		return nil, noop, errors.New("unknown subscriber store " + cfg.Store.Backend)
	}
}
