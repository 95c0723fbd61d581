package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/pharmalink/pharmacy-pos/api/routes"
	"github.com/pharmalink/pharmacy-pos/internal/auth"
	"github.com/pharmalink/pharmacy-pos/internal/backend"
	"github.com/pharmalink/pharmacy-pos/internal/cart"
	"github.com/pharmalink/pharmacy-pos/internal/dashboard"
	"github.com/pharmalink/pharmacy-pos/internal/inventory"
	"github.com/pharmalink/pharmacy-pos/internal/onboarding"
	"github.com/pharmalink/pharmacy-pos/internal/orders"
	"github.com/pharmalink/pharmacy-pos/internal/pos"
	"github.com/pharmalink/pharmacy-pos/internal/profile"
	"github.com/pharmalink/pharmacy-pos/pkg/auth/session"
	"github.com/pharmalink/pharmacy-pos/pkg/config"
	"github.com/pharmalink/pharmacy-pos/pkg/instance"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
	"github.com/pharmalink/pharmacy-pos/pkg/metrics"
	"github.com/pharmalink/pharmacy-pos/pkg/storage/kv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "pharmacy-pos"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pharmacy-pos",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "pharmacy-pos stopped", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	store, err := kv.Open(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	sessions, err := session.NewManager(store.Store)
	if err != nil {
		return err
	}
	if err := sessions.Restore(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "session.restore_failed")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := backend.New(cfg.Backend, metrics.NewBackendMetrics(reg), logg)
	if err != nil {
		return err
	}

	cartHandle := cart.NewHandle()

	authService, err := auth.NewService(auth.ServiceParams{
		Repo:    auth.NewRepository(client),
		Session: sessions,
		Cart:    cartHandle,
	})
	if err != nil {
		return err
	}
	client.OnUnauthorized(func(ctx context.Context, token string) {
		if err := authService.SessionRejected(ctx, token); err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "session.reject_failed")
		}
	})
	onboardingService, err := onboarding.NewService(store.Store, sessions)
	if err != nil {
		return err
	}
	dashboardService, err := dashboard.NewService(dashboard.NewRepository(client))
	if err != nil {
		return err
	}
	inventoryRepo := inventory.NewRepository(client)
	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:              inventoryRepo,
		LowStockThreshold: cfg.POS.LowStockThreshold,
		Logger:            logg,
	})
	if err != nil {
		return err
	}
	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(client),
		PageSize: cfg.Orders.PageSize,
	})
	if err != nil {
		return err
	}
	posService, err := pos.NewService(pos.ServiceParams{
		Inventory:      inventoryRepo,
		Sales:          pos.NewRepository(client),
		Cart:           cartHandle,
		Metrics:        metrics.NewCheckoutMetrics(reg),
		PaymentMethods: cfg.POS.PaymentMethods,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	profileService, err := profile.NewService(profile.ServiceParams{
		Repo:    profile.NewRepository(client),
		Session: sessions,
	})
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			store.Pinger,
			sessions,
			store.Counter,
			store.Store,
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			authService,
			onboardingService,
			dashboardService,
			inventoryService,
			ordersService,
			posService,
			profileService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"store_driver": cfg.Store.Driver,
		"backend":      cfg.Backend.BaseURL,
		"instance":     instance.ID(),
	})
	logg.Info(logCtx, "starting pharmacy-pos api")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down pharmacy-pos api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
