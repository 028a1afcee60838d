package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/angelmondragon/chieftain/api/routes"
	"github.com/angelmondragon/chieftain/internal/catalog"
	"github.com/angelmondragon/chieftain/internal/orders"
	"github.com/angelmondragon/chieftain/internal/session"
	"github.com/angelmondragon/chieftain/pkg/config"
	"github.com/angelmondragon/chieftain/pkg/gateway"
	"github.com/angelmondragon/chieftain/pkg/gateway/memory"
	"github.com/angelmondragon/chieftain/pkg/instance"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/metrics"
	"github.com/angelmondragon/chieftain/pkg/pricing"
	"github.com/angelmondragon/chieftain/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Instance:    instance.ID(),
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

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

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gw, err := newGateway(cfg, logg, metrics.NewGatewayMetrics(reg))
	if err != nil {
		logg.Error(context.Background(), "failed to build gateway", err)
		os.Exit(1)
	}

	sessions, err := session.NewRegistry(gw, redisClient, logg, session.Options{
		FallbackTTL: cfg.Session.FallbackTTL,
		Strict:      cfg.App.Strict(),
		Policy:      pricing.FromConfig(cfg.Pricing),
		Metrics:     metrics.NewCheckoutMetrics(reg),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session registry", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(gw, redisClient, cfg.Catalog.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(gw, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"gateway_mode": cfg.Gateway.Mode,
		"strict":       cfg.App.Strict(),
	})
	logg.Info(ctx, "starting storefront server")

	handler := routes.NewRouter(cfg, logg, redisClient, sessions, catalogService, ordersService,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	server := &http.Server{
		Addr:    addr,
		Handler: otelhttp.NewHandler(handler, "storefront"),
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "storefront server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down storefront server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}

func newGateway(cfg *config.Config, logg *logger.Logger, gm *metrics.GatewayMetrics) (gateway.Gateway, error) {
	if !cfg.Gateway.IsMemory() {
		return gateway.NewClient(gateway.ClientOptions{
			BaseURL:            cfg.Gateway.BaseURL,
			Timeout:            cfg.Gateway.Timeout,
			BreakerMaxFailures: cfg.Gateway.BreakerMaxFailures,
			BreakerOpenTimeout: cfg.Gateway.BreakerOpenTimeout,
			Metrics:            gm,
			Logger:             logg,
		})
	}

	opts := memory.Options{Secret: cfg.Gateway.MemorySecret, TokenTTL: cfg.Session.FallbackTTL}
	if cfg.Gateway.SeedFile == "" {
		logg.Warn(context.Background(), "using in-memory gateway with the built-in catalog")
		return memory.NewDefault(opts)
	}
	seed, err := memory.LoadSeedFile(cfg.Gateway.SeedFile)
	if err != nil {
		return nil, err
	}
	logg.Warn(logg.WithField(context.Background(), "seed_file", cfg.Gateway.SeedFile), "using in-memory gateway")
	return memory.New(seed, opts)
}
