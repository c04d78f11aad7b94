package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/storefrontlabs/storefront-backend/api"
	"github.com/storefrontlabs/storefront-backend/api/routes"
	"github.com/storefrontlabs/storefront-backend/internal/auth"
	"github.com/storefrontlabs/storefront-backend/internal/cart"
	"github.com/storefrontlabs/storefront-backend/internal/orders"
	product "github.com/storefrontlabs/storefront-backend/internal/products"
	"github.com/storefrontlabs/storefront-backend/internal/reviews"
	"github.com/storefrontlabs/storefront-backend/internal/shippers"
	"github.com/storefrontlabs/storefront-backend/internal/users"
	"github.com/storefrontlabs/storefront-backend/pkg/auth/session"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/ids"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/metrics"
	"github.com/storefrontlabs/storefront-backend/pkg/migrate"
	"github.com/storefrontlabs/storefront-backend/pkg/redis"
	"github.com/storefrontlabs/storefront-backend/pkg/storedproc"
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
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	runner := storedproc.NewRunner(cfg.StoredProc, logg, metrics.NewStoredProcMetrics(registry))

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	productRepo := product.NewRepository(conn)

	svc := routes.Services{}
	if svc.Auth, err = auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		Users:          userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	}); err != nil {
		return err
	}
	if svc.Orders, err = orders.NewService(orders.ServiceParams{
		DB:     dbClient,
		Repo:   orders.NewRepository(conn),
		Roles:  userRepo,
		Runner: runner,
	}); err != nil {
		return err
	}
	if svc.Reviews, err = reviews.NewService(reviews.ServiceParams{
		DB:     dbClient,
		Repo:   reviews.NewRepository(conn),
		Runner: runner,
	}); err != nil {
		return err
	}
	if svc.Cart, err = cart.NewService(cart.NewRepository(conn), runner); err != nil {
		return err
	}
	if svc.Shippers, err = shippers.NewService(shippers.NewRepository(conn), userRepo); err != nil {
		return err
	}
	if svc.Products, err = product.NewService(productRepo, dbClient, ids.UUID{}); err != nil {
		return err
	}
	if svc.Catalog, err = product.NewCatalog(productRepo); err != nil {
		return err
	}

	handler := routes.NewRouter(cfg, logg, routes.Deps{
		DB:       dbClient,
		Redis:    redisClient,
		Sessions: sessionManager,
		Registry: registry,
	}, svc)

	server := api.NewServer(cfg, os.Getenv("PORT"), handler)
	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   server.Addr,
		"driver": cfg.DB.Driver,
	}), "starting api server")

	return api.Serve(ctx, server, cfg.App.ShutdownTimeout, logg)
}
