package main

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/dramirezh/tienda-backend/api/routes"
	authsvc "github.com/dramirezh/tienda-backend/internal/auth"
	cartsvc "github.com/dramirezh/tienda-backend/internal/cart"
	catalogsvc "github.com/dramirezh/tienda-backend/internal/catalog"
	checkoutsvc "github.com/dramirezh/tienda-backend/internal/checkout"
	orderssvc "github.com/dramirezh/tienda-backend/internal/orders"
	"github.com/dramirezh/tienda-backend/internal/pricing"
	"github.com/dramirezh/tienda-backend/internal/users"
	"github.com/dramirezh/tienda-backend/pkg/config"
	"github.com/dramirezh/tienda-backend/pkg/db"
	"github.com/dramirezh/tienda-backend/pkg/logger"
	"github.com/dramirezh/tienda-backend/pkg/metrics"
	"github.com/dramirezh/tienda-backend/pkg/migrate"
	pkgredis "github.com/dramirezh/tienda-backend/pkg/redis"
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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := closeClients(redisClient, dbClient); cerr != nil {
			logg.Error(context.Background(), "error closing clients", cerr)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	pricer, err := pricing.NewCalculator(cfg.Pricing)
	if err != nil {
		logg.Error(context.Background(), "failed to build pricing calculator", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	catalogRepo := catalogsvc.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	ordersRepo := orderssvc.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:    userRepo,
		JWTConfig:   cfg.JWT,
		PasswordCfg: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalogsvc.NewService(catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService := cartsvc.NewService(cartRepo, catalogRepo, userRepo)
	ordersService := orderssvc.NewService(ordersRepo)
	checkoutService := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Tx:       dbClient,
		Carts:    cartRepo,
		CartSvc:  cartService,
		Orders:   ordersRepo,
		Products: catalogRepo,
		Pricer:   pricer,
		Metrics:  checkoutMetrics,
		Log:      logg,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Registry: registry,
			Auth:     authService,
			Catalog:  catalogService,
			Cart:     cartService,
			Checkout: checkoutService,
			Orders:   ordersService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// closeClients shuts every client down, keeping all errors rather than the
// first one.
func closeClients(closers ...io.Closer) error {
	var errs error
	for _, c := range closers {
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}
