package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielcastano/mercato-backend/api/controllers"
	"github.com/danielcastano/mercato-backend/api/routes"
	"github.com/danielcastano/mercato-backend/internal/auth"
	"github.com/danielcastano/mercato-backend/internal/cart"
	"github.com/danielcastano/mercato-backend/internal/catalog"
	"github.com/danielcastano/mercato-backend/internal/media"
	"github.com/danielcastano/mercato-backend/internal/orders"
	"github.com/danielcastano/mercato-backend/internal/users"
	"github.com/danielcastano/mercato-backend/pkg/config"
	"github.com/danielcastano/mercato-backend/pkg/db"
	"github.com/danielcastano/mercato-backend/pkg/logger"
	"github.com/danielcastano/mercato-backend/pkg/metrics"
	"github.com/danielcastano/mercato-backend/pkg/migrate"
	"github.com/danielcastano/mercato-backend/pkg/redis"
	"github.com/danielcastano/mercato-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	blobStore, err := gcs.NewClient(context.Background(), cfg.GCS, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cartRepo, catalogService, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	usersService, err := users.NewService(usersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(ordersRepo, cartRepo, catalogRepo, usersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	authService, err := auth.NewService(usersRepo, redisClient, cartService, cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	mediaService, err := media.NewService(blobStore, cfg.Media)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	httpMetrics := metrics.NewHTTPMetrics(registry)

	handler := routes.NewRouter(routes.Deps{
		Config:     cfg,
		Logger:     logg,
		Redis:      redisClient,
		Accounts:   usersRepo,
		Metrics:    httpMetrics,
		Registry:   registry,
		Health:     controllers.NewHealthController(logg, dbClient, redisClient),
		Auth:       controllers.NewAuthController(authService, logg),
		Cart:       controllers.NewCartController(cartService, logg),
		Orders:     controllers.NewOrderController(ordersService, logg),
		ShopOrders: controllers.NewShopOrderController(ordersService, catalogService, logg),
		Addresses:  controllers.NewAddressController(usersService, logg),
		Catalog:    controllers.NewCatalogController(catalogService, logg),
		Media:      controllers.NewMediaController(mediaService, logg),
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
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
	}
}
