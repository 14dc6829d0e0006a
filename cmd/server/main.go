// Package main runs the ledger HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walletledger/internal/config"
	"walletledger/internal/handlers"
	"walletledger/internal/metrics"
	"walletledger/internal/middleware"
	"walletledger/internal/queue/broker"
	"walletledger/internal/repositories"
	"walletledger/internal/repositories/cache"
	"walletledger/internal/routes"
	"walletledger/internal/services/transaction"
	"walletledger/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	config.SetupLogger(cfg)

	db, err := repositories.InitDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer repositories.CloseDB(db)

	redisClient := cache.NewRedisClient(cfg.Redis)
	if err := cache.HealthCheck(context.Background(), redisClient); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	cacheService := cache.NewCacheService(redisClient, cfg.CacheNamespace, wallet.DefaultCacheDuration)
	defer cacheService.Close()

	b, err := broker.Open(cfg, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open queue broker")
	}
	defer b.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	uow := repositories.NewUnitOfWork(db)
	walletService := wallet.NewService(
		repositories.NewWalletRepository(db),
		uow,
		cacheService,
		wallet.Config{},
		collector,
	)
	transactionService := transaction.NewService(
		repositories.NewTransactionRepository(db),
		repositories.NewOutboxRepository(db),
		uow,
		b.Publisher(),
		collector,
	)

	app := fiber.New(fiber.Config{
		AppName:      "walletledger",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Use("/api/transactions", limiter.New(limiter.Config{
		Max:        config.GetIntEnv("RATE_LIMIT_PER_MINUTE", 60),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	routes.SetupRoutes(app, routes.Dependencies{
		Auth:         middleware.NewAuthMiddleware(cfg.JWTSecret),
		Wallets:      handlers.NewWalletHandler(walletService),
		Transactions: handlers.NewTransactionHandler(transactionService, walletService),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error {
				return cache.HealthCheck(ctx, redisClient)
			},
		}),
		Metrics: collector.Handler(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http server shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("starting http server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("http server stopped")
	}
}
