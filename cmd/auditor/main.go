// Package main runs the auditor, which records every transaction status
// change in MongoDB.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walletledger/internal/audit"
	"walletledger/internal/config"
	"walletledger/internal/handlers"
	"walletledger/internal/queue/broker"
	"walletledger/internal/repositories/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	config.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := audit.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	store := audit.NewMongoStore(client, cfg.Mongo.Database)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create audit indexes")
	}

	var redisClient *redis.Client
	if cfg.QueueDriver == config.QueueDriverRedis {
		redisClient = cache.NewRedisClient(cfg.Redis)
		defer redisClient.Close()
	}

	b, err := broker.Open(cfg, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open queue broker")
	}
	defer b.Close()

	consumer, err := b.Consumer(broker.AuditRoute, config.GetIntEnv("AUDIT_PREFETCH", 50))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create audit consumer")
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/health", handlers.NewHealthHandler(map[string]handlers.Pinger{
		"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}).HealthCheck)
	app.Get("/audit/transactions/:id", audit.HistoryHandler(store, config.GetDurationEnv("AUDIT_READ_TIMEOUT", 5*time.Second)))
	auditPort := config.GetEnv("AUDIT_PORT", "9102")
	go func() {
		if err := app.Listen(":" + auditPort); err != nil {
			log.Error().Err(err).Msg("audit http server stopped")
		}
	}()
	defer app.Shutdown()

	log.Info().Str("consumer", cfg.ConsumerName).Str("port", auditPort).Msg("auditor started")
	err = consumer.Consume(ctx, audit.Handler(store, config.GetDurationEnv("AUDIT_WRITE_TIMEOUT", 5*time.Second)))
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("audit consumer stopped")
		return
	}
	log.Info().Msg("auditor stopped")
}
