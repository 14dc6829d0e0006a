// Package main runs the settlement worker. It consumes new-transaction
// messages and settles each one against wallet balances.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"walletledger/internal/config"
	"walletledger/internal/metrics"
	"walletledger/internal/queue"
	"walletledger/internal/queue/broker"
	"walletledger/internal/repositories"
	"walletledger/internal/repositories/cache"
	"walletledger/internal/services/transaction"
	"walletledger/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
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
	collector := metrics.NewCollector(reg)

	uow := repositories.NewUnitOfWork(db)
	transactions := repositories.NewTransactionRepository(db)
	walletService := wallet.NewService(repositories.NewWalletRepository(db), uow, cacheService, wallet.Config{}, collector)
	outbox := repositories.NewOutboxRepository(db)
	publisher := b.Publisher()
	transactionService := transaction.NewService(transactions, outbox, uow, publisher, collector)

	processor := transaction.NewProcessor(transaction.ProcessorConfig{
		Transactions:  transactions,
		UnitOfWork:    uow,
		Wallets:       walletService,
		Statuses:      transactionService,
		Metrics:       collector,
		SettleTimeout: config.GetDurationEnv("SETTLE_TIMEOUT", transaction.DefaultSettleTime),
	})

	consumer, err := b.Consumer(broker.SettlementRoute, config.GetIntEnv("WORKER_PREFETCH", 1))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create settlement consumer")
	}

	metricsApp := fiber.New(fiber.Config{DisableStartupMessage: true})
	metricsApp.Get("/metrics", collector.Handler())
	metricsPort := config.GetEnv("METRICS_PORT", "9101")
	go func() {
		if err := metricsApp.Listen(":" + metricsPort); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	defer metricsApp.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relay := transaction.NewRelay(transaction.RelayConfig{
		Outbox:    outbox,
		Publisher: publisher,
		Metrics:   collector,
		Interval:  config.GetDurationEnv("RELAY_INTERVAL", transaction.DefaultRelayInterval),
		MinAge:    config.GetDurationEnv("RELAY_MIN_AGE", transaction.DefaultRelayMinAge),
	})
	go relay.Run(ctx)

	log.Info().Str("consumer", cfg.ConsumerName).Str("driver", cfg.QueueDriver).Msg("settlement worker started")

	err = consumer.Consume(ctx, func(ctx context.Context, body []byte) error {
		transactionID, err := queue.DecodeNewTransaction(body)
		if err != nil {
			log.Warn().Err(err).Msg("dropping malformed settlement message")
			return err
		}
		return processor.ProcessTransaction(ctx, transactionID)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("settlement consumer stopped")
		return
	}
	log.Info().Msg("settlement worker stopped")
}
