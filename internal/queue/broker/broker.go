// Package broker opens the queue transport selected by QUEUE_DRIVER and
// hands out publishers and consumers bound to the ledger topology.
package broker

import (
	"fmt"

	"walletledger/internal/config"
	"walletledger/internal/queue"
	"walletledger/internal/queue/rabbitmq"
	"walletledger/internal/queue/redisstream"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// streamMaxLen bounds each Redis stream.
const streamMaxLen = 100000

// Route names where a consumer reads from on either transport.
type Route struct {
	Queue      string
	RoutingKey string
	Stream     string
	Group      string
}

var (
	SettlementRoute = Route{
		Queue:      queue.SettlementQueue,
		RoutingKey: queue.RoutingKeyTransactionCreated,
		Stream:     queue.StreamNewTransactions,
		Group:      "settlement",
	}
	AuditRoute = Route{
		Queue:      queue.AuditQueue,
		RoutingKey: queue.RoutingKeyStatusChanged,
		Stream:     queue.StreamStatusChanged,
		Group:      "audit",
	}
)

type Broker struct {
	driver   string
	consumer string
	redis    *redis.Client
	conn     *amqp.Connection
	channel  *amqp.Channel
}

// Open connects to the configured transport. The Redis client is only used
// with the redis driver and stays owned by the caller.
func Open(cfg *config.Config, redisClient *redis.Client) (*Broker, error) {
	b := &Broker{driver: cfg.QueueDriver, consumer: cfg.ConsumerName, redis: redisClient}

	switch cfg.QueueDriver {
	case config.QueueDriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis queue driver needs a redis client")
		}
	case config.QueueDriverRabbitMQ:
		conn, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to open channel: %w", err)
		}
		if err := rabbitmq.DeclareExchange(ch); err != nil {
			conn.Close()
			return nil, err
		}
		b.conn, b.channel = conn, ch
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.QueueDriver)
	}

	log.Info().Str("driver", cfg.QueueDriver).Msg("queue broker ready")
	return b, nil
}

func (b *Broker) Publisher() queue.Publisher {
	if b.driver == config.QueueDriverRedis {
		return redisstream.NewPublisher(b.redis, streamMaxLen)
	}
	return rabbitmq.NewPublisher(b.channel)
}

// Consumer declares the route on the broker and returns a consumer for it.
func (b *Broker) Consumer(route Route, prefetch int) (queue.Consumer, error) {
	if b.driver == config.QueueDriverRedis {
		return redisstream.NewConsumer(b.redis, redisstream.ConsumerConfig{
			Stream:    route.Stream,
			Group:     route.Group,
			Consumer:  b.consumer,
			BatchSize: int64(prefetch),
		}), nil
	}

	if err := rabbitmq.DeclareQueue(b.channel, route.Queue, route.RoutingKey); err != nil {
		return nil, err
	}
	return rabbitmq.NewConsumer(b.channel, route.Queue, b.consumer, prefetch), nil
}

func (b *Broker) Close() {
	if b.channel != nil {
		if err := b.channel.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close rabbitmq channel")
		}
	}
	if b.conn != nil {
		if err := b.conn.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close rabbitmq connection")
		}
	}
}
