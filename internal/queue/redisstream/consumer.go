package redisstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"walletledger/internal/queue"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type ConsumerConfig struct {
	Stream        string
	Group         string
	Consumer      string
	BatchSize     int64
	BlockDuration time.Duration
	// ClaimIdle is how long a delivery may stay unacknowledged before another
	// consumer of the group takes it over.
	ClaimIdle time.Duration
}

// Consumer reads a stream through a consumer group. Failed deliveries stay
// pending and are reclaimed once idle.
type Consumer struct {
	client *redis.Client
	cfg    ConsumerConfig
}

func NewConsumer(client *redis.Client, cfg ConsumerConfig) *Consumer {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10
	}
	if cfg.BlockDuration == 0 {
		cfg.BlockDuration = 5 * time.Second
	}
	if cfg.ClaimIdle == 0 {
		cfg.ClaimIdle = time.Minute
	}
	return &Consumer{client: client, cfg: cfg}
}

func (c *Consumer) Consume(ctx context.Context, handler queue.Handler) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().Str("stream", c.cfg.Stream).Str("group", c.cfg.Group).Str("consumer", c.cfg.Consumer).Msg("consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.reclaim(ctx, handler); err != nil {
			log.Error().Err(err).Str("stream", c.cfg.Stream).Msg("failed to reclaim pending messages")
		}
		if err := c.read(ctx, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Str("stream", c.cfg.Stream).Msg("failed to read messages")
			time.Sleep(time.Second)
		}
	}
}

func (c *Consumer) read(ctx context.Context, handler queue.Handler) error {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, ">"},
		Count:    c.cfg.BatchSize,
		Block:    c.cfg.BlockDuration,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			c.handle(ctx, msg, handler)
		}
	}
	return nil
}

func (c *Consumer) reclaim(ctx context.Context, handler queue.Handler) error {
	msgs, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.cfg.Stream,
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		MinIdle:  c.cfg.ClaimIdle,
		Start:    "0",
		Count:    c.cfg.BatchSize,
	}).Result()
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		c.handle(ctx, msg, handler)
	}
	return nil
}

func (c *Consumer) handle(ctx context.Context, msg redis.XMessage, handler queue.Handler) {
	err := handler(ctx, payloadOf(msg))

	switch queue.DispositionFor(err) {
	case queue.Requeue:
		// Left pending; reclaim picks it up after ClaimIdle.
		log.Warn().Err(err).Str("message_id", msg.ID).Msg("message failed, leaving pending")
		return
	case queue.Drop:
		log.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping malformed message")
	}

	if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msg.ID).Err(); err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("failed to ack message")
	}
}

func payloadOf(msg redis.XMessage) []byte {
	switch v := msg.Values["payload"].(type) {
	case string:
		return []byte(v)
	case []byte:
		return v
	default:
		return nil
	}
}
