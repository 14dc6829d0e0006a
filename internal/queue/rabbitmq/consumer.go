package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	"walletledger/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Consumer reads one queue with manual acknowledgement.
type Consumer struct {
	channel  *amqp.Channel
	queue    string
	tag      string
	prefetch int
}

func NewConsumer(ch *amqp.Channel, queueName, tag string, prefetch int) *Consumer {
	if prefetch <= 0 {
		prefetch = 1
	}
	return &Consumer{channel: ch, queue: queueName, tag: tag, prefetch: prefetch}
}

func (c *Consumer) Consume(ctx context.Context, handler queue.Handler) error {
	// The broker sends at most prefetch unacknowledged deliveries at a time.
	if err := c.channel.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		c.tag,   // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	notifyClose := c.channel.NotifyClose(make(chan *amqp.Error, 1))
	log.Info().Str("queue", c.queue).Str("consumer", c.tag).Msg("consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-notifyClose:
			if amqpErr != nil {
				return fmt.Errorf("rabbitmq channel closed: %w", amqpErr)
			}
			return errors.New("rabbitmq channel closed")
		case d, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			c.handle(ctx, d, handler)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery, handler queue.Handler) {
	err := handler(ctx, d.Body)

	switch queue.DispositionFor(err) {
	case queue.Ack:
		if err := d.Ack(false); err != nil {
			log.Error().Err(err).Str("queue", c.queue).Msg("failed to ack delivery")
		}
	case queue.Drop:
		log.Warn().Err(err).Str("queue", c.queue).Bytes("body", d.Body).Msg("dropping malformed delivery")
		if err := d.Nack(false, false); err != nil {
			log.Error().Err(err).Str("queue", c.queue).Msg("failed to nack delivery")
		}
	case queue.Requeue:
		log.Warn().Err(err).Str("queue", c.queue).Msg("delivery failed, requeueing")
		if err := d.Nack(false, true); err != nil {
			log.Error().Err(err).Str("queue", c.queue).Msg("failed to nack delivery")
		}
	}
}
