package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"walletledger/internal/models"
	"walletledger/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

type Publisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{channel: ch, exchange: queue.Exchange}
}

func (p *Publisher) PublishNewTransaction(ctx context.Context, transactionID string) error {
	return p.Publish(ctx, queue.RoutingKeyTransactionCreated, models.NewTransactionQueued{TransactionID: transactionID})
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, event models.TransactionStatusChanged) error {
	return p.Publish(ctx, queue.RoutingKeyStatusChanged, event)
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, body interface{}) error {
	bytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         bytes,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Str("routing_key", routingKey).Msg("message published")
	return nil
}
