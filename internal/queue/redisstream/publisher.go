package redisstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"walletledger/internal/models"
	"walletledger/internal/queue"

	"github.com/redis/go-redis/v9"
)

// Publisher appends ledger messages to Redis streams.
type Publisher struct {
	client *redis.Client
	maxLen int64
}

func NewPublisher(client *redis.Client, maxLen int64) *Publisher {
	return &Publisher{client: client, maxLen: maxLen}
}

func (p *Publisher) PublishNewTransaction(ctx context.Context, transactionID string) error {
	return p.Publish(ctx, queue.StreamNewTransactions, queue.RoutingKeyTransactionCreated,
		models.NewTransactionQueued{TransactionID: transactionID})
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, event models.TransactionStatusChanged) error {
	return p.Publish(ctx, queue.StreamStatusChanged, queue.RoutingKeyStatusChanged, event)
}

func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"type":      eventType,
			"payload":   payload,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
