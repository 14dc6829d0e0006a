package transaction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"walletledger/internal/models"
	"walletledger/internal/queue"
	"walletledger/internal/repositories"

	"github.com/rs/zerolog/log"
)

// outbox records queue messages inside a session and publishes them once
// the session commits. Messages whose publish fails stay stored for the
// Relay.
type outbox struct {
	repo      repositories.OutboxRepository
	publisher queue.Publisher
	metrics   MetricsCollector
}

func (o *outbox) stage(ctx context.Context, sess *repositories.Session, kind string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", kind, err)
	}

	msg := &models.OutboxMessage{Kind: kind, Payload: string(body)}
	if err := o.repo.Add(ctx, sess, msg); err != nil {
		return err
	}

	sess.AfterCommit(func(ctx context.Context) {
		if err := o.deliver(ctx, *msg); err != nil {
			log.Warn().Err(err).Uint("outbox_id", msg.ID).Str("kind", kind).Msg("outbox delivery deferred to relay")
		}
	})
	return nil
}

// deliver publishes msg and removes it from the outbox.
func (o *outbox) deliver(ctx context.Context, msg models.OutboxMessage) error {
	var err error
	switch msg.Kind {
	case models.OutboxNewTransaction:
		var queued models.NewTransactionQueued
		if err = decode(msg, &queued); err == nil {
			err = o.publishNew(ctx, queued.TransactionID)
		}
	case models.OutboxStatusChanged:
		var event models.TransactionStatusChanged
		if err = decode(msg, &event); err == nil {
			err = o.publishStatus(ctx, event)
		}
	default:
		err = fmt.Errorf("%w: unknown outbox kind %q", queue.ErrMalformedMessage, msg.Kind)
	}

	switch queue.DispositionFor(err) {
	case queue.Requeue:
		return err
	case queue.Drop:
		log.Error().Err(err).Uint("outbox_id", msg.ID).Msg("discarding undeliverable outbox message")
	}
	return o.repo.Delete(ctx, msg.ID)
}

func decode(msg models.OutboxMessage, v interface{}) error {
	if err := json.Unmarshal([]byte(msg.Payload), v); err != nil {
		return fmt.Errorf("%w: outbox message %d: %v", queue.ErrMalformedMessage, msg.ID, err)
	}
	return nil
}

func (o *outbox) publishNew(ctx context.Context, transactionID string) error {
	if err := o.publisher.PublishNewTransaction(ctx, transactionID); err != nil {
		o.metrics.RecordError("publish_transaction", "publish")
		return fmt.Errorf("failed to queue transaction %s: %w", transactionID, err)
	}
	return nil
}

func (o *outbox) publishStatus(ctx context.Context, event models.TransactionStatusChanged) error {
	if err := o.publisher.PublishStatusChanged(ctx, event); err != nil {
		o.metrics.RecordError("publish_status", "publish")
		return fmt.Errorf("failed to publish status of transaction %s: %w", event.TransactionID, err)
	}

	o.metrics.RecordStatusChange(event.TransactionStatus)
	log.Info().
		Str("transaction_id", event.TransactionID).
		Str("status", string(event.TransactionStatus)).
		Msg("transaction status changed")
	return nil
}

// Relay publishes outbox messages left behind by a failed or interrupted
// after-commit delivery.
type Relay struct {
	outbox   *outbox
	interval time.Duration
	minAge   time.Duration
	batch    int
	now      func() time.Time
}

func NewRelay(config RelayConfig) *Relay {
	if config.Outbox == nil {
		panic("outbox repository is required")
	}
	if config.Publisher == nil {
		panic("publisher is required")
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetricsCollector{}
	}
	if config.Interval <= 0 {
		config.Interval = DefaultRelayInterval
	}
	if config.MinAge <= 0 {
		config.MinAge = DefaultRelayMinAge
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultRelayBatch
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Relay{
		outbox:   &outbox{repo: config.Outbox, publisher: config.Publisher, metrics: config.Metrics},
		interval: config.Interval,
		minAge:   config.MinAge,
		batch:    config.BatchSize,
		now:      config.Now,
	}
}

// Flush publishes pending messages in order and stops at the first one the
// broker refuses. It returns how many were delivered.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	msgs, err := r.outbox.repo.Pending(ctx, r.now().Add(-r.minAge), r.batch)
	if err != nil {
		return 0, err
	}

	for i, msg := range msgs {
		if err := r.outbox.deliver(ctx, msg); err != nil {
			return i, err
		}
	}
	return len(msgs), nil
}

// Run flushes on every tick until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.Flush(ctx)
			if err != nil {
				log.Error().Err(err).Int("delivered", n).Msg("outbox relay sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int("delivered", n).Msg("outbox relay republished messages")
			}
		}
	}
}
