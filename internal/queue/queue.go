// Package queue carries ledger messages between the transaction management
// service, the settlement worker and downstream consumers. Delivery is
// at-least-once: a handler error leaves the message for redelivery.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"walletledger/internal/models"
)

// Topology
const (
	Exchange                     = "ledger_events"
	RoutingKeyTransactionCreated = "transaction.created"
	RoutingKeyStatusChanged      = "transaction.status_changed"
	SettlementQueue              = "transactions.settlement"
	AuditQueue                   = "transactions.audit"
	StreamNewTransactions        = "ledger:transactions:new"
	StreamStatusChanged          = "ledger:transactions:status"
)

// ErrMalformedMessage marks a delivery that can never be processed. It is
// dropped instead of redelivered.
var ErrMalformedMessage = errors.New("malformed message")

// Publisher sends ledger messages.
type Publisher interface {
	PublishNewTransaction(ctx context.Context, transactionID string) error
	PublishStatusChanged(ctx context.Context, event models.TransactionStatusChanged) error
}

// Handler processes one delivery body. A nil return acknowledges it.
type Handler func(ctx context.Context, body []byte) error

// Consumer feeds deliveries to a handler until ctx is done or the broker
// connection is lost.
type Consumer interface {
	Consume(ctx context.Context, handler Handler) error
}

// Disposition is what a consumer does with a delivery after its handler ran.
type Disposition int

const (
	Ack Disposition = iota
	Requeue
	Drop
)

// DispositionFor maps a handler result to a broker action.
func DispositionFor(err error) Disposition {
	switch {
	case err == nil:
		return Ack
	case errors.Is(err, ErrMalformedMessage):
		return Drop
	default:
		return Requeue
	}
}

// DecodeNewTransaction extracts the transaction id from a new-transaction
// payload.
func DecodeNewTransaction(body []byte) (string, error) {
	var msg models.NewTransactionQueued
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return msg.TransactionID, nil
}

// DecodeStatusChanged decodes a status-update payload.
func DecodeStatusChanged(body []byte) (models.TransactionStatusChanged, error) {
	var event models.TransactionStatusChanged
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if event.TransactionID == "" || !event.TransactionStatus.Valid() {
		return event, fmt.Errorf("%w: incomplete status event", ErrMalformedMessage)
	}
	return event, nil
}
