// Package audit keeps an append-only record of every transaction status
// change published by the ledger.
package audit

import (
	"context"
	"fmt"
	"time"

	"walletledger/internal/models"
	"walletledger/internal/queue"

	"github.com/rs/zerolog/log"
)

// Entry is one observed status change.
type Entry struct {
	ID                string                   `bson:"_id" json:"id"`
	TransactionID     string                   `bson:"transaction_id" json:"transaction_id"`
	TransactionStatus models.TransactionStatus `bson:"transaction_status" json:"transaction_status"`
	FailureCode       *string                  `bson:"failure_code,omitempty" json:"failure_code,omitempty"`
	RecordedAt        time.Time                `bson:"recorded_at" json:"recorded_at"`
}

// EntryFor builds the entry of event. The id is derived from the event so a
// redelivered event maps to the same document, while Failed events carrying
// different codes stay distinct.
func EntryFor(event models.TransactionStatusChanged) Entry {
	id := fmt.Sprintf("%s:%s", event.TransactionID, event.TransactionStatus)
	var code *string
	if event.FailureCode != nil {
		c := *event.FailureCode
		code = &c
		id += ":" + c
	}

	return Entry{
		ID:                id,
		TransactionID:     event.TransactionID,
		TransactionStatus: event.TransactionStatus,
		FailureCode:       code,
	}
}

// Store persists audit entries. Save must treat an entry that already
// exists as success.
type Store interface {
	Save(ctx context.Context, entry Entry) error
	History(ctx context.Context, transactionID string) ([]Entry, error)
}

// Handler returns a queue handler that records status-update deliveries.
func Handler(store Store, timeout time.Duration) queue.Handler {
	return func(ctx context.Context, body []byte) error {
		event, err := queue.DecodeStatusChanged(body)
		if err != nil {
			return err
		}

		saveCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		entry := EntryFor(event)
		if err := store.Save(saveCtx, entry); err != nil {
			return err
		}

		log.Debug().
			Str("transaction_id", event.TransactionID).
			Str("entry_id", entry.ID).
			Str("status", string(event.TransactionStatus)).
			Msg("status change audited")
		return nil
	}
}
