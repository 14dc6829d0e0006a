package repositories

import (
	"context"
	"time"

	"walletledger/internal/models"
)

// OutboxRepository stores messages awaiting publication.
type OutboxRepository interface {
	// Add writes msg inside sess.
	Add(ctx context.Context, sess *Session, msg *models.OutboxMessage) error
	// Pending returns up to limit messages created before cutoff, oldest first.
	Pending(ctx context.Context, cutoff time.Time, limit int) ([]models.OutboxMessage, error)
	Delete(ctx context.Context, id uint) error
}
