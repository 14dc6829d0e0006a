package repositories

import (
	"context"

	"walletledger/internal/models"
)

// TransactionRepository persists ledger transactions. Records are never
// deleted; only their status and failure code change after creation.
type TransactionRepository interface {
	Create(ctx context.Context, sess *Session, tx *models.Transaction) error

	// GetByID returns ErrTransactionNotFound for unknown ids. Inside a session
	// the row is locked until the session ends.
	GetByID(ctx context.Context, sess *Session, id string) (*models.Transaction, error)
	GetByWalletNumber(ctx context.Context, walletNumber string, limit, offset int) ([]models.Transaction, int64, error)
	GetByParentID(ctx context.Context, parentID string) ([]models.Transaction, error)

	UpdateStatus(ctx context.Context, sess *Session, id string, status models.TransactionStatus, failureCode *string) error
}
