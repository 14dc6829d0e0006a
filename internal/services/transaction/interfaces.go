package transaction

import (
	"context"

	"walletledger/internal/models"
	"walletledger/internal/repositories"
)

// WalletOperator is the part of the wallet service settlement depends on.
type WalletOperator interface {
	GetWalletByNumber(ctx context.Context, sess *repositories.Session, walletNumber string) (*models.Wallet, error)
	UpdateCurrencyAccounts(ctx context.Context, sess *repositories.Session, walletID string, accounts []models.CurrencyAccount) error
}

// StatusUpdater moves a transaction along its status order.
type StatusUpdater interface {
	// UpdateTransactionStatus persists newStatus and publishes one status
	// event. Moving backwards fails with INVALID_STATUS_TRANSITION; repeating
	// the current status without a failure code returns tx untouched. With a
	// session the event is published after commit.
	UpdateTransactionStatus(ctx context.Context, sess *repositories.Session, tx *models.Transaction, newStatus models.TransactionStatus, failureCode *string) (*models.Transaction, error)
}

type Service interface {
	StatusUpdater

	CreateTransferTransaction(ctx context.Context, fromWalletNumber string, req models.TransactionRequest) (*models.Transaction, error)
	CreatePaymentTransaction(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error)
	CreateRechargeTransaction(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error)

	// CancelTransaction cancels a queued transaction or queues a revert of a
	// settled one. It returns the canceled transaction or the new revert.
	CancelTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)

	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)
	GetWalletTransactions(ctx context.Context, walletNumber string, limit, offset int) ([]models.Transaction, int64, error)
	GetChildTransactions(ctx context.Context, parentID string) ([]models.Transaction, error)
}
