package repositories

import (
	"context"
	"errors"

	"walletledger/internal/models"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrDuplicateWallet     = errors.New("wallet already exists")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// WalletRepository persists Wallet aggregates. A nil session runs the call
// on its own connection; reads inside a session lock the wallet row.
type WalletRepository interface {
	Create(ctx context.Context, sess *Session, wallet *models.Wallet) error
	GetByID(ctx context.Context, sess *Session, id string) (*models.Wallet, error)
	GetByNumber(ctx context.Context, sess *Session, walletNumber string) (*models.Wallet, error)

	// UpdateCurrencyAccounts replaces the stored currency-account set of the
	// wallet with accounts.
	UpdateCurrencyAccounts(ctx context.Context, sess *Session, walletID string, accounts []models.CurrencyAccount) error
}
