package wallet

import (
	"context"

	"walletledger/internal/models"
	"walletledger/internal/repositories"
)

// Service defines the wallet management operations
type Service interface {
	// Wallet lifecycle
	CreateNewWallet(ctx context.Context, userID string) (*models.Wallet, error)
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	GetOrCreateWallet(ctx context.Context, userID string) (*models.Wallet, error)

	// GetWalletByNumber resolves a public wallet number. Inside a session the
	// wallet row stays locked until the session ends.
	GetWalletByNumber(ctx context.Context, sess *repositories.Session, walletNumber string) (*models.Wallet, error)

	// Currency accounts
	AddCurrencyAccount(ctx context.Context, userID, currency string, isDefault bool) (*models.Wallet, error)
	SetDefaultCurrencyAccount(ctx context.Context, userID, currency string) (*models.Wallet, error)

	// UpdateCurrencyAccounts persists the account set of a wallet and drops
	// its cache entry. A nil session opens a new one.
	UpdateCurrencyAccounts(ctx context.Context, sess *repositories.Session, walletID string, accounts []models.CurrencyAccount) error
}
