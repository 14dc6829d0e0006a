package handlers

import (
	"context"

	"walletledger/internal/models"
	"walletledger/internal/repositories"

	"github.com/stretchr/testify/mock"
)

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) CreateNewWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	return walletArg(args, 0), args.Error(1)
}

func (m *MockWalletService) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	return walletArg(args, 0), args.Error(1)
}

func (m *MockWalletService) GetOrCreateWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	return walletArg(args, 0), args.Error(1)
}

func (m *MockWalletService) GetWalletByNumber(ctx context.Context, sess *repositories.Session, walletNumber string) (*models.Wallet, error) {
	args := m.Called(ctx, sess, walletNumber)
	return walletArg(args, 0), args.Error(1)
}

func (m *MockWalletService) AddCurrencyAccount(ctx context.Context, userID, currency string, isDefault bool) (*models.Wallet, error) {
	args := m.Called(ctx, userID, currency, isDefault)
	return walletArg(args, 0), args.Error(1)
}

func (m *MockWalletService) SetDefaultCurrencyAccount(ctx context.Context, userID, currency string) (*models.Wallet, error) {
	args := m.Called(ctx, userID, currency)
	return walletArg(args, 0), args.Error(1)
}

func (m *MockWalletService) UpdateCurrencyAccounts(ctx context.Context, sess *repositories.Session, walletID string, accounts []models.CurrencyAccount) error {
	return m.Called(ctx, sess, walletID, accounts).Error(0)
}

func walletArg(args mock.Arguments, i int) *models.Wallet {
	if w := args.Get(i); w != nil {
		return w.(*models.Wallet)
	}
	return nil
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) UpdateTransactionStatus(ctx context.Context, sess *repositories.Session, tx *models.Transaction, newStatus models.TransactionStatus, failureCode *string) (*models.Transaction, error) {
	args := m.Called(ctx, sess, tx, newStatus, failureCode)
	return txArg(args, 0), args.Error(1)
}

func (m *MockTransactionService) CreateTransferTransaction(ctx context.Context, fromWalletNumber string, req models.TransactionRequest) (*models.Transaction, error) {
	args := m.Called(ctx, fromWalletNumber, req)
	return txArg(args, 0), args.Error(1)
}

func (m *MockTransactionService) CreatePaymentTransaction(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error) {
	args := m.Called(ctx, req)
	return txArg(args, 0), args.Error(1)
}

func (m *MockTransactionService) CreateRechargeTransaction(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error) {
	args := m.Called(ctx, req)
	return txArg(args, 0), args.Error(1)
}

func (m *MockTransactionService) CancelTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	args := m.Called(ctx, transactionID)
	return txArg(args, 0), args.Error(1)
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	args := m.Called(ctx, transactionID)
	return txArg(args, 0), args.Error(1)
}

func (m *MockTransactionService) GetWalletTransactions(ctx context.Context, walletNumber string, limit, offset int) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, walletNumber, limit, offset)
	var txs []models.Transaction
	if v := args.Get(0); v != nil {
		txs = v.([]models.Transaction)
	}
	return txs, args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionService) GetChildTransactions(ctx context.Context, parentID string) ([]models.Transaction, error) {
	args := m.Called(ctx, parentID)
	var txs []models.Transaction
	if v := args.Get(0); v != nil {
		txs = v.([]models.Transaction)
	}
	return txs, args.Error(1)
}

func txArg(args mock.Arguments, i int) *models.Transaction {
	if tx := args.Get(i); tx != nil {
		return tx.(*models.Transaction)
	}
	return nil
}
