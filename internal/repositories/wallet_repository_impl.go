package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"walletledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) conn(ctx context.Context, sess *Session) *gorm.DB {
	if sess != nil && sess.DB() != nil {
		return sess.DB().WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *walletRepository) Create(ctx context.Context, sess *Session, wallet *models.Wallet) error {
	result := r.conn(ctx, sess).Create(wallet)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateWallet
		}
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetByID(ctx context.Context, sess *Session, id string) (*models.Wallet, error) {
	return r.first(ctx, sess, "id = ?", id)
}

func (r *walletRepository) GetByNumber(ctx context.Context, sess *Session, walletNumber string) (*models.Wallet, error) {
	return r.first(ctx, sess, "wallet_number = ?", walletNumber)
}

func (r *walletRepository) first(ctx context.Context, sess *Session, query string, arg string) (*models.Wallet, error) {
	q := r.conn(ctx, sess)
	if sess != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var wallet models.Wallet
	if err := q.Where(query, arg).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	// Accounts are loaded after the wallet row is locked so their balances
	// cannot change underneath the session.
	if err := r.conn(ctx, sess).
		Where("wallet_id = ?", wallet.ID).
		Order("currency").
		Find(&wallet.CurrencyAccounts).Error; err != nil {
		return nil, fmt.Errorf("failed to get currency accounts: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) UpdateCurrencyAccounts(ctx context.Context, sess *Session, walletID string, accounts []models.CurrencyAccount) error {
	db := r.conn(ctx, sess)

	currencies := make([]string, 0, len(accounts))
	for i := range accounts {
		accounts[i].WalletID = walletID
		if err := db.Save(&accounts[i]).Error; err != nil {
			return fmt.Errorf("failed to save currency account %s: %w", accounts[i].Currency, err)
		}
		currencies = append(currencies, accounts[i].Currency)
	}

	stale := db.Where("wallet_id = ?", walletID)
	if len(currencies) > 0 {
		stale = stale.Where("currency NOT IN ?", currencies)
	}
	if err := stale.Delete(&models.CurrencyAccount{}).Error; err != nil {
		return fmt.Errorf("failed to remove currency accounts: %w", err)
	}

	result := db.Model(&models.Wallet{}).Where("id = ?", walletID).Update("updated_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to touch wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}
