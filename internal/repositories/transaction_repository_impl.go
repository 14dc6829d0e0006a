package repositories

import (
	"context"
	"errors"
	"fmt"

	"walletledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) conn(ctx context.Context, sess *Session) *gorm.DB {
	if sess != nil && sess.DB() != nil {
		return sess.DB().WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *transactionRepository) Create(ctx context.Context, sess *Session, tx *models.Transaction) error {
	if err := r.conn(ctx, sess).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, sess *Session, id string) (*models.Transaction, error) {
	q := r.conn(ctx, sess)
	if sess != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var tx models.Transaction
	if err := q.Where("transaction_id = ?", id).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) GetByWalletNumber(ctx context.Context, walletNumber string, limit, offset int) ([]models.Transaction, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("from_wallet = ? OR to_wallet = ?", walletNumber, walletNumber)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wallet transactions: %w", err)
	}

	var txs []models.Transaction
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get wallet transactions: %w", err)
	}
	return txs, total, nil
}

func (r *transactionRepository) GetByParentID(ctx context.Context, parentID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("parent_transaction_id = ?", parentID).
		Order("created_at").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get child transactions: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, sess *Session, id string, status models.TransactionStatus, failureCode *string) error {
	updates := map[string]interface{}{
		"transaction_status": status,
	}
	if failureCode != nil {
		updates["failure_code"] = *failureCode
	}

	result := r.conn(ctx, sess).
		Model(&models.Transaction{}).
		Where("transaction_id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
