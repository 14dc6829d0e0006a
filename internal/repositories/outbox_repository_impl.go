package repositories

import (
	"context"
	"fmt"
	"time"

	"walletledger/internal/models"

	"gorm.io/gorm"
)

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Add(ctx context.Context, sess *Session, msg *models.OutboxMessage) error {
	db := r.db
	if sess != nil && sess.DB() != nil {
		db = sess.DB()
	}
	if err := db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to write outbox message: %w", err)
	}
	return nil
}

func (r *outboxRepository) Pending(ctx context.Context, cutoff time.Time, limit int) ([]models.OutboxMessage, error) {
	var msgs []models.OutboxMessage
	err := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Order("id").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read outbox: %w", err)
	}
	return msgs, nil
}

func (r *outboxRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.OutboxMessage{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete outbox message %d: %w", id, err)
	}
	return nil
}
