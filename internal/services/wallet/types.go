package wallet

import (
	"context"
	"time"

	"walletledger/internal/models"
)

// Config holds configuration for wallet operations
type Config struct {
	// Timeout bounds a currency-account mutation including its lock waits.
	Timeout time.Duration
	Numbers NumberGenerator
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	RecordCacheHit(key string)
	RecordCacheMiss(key string)

	RecordError(operation, errType string)
}

// CacheOperator is the slice of the wallet cache the service needs
type CacheOperator interface {
	GetWallet(ctx context.Context, walletID string) (*models.Wallet, error)
	SetWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, walletID string) error
}

// NumberGenerator produces new public wallet numbers
type NumberGenerator interface {
	Next() (string, error)
}
