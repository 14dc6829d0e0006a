package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"walletledger/internal/models"
	keys "walletledger/internal/utils/cache"

	"github.com/redis/go-redis/v9"
)

// CacheService stores JSON values in Redis under namespaced keys.
type CacheService struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewCacheService(client *redis.Client, namespace string, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client:    client,
		namespace: namespace,
		ttl:       defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the value stored at key into dest and reports whether the key
// was present.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// WalletKey is the cache key of a wallet aggregate.
func (s *CacheService) WalletKey(walletID string) string {
	return keys.GenerateKey(s.namespace, keys.EntityWallet, walletID)
}

// Wallet caching
func (s *CacheService) GetWallet(ctx context.Context, walletID string) (*models.Wallet, error) {
	var wallet models.Wallet
	found, err := s.Get(ctx, s.WalletKey(walletID), &wallet)
	if err != nil || !found {
		return nil, err
	}
	return &wallet, nil
}

func (s *CacheService) SetWallet(ctx context.Context, wallet *models.Wallet) error {
	return s.Set(ctx, s.WalletKey(wallet.ID), wallet)
}

func (s *CacheService) InvalidateWallet(ctx context.Context, walletID string) error {
	return s.Delete(ctx, s.WalletKey(walletID))
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
