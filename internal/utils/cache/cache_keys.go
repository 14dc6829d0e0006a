package cache

import "fmt"

type EntityType string

const EntityWallet EntityType = "Wallet"

// GenerateKey creates a standardized cache key: namespace:entity:value.
func GenerateKey(namespace string, entity EntityType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", namespace, entity, value)
}
