package transaction

import "errors"

// Service errors
var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrMissingSenderWallet = errors.New("sender wallet is required")
)
