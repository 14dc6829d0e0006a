package wallet

import "errors"

// Service errors
var (
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrMissingUserID   = errors.New("user id is required")
)
