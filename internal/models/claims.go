package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the JWT payload identifying the caller. UserID is the owner
// id of the caller's wallet.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// RoleService marks trusted backend callers allowed to act on any wallet.
const RoleService = "service"

// ActsFor reports whether a caller holding callerWalletNumber may operate on
// walletNumber.
func (c *UserClaims) ActsFor(callerWalletNumber, walletNumber string) bool {
	return c.Role == RoleService || callerWalletNumber == walletNumber
}
