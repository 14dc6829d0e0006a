package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultCurrency is the currency of the account every new wallet starts with.
const DefaultCurrency = "USD"

// Wallet is keyed by the owner id; WalletNumber is the public address used
// by transactions.
type Wallet struct {
	ID               string            `gorm:"primarykey;size:64" json:"id"`
	WalletNumber     string            `gorm:"uniqueIndex;size:32;not null" json:"wallet_number"`
	CurrencyAccounts []CurrencyAccount `gorm:"foreignKey:WalletID;references:ID" json:"currency_accounts"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

type CurrencyAccount struct {
	ID        uint            `gorm:"primarykey" json:"-"`
	WalletID  string          `gorm:"uniqueIndex:idx_wallet_currency;size:64;not null" json:"-"`
	Currency  string          `gorm:"uniqueIndex:idx_wallet_currency;size:8;not null" json:"currency"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"balance"`
	IsDefault bool            `gorm:"not null;default:false" json:"is_default"`
	UpdatedAt time.Time       `json:"-"`
}

func (a *CurrencyAccount) BeforeSave(tx *gorm.DB) error {
	a.Currency = NormalizeCurrency(a.Currency)
	return nil
}

// NormalizeCurrency upper-cases and trims an ISO currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// NewWallet returns a wallet holding a single zero-balance default USD account.
func NewWallet(ownerID, walletNumber string) *Wallet {
	return &Wallet{
		ID:           ownerID,
		WalletNumber: walletNumber,
		CurrencyAccounts: []CurrencyAccount{
			{WalletID: ownerID, Currency: DefaultCurrency, Balance: decimal.Zero, IsDefault: true},
		},
	}
}

// Account returns the currency account for currency, or nil.
func (w *Wallet) Account(currency string) *CurrencyAccount {
	currency = NormalizeCurrency(currency)
	for i := range w.CurrencyAccounts {
		if w.CurrencyAccounts[i].Currency == currency {
			return &w.CurrencyAccounts[i]
		}
	}
	return nil
}

func (w *Wallet) HasAccount(currency string) bool {
	return w.Account(currency) != nil
}

// DefaultAccount returns the account flagged as default, or nil.
func (w *Wallet) DefaultAccount() *CurrencyAccount {
	for i := range w.CurrencyAccounts {
		if w.CurrencyAccounts[i].IsDefault {
			return &w.CurrencyAccounts[i]
		}
	}
	return nil
}

// SetDefault moves the default flag to currency. It reports false when the
// wallet has no account in that currency.
func (w *Wallet) SetDefault(currency string) bool {
	target := w.Account(currency)
	if target == nil {
		return false
	}
	for i := range w.CurrencyAccounts {
		w.CurrencyAccounts[i].IsDefault = false
	}
	target.IsDefault = true
	return true
}

// Credit adds amount to the currency account. It reports false when the
// account does not exist.
func (w *Wallet) Credit(currency string, amount decimal.Decimal) bool {
	account := w.Account(currency)
	if account == nil {
		return false
	}
	account.Balance = account.Balance.Add(amount)
	return true
}

// Debit subtracts amount from the currency account. It reports false when
// the account does not exist.
func (w *Wallet) Debit(currency string, amount decimal.Decimal) bool {
	account := w.Account(currency)
	if account == nil {
		return false
	}
	account.Balance = account.Balance.Sub(amount)
	return true
}
