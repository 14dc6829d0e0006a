package wallet

import "time"

// Default configuration values
const (
	DefaultCacheDuration = 5 * time.Minute
	DefaultTimeout       = 30 * time.Second
)

// WalletNumberPrefix starts every generated wallet number.
const WalletNumberPrefix = "W"

// Operation names used for metrics and logs
const (
	OpCreateWallet          = "create_wallet"
	OpGetWallet             = "get_wallet"
	OpAddCurrencyAccount    = "add_currency_account"
	OpSetDefaultAccount     = "set_default_currency_account"
	OpUpdateCurrencyAccount = "update_currency_accounts"
	OpGetWalletByNumber     = "get_wallet_by_number"
)
