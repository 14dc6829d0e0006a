/*
Package wallet manages wallets and their currency accounts.

Every user owns one wallet, addressed publicly by its wallet number. A wallet
holds one currency account per currency and exactly one of them is flagged as
the default. Balances are only changed by settlement, which goes through
UpdateCurrencyAccounts inside its own session.

Usage:

	svc := wallet.NewService(repo, uow, cache, wallet.Config{}, metrics)

	// Wallet of the authenticated user, created on first access
	w, err := svc.GetOrCreateWallet(ctx, userID)

	// Open a EUR account and make it the default
	w, err = svc.AddCurrencyAccount(ctx, userID, "EUR", true)

Cache Management:

Wallets are cached in Redis under <namespace>:Wallet:<walletId>. Any write to
the currency-account set invalidates the key once the session commits.

Error Handling:

Business-rule violations are returned as *errors.ServiceError:
  - WALLET_ALREADY_EXISTS
  - WALLET_NOT_FOUND
  - CURRENCY_ACCOUNT_ALREADY_EXISTS
  - CURRENCY_ACCOUNT_NOT_EXIST
*/
package wallet
