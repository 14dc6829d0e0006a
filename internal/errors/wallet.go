package errors

var (
	ErrWalletNotFound = &ServiceError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrWalletAlreadyExists = &ServiceError{
		Code:    "WALLET_ALREADY_EXISTS",
		Message: "wallet already exists for this user",
	}
	ErrCurrencyAccountExists = &ServiceError{
		Code:    "CURRENCY_ACCOUNT_ALREADY_EXISTS",
		Message: "currency account already exists",
	}
	ErrCurrencyAccountNotFound = &ServiceError{
		Code:    "CURRENCY_ACCOUNT_NOT_EXIST",
		Message: "currency account does not exist",
	}
)
