package transaction

import "time"

// Default configuration values
const (
	DefaultPageSize   = 20
	MaxPageSize       = 100
	DefaultSettleTime = 30 * time.Second

	DefaultRelayInterval = 10 * time.Second
	DefaultRelayMinAge   = 30 * time.Second
	DefaultRelayBatch    = 100
)

// Failure codes recorded on transactions that settlement rejected
const (
	FailureUnhandledType             = "UNHANDLED_TRANSACTION_TYPE"
	FailureSenderAndRecipientSame    = "SENDER_AND_RECIPIENT_ARE_SAME"
	FailureSenderWalletNotExist      = "SENDER_WALLET_NOT_EXIST"
	FailureRecipientWalletNotExist   = "RECIPIENT_WALLET_NOT_EXIST"
	FailureWalletNotExist            = "WALLET_NOT_EXIST"
	FailureSenderAccountNotExist     = "SENDER_CURRENCY_ACCOUNT_NOT_EXIST"
	FailureRecipientAccountNotExist  = "RECIPIENT_CURRENCY_ACCOUNT_NOT_EXIST"
	FailureParentTransactionNotExist = "PARENT_TRANSACTION_NOT_EXIST"
)

// Settlement outcomes reported to metrics
const (
	OutcomeProceed = "proceed"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
	OutcomeMissing = "missing"
	OutcomeError   = "error"
)
