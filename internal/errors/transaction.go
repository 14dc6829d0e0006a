package errors

var (
	ErrTransactionNotFound = &ServiceError{
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}
	ErrInvalidStatusTransition = &ServiceError{
		Code:    "INVALID_STATUS_TRANSITION",
		Message: "transaction status cannot move backwards",
	}
	ErrTransactionNotCancellable = &ServiceError{
		Code:    "TRANSACTION_NOT_CANCELLABLE",
		Message: "transaction cannot be cancelled in its current status",
	}
)
