package transaction

import (
	"time"

	"walletledger/internal/models"
	"walletledger/internal/queue"
	"walletledger/internal/repositories"
)

// MetricsCollector defines the interface for collecting ledger metrics
type MetricsCollector interface {
	RecordTransactionCreated(txType models.TransactionType)
	RecordStatusChange(status models.TransactionStatus)
	RecordSettlement(txType models.TransactionType, outcome string, duration time.Duration)
	RecordError(operation, errType string)
}

// ProcessorConfig holds the collaborators of a Processor
type ProcessorConfig struct {
	Transactions  repositories.TransactionRepository
	UnitOfWork    repositories.UnitOfWork
	Wallets       WalletOperator
	Statuses      StatusUpdater
	Metrics       MetricsCollector
	SettleTimeout time.Duration
}

// RelayConfig holds the collaborators and schedule of a Relay
type RelayConfig struct {
	Outbox    repositories.OutboxRepository
	Publisher queue.Publisher
	Metrics   MetricsCollector
	// Interval between sweeps.
	Interval time.Duration
	// MinAge keeps the relay away from messages whose after-commit delivery
	// may still be in flight.
	MinAge    time.Duration
	BatchSize int
	Now       func() time.Time
}

// settlement is the result of applying one transaction to its wallets.
type settlement struct {
	failureCode string
	// parent is set when a revert settled and its original must be closed.
	parent *models.Transaction
}

func (s settlement) failed() bool {
	return s.failureCode != ""
}
