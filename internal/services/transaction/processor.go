package transaction

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	apperrors "walletledger/internal/errors"
	"walletledger/internal/models"
	"walletledger/internal/repositories"

	"github.com/rs/zerolog/log"
)

// Processor settles queued transactions against wallet balances. It is
// driven by the settlement worker, once per queue delivery.
type Processor struct {
	repo     repositories.TransactionRepository
	uow      repositories.UnitOfWork
	wallets  WalletOperator
	statuses StatusUpdater
	metrics  MetricsCollector
	timeout  time.Duration
}

func NewProcessor(config ProcessorConfig) *Processor {
	if config.Transactions == nil {
		panic("transaction repository is required")
	}
	if config.UnitOfWork == nil {
		panic("unit of work is required")
	}
	if config.Wallets == nil {
		panic("wallet operator is required")
	}
	if config.Statuses == nil {
		panic("status updater is required")
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetricsCollector{}
	}
	if config.SettleTimeout == 0 {
		config.SettleTimeout = DefaultSettleTime
	}

	return &Processor{
		repo:     config.Transactions,
		uow:      config.UnitOfWork,
		wallets:  config.Wallets,
		statuses: config.Statuses,
		metrics:  config.Metrics,
		timeout:  config.SettleTimeout,
	}
}

// ProcessTransaction settles one transaction. A nil return means the
// delivery can be acknowledged, including when settlement was rejected and
// recorded as Failed. Any error is transient and the delivery should be
// redelivered; nothing from the attempt has been committed.
func (p *Processor) ProcessTransaction(ctx context.Context, transactionID string) error {
	if transactionID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	var (
		txType  models.TransactionType
		outcome string
	)

	err := p.uow.Run(ctx, func(sess *repositories.Session) error {
		tx, err := p.repo.GetByID(ctx, sess, transactionID)
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			outcome = OutcomeMissing
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
		}

		txType = tx.TransactionType
		if tx.TransactionStatus != models.TransactionStatusQueued {
			outcome = OutcomeSkipped
			return nil
		}

		result, err := p.settle(ctx, sess, tx)
		if err != nil {
			return err
		}

		if result.failed() {
			outcome = OutcomeFailed
			code := result.failureCode
			_, err = p.statuses.UpdateTransactionStatus(ctx, sess, tx, models.TransactionStatusFailed, &code)
			return err
		}

		outcome = OutcomeProceed
		if _, err := p.statuses.UpdateTransactionStatus(ctx, sess, tx, models.TransactionStatusProceed, nil); err != nil {
			return err
		}
		if result.parent != nil {
			if _, err := p.statuses.UpdateTransactionStatus(ctx, sess, result.parent, models.TransactionStatusReverted, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		outcome = OutcomeError
		p.metrics.RecordError("process_transaction", "transient")
		log.Error().Err(err).Str("transaction_id", transactionID).Msg("settlement attempt failed, will retry")
	}

	p.metrics.RecordSettlement(txType, outcome, time.Since(start))
	log.Info().
		Str("transaction_id", transactionID).
		Str("type", string(txType)).
		Str("outcome", outcome).
		Dur("duration", time.Since(start)).
		Msg("transaction processed")
	return err
}

func (p *Processor) settle(ctx context.Context, sess *repositories.Session, tx *models.Transaction) (settlement, error) {
	switch tx.TransactionType {
	case models.TransactionTypeTransfer, models.TransactionTypeRecharge, models.TransactionTypePayment:
		return p.move(ctx, sess, tx)
	case models.TransactionTypeRevert:
		return p.revert(ctx, sess, tx)
	default:
		log.Warn().Str("transaction_id", tx.TransactionID).Str("type", string(tx.TransactionType)).Msg("unhandled transaction type")
		return settlement{failureCode: FailureUnhandledType}, nil
	}
}

func (p *Processor) revert(ctx context.Context, sess *repositories.Session, tx *models.Transaction) (settlement, error) {
	if tx.ParentTransactionID == nil || *tx.ParentTransactionID == "" {
		return settlement{failureCode: FailureParentTransactionNotExist}, nil
	}

	parent, err := p.repo.GetByID(ctx, sess, *tx.ParentTransactionID)
	if errors.Is(err, repositories.ErrTransactionNotFound) {
		return settlement{failureCode: FailureParentTransactionNotExist}, nil
	}
	if err != nil {
		return settlement{}, fmt.Errorf("failed to load parent of %s: %w", tx.TransactionID, err)
	}

	result, err := p.move(ctx, sess, tx)
	if err != nil || result.failed() {
		return result, err
	}
	result.parent = parent
	return result, nil
}

// move applies the amount of tx from its sending leg to its receiving leg.
// A leg equal to models.NoWallet is not touched. Nothing is written unless
// every check passes.
func (p *Processor) move(ctx context.Context, sess *repositories.Session, tx *models.Transaction) (settlement, error) {
	from, to := tx.FromWallet, tx.ToWallet
	hasFrom, hasTo := from != models.NoWallet, to != models.NoWallet

	if hasFrom && hasTo && from == to {
		return settlement{failureCode: FailureSenderAndRecipientSame}, nil
	}
	if !hasFrom && !hasTo {
		return settlement{failureCode: FailureWalletNotExist}, nil
	}

	wallets, err := p.lockWallets(ctx, sess, from, to)
	if err != nil {
		return settlement{}, err
	}

	missingSender, missingRecipient := FailureSenderWalletNotExist, FailureRecipientWalletNotExist
	if !hasFrom || !hasTo {
		missingSender, missingRecipient = FailureWalletNotExist, FailureWalletNotExist
	}

	sender, recipient := wallets[from], wallets[to]
	if hasFrom && sender == nil {
		return settlement{failureCode: missingSender}, nil
	}
	if hasTo && recipient == nil {
		return settlement{failureCode: missingRecipient}, nil
	}
	if hasFrom && !sender.HasAccount(tx.Currency) {
		return settlement{failureCode: FailureSenderAccountNotExist}, nil
	}
	if hasTo && !recipient.HasAccount(tx.Currency) {
		return settlement{failureCode: FailureRecipientAccountNotExist}, nil
	}

	if hasFrom {
		sender.Debit(tx.Currency, tx.Amount)
	}
	if hasTo {
		recipient.Credit(tx.Currency, tx.Amount)
	}

	for _, number := range sortedLegs(from, to) {
		w := wallets[number]
		if err := p.wallets.UpdateCurrencyAccounts(ctx, sess, w.ID, w.CurrencyAccounts); err != nil {
			return settlement{}, err
		}
	}
	return settlement{}, nil
}

// lockWallets loads the wallets behind the given numbers inside sess, always
// in ascending number order. Unknown numbers map to nil.
func (p *Processor) lockWallets(ctx context.Context, sess *repositories.Session, numbers ...string) (map[string]*models.Wallet, error) {
	wallets := make(map[string]*models.Wallet, len(numbers))
	for _, number := range sortedLegs(numbers...) {
		w, err := p.wallets.GetWalletByNumber(ctx, sess, number)
		if errors.Is(err, apperrors.ErrWalletNotFound) {
			wallets[number] = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		wallets[number] = w
	}
	return wallets, nil
}

func sortedLegs(numbers ...string) []string {
	out := make([]string, 0, len(numbers))
	seen := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		if n == models.NoWallet || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
