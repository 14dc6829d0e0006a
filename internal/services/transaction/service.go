package transaction

import (
	"context"
	"errors"
	"fmt"

	apperrors "walletledger/internal/errors"
	"walletledger/internal/models"
	"walletledger/internal/queue"
	"walletledger/internal/repositories"
	"walletledger/internal/utils/validation"

	"github.com/rs/zerolog/log"
)

type service struct {
	repo      repositories.TransactionRepository
	uow       repositories.UnitOfWork
	outbox    *outbox
	validator *validation.Validator
	metrics   MetricsCollector
}

// NewService creates a new transaction management service
func NewService(
	repo repositories.TransactionRepository,
	outboxRepo repositories.OutboxRepository,
	uow repositories.UnitOfWork,
	publisher queue.Publisher,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if outboxRepo == nil {
		panic("outbox repository is required")
	}
	if uow == nil {
		panic("unit of work is required")
	}
	if publisher == nil {
		panic("publisher is required")
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:      repo,
		uow:       uow,
		outbox:    &outbox{repo: outboxRepo, publisher: publisher, metrics: metrics},
		validator: validation.New(),
		metrics:   metrics,
	}
}

func (s *service) CreateTransferTransaction(ctx context.Context, fromWalletNumber string, req models.TransactionRequest) (*models.Transaction, error) {
	if fromWalletNumber == "" {
		return nil, apperrors.ErrInvalidRequest.Wrap(ErrMissingSenderWallet)
	}
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	return s.enqueue(ctx, models.NewTransferTransaction(fromWalletNumber, req))
}

func (s *service) CreatePaymentTransaction(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	return s.enqueue(ctx, models.NewPaymentTransaction(req))
}

func (s *service) CreateRechargeTransaction(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	return s.enqueue(ctx, models.NewRechargeTransaction(req))
}

func (s *service) validateRequest(req models.TransactionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return apperrors.ErrInvalidRequest.Wrap(err)
	}
	if !req.Amount.IsPositive() {
		return apperrors.ErrInvalidRequest.Wrap(ErrInvalidAmount)
	}
	return nil
}

// enqueue persists tx in Queued and hands its id to settlement. A publish
// failure leaves the record Queued and is returned to the caller.
func (s *service) enqueue(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if err := s.repo.Create(ctx, nil, tx); err != nil {
		s.metrics.RecordError("create_transaction", "storage")
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	if err := s.outbox.publishNew(ctx, tx.TransactionID); err != nil {
		log.Error().Err(err).Str("transaction_id", tx.TransactionID).Msg("failed to queue transaction for settlement")
		return nil, err
	}

	s.metrics.RecordTransactionCreated(tx.TransactionType)
	log.Info().
		Str("transaction_id", tx.TransactionID).
		Str("type", string(tx.TransactionType)).
		Str("from_wallet", tx.FromWallet).
		Str("to_wallet", tx.ToWallet).
		Str("amount", tx.Amount.String()).
		Str("currency", tx.Currency).
		Msg("transaction queued")
	return tx, nil
}

func (s *service) UpdateTransactionStatus(ctx context.Context, sess *repositories.Session, tx *models.Transaction, newStatus models.TransactionStatus, failureCode *string) (*models.Transaction, error) {
	current := tx.TransactionStatus
	if !current.CanMoveTo(newStatus) {
		return nil, apperrors.ErrInvalidStatusTransition.Withf("cannot move transaction %s from %s to %s", tx.TransactionID, current, newStatus)
	}
	if newStatus == current && failureCode == nil {
		return tx, nil
	}

	if err := s.repo.UpdateStatus(ctx, sess, tx.TransactionID, newStatus, failureCode); err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to update status of transaction %s: %w", tx.TransactionID, err)
	}

	updated := *tx
	updated.TransactionStatus = newStatus
	if failureCode != nil {
		code := *failureCode
		updated.FailureCode = &code
	}

	event := models.TransactionStatusChanged{
		TransactionID:     updated.TransactionID,
		TransactionStatus: newStatus,
		FailureCode:       updated.FailureCode,
	}

	// Inside a session the event is stored with the status change and
	// published once the session commits.
	if sess != nil {
		if err := s.outbox.stage(ctx, sess, models.OutboxStatusChanged, event); err != nil {
			return nil, err
		}
		return &updated, nil
	}

	if err := s.outbox.publishStatus(ctx, event); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *service) CancelTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var result *models.Transaction

	err := s.uow.Run(ctx, func(sess *repositories.Session) error {
		tx, err := s.repo.GetByID(ctx, sess, transactionID)
		if err != nil {
			if errors.Is(err, repositories.ErrTransactionNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
		}

		switch tx.TransactionStatus {
		case models.TransactionStatusQueued:
			result, err = s.UpdateTransactionStatus(ctx, sess, tx, models.TransactionStatusCanceled, nil)
			return err

		case models.TransactionStatusProceed:
			revert := models.NewRevertTransaction(tx)
			if err := s.repo.Create(ctx, sess, revert); err != nil {
				return fmt.Errorf("failed to store revert of %s: %w", tx.TransactionID, err)
			}
			queued := models.NewTransactionQueued{TransactionID: revert.TransactionID}
			if err := s.outbox.stage(ctx, sess, models.OutboxNewTransaction, queued); err != nil {
				return err
			}

			if _, err := s.UpdateTransactionStatus(ctx, sess, tx, models.TransactionStatusQueuedForRevert, nil); err != nil {
				return err
			}
			result = revert
			return nil

		default:
			return apperrors.ErrTransactionNotCancellable.Withf("transaction %s is %s", tx.TransactionID, tx.TransactionStatus)
		}
	})
	if err != nil {
		return nil, err
	}
	if result.TransactionType == models.TransactionTypeRevert {
		s.metrics.RecordTransactionCreated(result.TransactionType)
	}

	log.Info().
		Str("transaction_id", transactionID).
		Str("result_id", result.TransactionID).
		Str("result_type", string(result.TransactionType)).
		Msg("transaction cancelled")
	return result, nil
}

func (s *service) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, nil, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

func (s *service) GetWalletTransactions(ctx context.Context, walletNumber string, limit, offset int) ([]models.Transaction, int64, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetByWalletNumber(ctx, walletNumber, limit, offset)
}

func (s *service) GetChildTransactions(ctx context.Context, parentID string) ([]models.Transaction, error) {
	return s.repo.GetByParentID(ctx, parentID)
}
