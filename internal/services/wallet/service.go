package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "walletledger/internal/errors"
	"walletledger/internal/models"
	"walletledger/internal/repositories"
	"walletledger/internal/utils/validation"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type service struct {
	repo      repositories.WalletRepository
	uow       repositories.UnitOfWork
	cache     CacheOperator
	numbers   NumberGenerator
	validator *validation.Validator
	config    Config
	metrics   MetricsCollector
}

// NewService creates a new wallet service
func NewService(
	repo repositories.WalletRepository,
	uow repositories.UnitOfWork,
	cache CacheOperator,
	config Config,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if uow == nil {
		panic("unit of work is required")
	}
	if cache == nil {
		panic("cache is required")
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Numbers == nil {
		config.Numbers = NewULIDGenerator()
	}

	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:      repo,
		uow:       uow,
		cache:     cache,
		numbers:   config.Numbers,
		validator: validation.New(),
		config:    config,
		metrics:   metrics,
	}
}

func (s *service) CreateNewWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(OpCreateWallet, time.Since(start)) }()

	if userID == "" {
		return nil, apperrors.ErrInvalidRequest.Wrap(ErrMissingUserID)
	}

	number, err := s.numbers.Next()
	if err != nil {
		s.metrics.RecordError(OpCreateWallet, "number_generation")
		return nil, fmt.Errorf("failed to generate wallet number: %w", err)
	}

	wallet := models.NewWallet(userID, number)
	if err := s.repo.Create(ctx, nil, wallet); err != nil {
		if errors.Is(err, repositories.ErrDuplicateWallet) {
			s.metrics.RecordOperationResult(OpCreateWallet, "duplicate")
			return nil, apperrors.ErrWalletAlreadyExists
		}
		s.metrics.RecordError(OpCreateWallet, "storage")
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	log.Info().
		Str("wallet_id", wallet.ID).
		Str("wallet_number", wallet.WalletNumber).
		Msg("wallet created")

	s.metrics.RecordOperationResult(OpCreateWallet, "success")
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	// Try cache first
	wallet, err := s.cache.GetWallet(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("wallet_id", userID).Msg("wallet cache read failed")
	}
	if wallet != nil {
		s.metrics.RecordCacheHit(OpGetWallet)
		return wallet, nil
	}
	s.metrics.RecordCacheMiss(OpGetWallet)

	wallet, err = s.repo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if err := s.cache.SetWallet(ctx, wallet); err != nil {
		log.Warn().Err(err).Str("wallet_id", userID).Msg("wallet cache write failed")
	}
	return wallet, nil
}

func (s *service) GetOrCreateWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, apperrors.ErrWalletNotFound) {
		return nil, err
	}

	wallet, err = s.CreateNewWallet(ctx, userID)
	if errors.Is(err, apperrors.ErrWalletAlreadyExists) {
		// Lost a race with a concurrent first access.
		return s.GetWallet(ctx, userID)
	}
	return wallet, err
}

func (s *service) GetWalletByNumber(ctx context.Context, sess *repositories.Session, walletNumber string) (*models.Wallet, error) {
	wallet, err := s.repo.GetByNumber(ctx, sess, walletNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		s.metrics.RecordError(OpGetWalletByNumber, "storage")
		return nil, fmt.Errorf("failed to get wallet %s: %w", walletNumber, err)
	}
	return wallet, nil
}

func (s *service) AddCurrencyAccount(ctx context.Context, userID, currency string, isDefault bool) (*models.Wallet, error) {
	if !s.validator.Currency(currency) {
		return nil, apperrors.ErrInvalidRequest.Wrap(fmt.Errorf("%w: %q", ErrInvalidCurrency, currency))
	}
	currency = models.NormalizeCurrency(currency)

	return s.mutateAccounts(ctx, OpAddCurrencyAccount, userID, func(wallet *models.Wallet) error {
		if wallet.HasAccount(currency) {
			return apperrors.ErrCurrencyAccountExists.Withf("wallet already holds a %s account", currency)
		}

		wallet.CurrencyAccounts = append(wallet.CurrencyAccounts, models.CurrencyAccount{
			WalletID: wallet.ID,
			Currency: currency,
			Balance:  decimal.Zero,
		})
		if isDefault {
			wallet.SetDefault(currency)
		}
		return nil
	})
}

func (s *service) SetDefaultCurrencyAccount(ctx context.Context, userID, currency string) (*models.Wallet, error) {
	return s.mutateAccounts(ctx, OpSetDefaultAccount, userID, func(wallet *models.Wallet) error {
		if !wallet.SetDefault(currency) {
			return apperrors.ErrCurrencyAccountNotFound.Withf("wallet has no %s account", models.NormalizeCurrency(currency))
		}
		return nil
	})
}

// mutateAccounts loads the wallet under lock, applies fn and persists the
// resulting account set in the same session.
func (s *service) mutateAccounts(ctx context.Context, op, userID string, fn func(wallet *models.Wallet) error) (*models.Wallet, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(op, time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var wallet *models.Wallet
	err := s.uow.Run(ctx, func(sess *repositories.Session) error {
		w, err := s.repo.GetByID(ctx, sess, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrWalletNotFound) {
				return apperrors.ErrWalletNotFound
			}
			return fmt.Errorf("failed to get wallet: %w", err)
		}

		if err := fn(w); err != nil {
			return err
		}

		if err := s.UpdateCurrencyAccounts(ctx, sess, w.ID, w.CurrencyAccounts); err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if err != nil {
		if apperrors.IsServiceError(err) {
			s.metrics.RecordOperationResult(op, "rejected")
		} else {
			s.metrics.RecordError(op, "storage")
		}
		return nil, err
	}

	s.metrics.RecordOperationResult(op, "success")
	return wallet, nil
}

func (s *service) UpdateCurrencyAccounts(ctx context.Context, sess *repositories.Session, walletID string, accounts []models.CurrencyAccount) error {
	if sess == nil {
		return s.uow.Run(ctx, func(sess *repositories.Session) error {
			return s.UpdateCurrencyAccounts(ctx, sess, walletID, accounts)
		})
	}

	if err := s.repo.UpdateCurrencyAccounts(ctx, sess, walletID, accounts); err != nil {
		s.metrics.RecordError(OpUpdateCurrencyAccount, "storage")
		return fmt.Errorf("failed to update currency accounts of wallet %s: %w", walletID, err)
	}

	sess.AfterCommit(func(ctx context.Context) {
		if err := s.cache.InvalidateWallet(ctx, walletID); err != nil {
			log.Warn().Err(err).Str("wallet_id", walletID).Msg("wallet cache invalidation failed")
		}
	})
	return nil
}
