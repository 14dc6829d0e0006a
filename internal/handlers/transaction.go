package handlers

import (
	"context"
	"errors"

	apperrors "walletledger/internal/errors"
	"walletledger/internal/models"
	"walletledger/internal/services/transaction"
	"walletledger/internal/services/wallet"
	"walletledger/internal/utils"
	"walletledger/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

const defaultTransactionLimit = 20

type TransactionHandler struct {
	transactionService transaction.Service
	walletService      wallet.Service
}

func NewTransactionHandler(transactionService transaction.Service, walletService wallet.Service) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		walletService:      walletService,
	}
}

// caller resolves the claims and the wallet number of the authenticated
// user without creating a wallet. A service caller that owns no wallet gets
// an empty number and acts through its role.
func (h *TransactionHandler) caller(c *fiber.Ctx) (*models.UserClaims, string, error) {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return nil, "", fiber.ErrUnauthorized
	}

	w, err := h.walletService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		if claims.Role == models.RoleService && errors.Is(err, apperrors.ErrWalletNotFound) {
			return claims, "", nil
		}
		return nil, "", err
	}
	return claims, w.WalletNumber, nil
}

func (h *TransactionHandler) fail(c *fiber.Ctx, err error) error {
	if err == fiber.ErrUnauthorized {
		return response.Unauthorized(c)
	}
	return response.ServiceError(c, err)
}

func (h *TransactionHandler) Transfer(c *fiber.Ctx) error {
	_, walletNumber, err := h.caller(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req models.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	tx, err := h.transactionService.CreateTransferTransaction(c.Context(), walletNumber, req)
	if err != nil {
		return response.ServiceError(c, err)
	}
	return response.Accepted(c, "Transfer queued", tx)
}

func (h *TransactionHandler) Payment(c *fiber.Ctx) error {
	return h.singleLeg(c, "Payment queued", h.transactionService.CreatePaymentTransaction)
}

func (h *TransactionHandler) Recharge(c *fiber.Ctx) error {
	return h.singleLeg(c, "Recharge queued", h.transactionService.CreateRechargeTransaction)
}

type createFunc func(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error)

// singleLeg handles payments and recharges. The target defaults to the
// caller's wallet; other wallets need the service role.
func (h *TransactionHandler) singleLeg(c *fiber.Ctx, message string, create createFunc) error {
	claims, walletNumber, err := h.caller(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req models.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if req.TargetWallet == "" {
		req.TargetWallet = walletNumber
	}
	if !claims.ActsFor(walletNumber, req.TargetWallet) {
		return response.Error(c, fiber.StatusForbidden, "target wallet does not belong to caller")
	}

	tx, err := create(c.Context(), req)
	if err != nil {
		return response.ServiceError(c, err)
	}
	return response.Accepted(c, message, tx)
}

func (h *TransactionHandler) CancelTransaction(c *fiber.Ctx) error {
	claims, walletNumber, err := h.caller(c)
	if err != nil {
		return h.fail(c, err)
	}

	tx, err := h.transactionService.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return response.ServiceError(c, err)
	}
	if !isParty(claims, walletNumber, tx) {
		return response.NotFound(c, "transaction not found")
	}

	result, err := h.transactionService.CancelTransaction(c.Context(), tx.TransactionID)
	if err != nil {
		return response.ServiceError(c, err)
	}
	if result.TransactionType == models.TransactionTypeRevert {
		return response.Accepted(c, "Revert queued", result)
	}
	return response.Success(c, "Transaction canceled", result)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	claims, walletNumber, err := h.caller(c)
	if err != nil {
		return h.fail(c, err)
	}

	tx, err := h.transactionService.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return response.ServiceError(c, err)
	}
	if !isParty(claims, walletNumber, tx) {
		return response.NotFound(c, "transaction not found")
	}

	children, err := h.transactionService.GetChildTransactions(c.Context(), tx.TransactionID)
	if err != nil {
		return response.ServiceError(c, err)
	}
	return response.Success(c, "Transaction retrieved", fiber.Map{
		"transaction": tx,
		"children":    children,
	})
}

func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	_, walletNumber, err := h.caller(c)
	if err != nil {
		return h.fail(c, err)
	}
	if walletNumber == "" {
		return response.ServiceError(c, apperrors.ErrWalletNotFound)
	}

	p := utils.GetPagination(c, 1, defaultTransactionLimit)
	txs, total, err := h.transactionService.GetWalletTransactions(c.Context(), walletNumber, p.Limit, p.Offset)
	if err != nil {
		return response.ServiceError(c, err)
	}
	p.SetTotal(total)

	return c.JSON(utils.NewPaginatedResponse(txs, p))
}

func isParty(claims *models.UserClaims, walletNumber string, tx *models.Transaction) bool {
	return claims.ActsFor(walletNumber, tx.FromWallet) || claims.ActsFor(walletNumber, tx.ToWallet)
}
