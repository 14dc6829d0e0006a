package handlers

import (
	"walletledger/internal/services/wallet"
	"walletledger/internal/utils"
	"walletledger/internal/utils/response"
	"walletledger/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
	validator     *validation.Validator
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		validator:     validation.New(),
	}
}

type addCurrencyAccountInput struct {
	Currency  string `json:"currency" validate:"required,len=3"`
	IsDefault bool   `json:"is_default"`
}

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	w, err := h.walletService.CreateNewWallet(c.Context(), claims.UserID)
	if err != nil {
		return response.ServiceError(c, err)
	}
	return response.Created(c, "Wallet created", w)
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	w, err := h.walletService.GetOrCreateWallet(c.Context(), claims.UserID)
	if err != nil {
		return response.ServiceError(c, err)
	}
	return response.Success(c, "Wallet retrieved", w)
}

func (h *WalletHandler) AddCurrencyAccount(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input addCurrencyAccountInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := h.validator.Struct(input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	w, err := h.walletService.AddCurrencyAccount(c.Context(), claims.UserID, input.Currency, input.IsDefault)
	if err != nil {
		return response.ServiceError(c, err)
	}
	return response.Created(c, "Currency account added", w)
}

func (h *WalletHandler) SetDefaultCurrencyAccount(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	w, err := h.walletService.SetDefaultCurrencyAccount(c.Context(), claims.UserID, c.Params("currency"))
	if err != nil {
		return response.ServiceError(c, err)
	}
	return response.Success(c, "Default currency account updated", w)
}
