package response

import (
	"errors"

	apperrors "walletledger/internal/errors"
	"walletledger/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Accepted(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// ServiceError writes err as a JSON error. Business-rule violations keep
// their code; anything else is logged and hidden behind a 500.
func ServiceError(c *fiber.Ctx, err error) error {
	se, ok := apperrors.AsServiceError(err)
	if !ok {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		return ServerError(c, "internal server error")
	}

	body := fiber.Map{
		"error": se.Message,
		"code":  se.Code,
	}
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		body["fields"] = verrs
	}
	return c.Status(StatusFor(se.Code)).JSON(body)
}

// StatusFor maps a service error code to an HTTP status.
func StatusFor(code string) int {
	switch code {
	case apperrors.ErrInvalidRequest.Code:
		return fiber.StatusBadRequest
	case apperrors.ErrWalletNotFound.Code,
		apperrors.ErrTransactionNotFound.Code,
		apperrors.ErrCurrencyAccountNotFound.Code:
		return fiber.StatusNotFound
	case apperrors.ErrWalletAlreadyExists.Code,
		apperrors.ErrCurrencyAccountExists.Code,
		apperrors.ErrInvalidStatusTransition.Code,
		apperrors.ErrTransactionNotCancellable.Code:
		return fiber.StatusConflict
	default:
		return fiber.StatusUnprocessableEntity
	}
}
