package audit

import (
	"context"
	"time"

	"walletledger/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// HistoryHandler serves the recorded status changes of one transaction,
// oldest first.
func HistoryHandler(store Store, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), timeout)
		defer cancel()

		transactionID := c.Params("id")
		entries, err := store.History(ctx, transactionID)
		if err != nil {
			return response.ServiceError(c, err)
		}
		if len(entries) == 0 {
			return response.NotFound(c, "no audit entries for transaction")
		}
		return response.Success(c, "Audit history retrieved", fiber.Map{
			"transaction_id": transactionID,
			"entries":        entries,
		})
	}
}
