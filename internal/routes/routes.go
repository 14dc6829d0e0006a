// Package routes wires the HTTP surface of the ledger.
package routes

import (
	"walletledger/internal/handlers"
	"walletledger/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Dependencies are the handlers and middleware the routes are built from.
type Dependencies struct {
	Auth         *middleware.AuthMiddleware
	Wallets      *handlers.WalletHandler
	Transactions *handlers.TransactionHandler
	Health       *handlers.HealthHandler
	Metrics      fiber.Handler
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/health", deps.Health.HealthCheck)
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics)
	}

	api := app.Group("/api", deps.Auth.Handler)

	wallets := api.Group("/wallets")
	wallets.Post("/", deps.Wallets.CreateWallet)
	wallets.Get("/me", deps.Wallets.GetWallet)
	wallets.Post("/me/currency-accounts", deps.Wallets.AddCurrencyAccount)
	wallets.Put("/me/currency-accounts/:currency/default", deps.Wallets.SetDefaultCurrencyAccount)

	transactions := api.Group("/transactions")
	transactions.Get("/", deps.Transactions.ListTransactions)
	transactions.Post("/transfer", deps.Transactions.Transfer)
	transactions.Post("/payment", deps.Transactions.Payment)
	transactions.Post("/recharge", deps.Transactions.Recharge)
	transactions.Get("/:id", deps.Transactions.GetTransaction)
	transactions.Post("/:id/cancel", deps.Transactions.CancelTransaction)
}
