package handler

import (
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups every HTTP handler the API mounts. Receipt, Internal and
// WebSocket may be nil, in which case their routes are not registered.
type Handlers struct {
	Auth        *AuthHandler
	Account     *AccountHandler
	Transaction *TransactionHandler
	Budget      *BudgetHandler
	Receipt     *ReceiptHandler
	Internal    *InternalHandler
	WebSocket   *WebSocketHandler
}

// RouteConfig carries the middleware shared across route groups
type RouteConfig struct {
	Auth           *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
	InternalAPIKey string
	Servers        []Server
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, cfg RouteConfig, h Handlers) {
	// API version 1
	api := e.Group("/api/v1")

	// The callback creates the user, so it only needs a valid token
	auth := api.Group("/auth")
	auth.Use(cfg.Auth.Authenticate())
	auth.POST("/callback", h.Auth.Callback)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me, cfg.Auth.RequireUser())

	protected := []echo.MiddlewareFunc{cfg.Auth.Authenticate(), cfg.Auth.RequireUser()}

	accounts := api.Group("/accounts", protected...)
	accounts.POST("", h.Account.CreateAccount)
	accounts.GET("", h.Account.GetAccounts)
	accounts.GET("/:id", h.Account.GetAccount)
	accounts.PATCH("/:id/default", h.Account.SetDefaultAccount)

	transactions := api.Group("/transactions", protected...)
	if cfg.RateLimiter != nil {
		transactions.POST("", h.Transaction.CreateTransaction, middleware.RateLimitMiddleware(cfg.RateLimiter))
	} else {
		transactions.POST("", h.Transaction.CreateTransaction)
	}
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.POST("/bulk-delete", h.Transaction.BulkDeleteTransactions)

	budgets := api.Group("/budgets", protected...)
	budgets.GET("/current", h.Budget.GetCurrentBudget)
	budgets.PUT("", h.Budget.UpdateBudget)

	if h.Receipt != nil {
		receipts := api.Group("/receipts", protected...)
		receipts.POST("/scan", h.Receipt.ScanReceipt)
	}

	if h.Internal != nil {
		internal := api.Group("/internal", middleware.InternalKey(cfg.InternalAPIKey))
		internal.POST("/sweeps/recurring", h.Internal.RunRecurringSweep)
		internal.POST("/sweeps/budget-alerts", h.Internal.RunBudgetAlertSweep)
		internal.POST("/jobs/recurring", h.Internal.SubmitRecurringJob)
		internal.GET("/jobs", h.Internal.ListJobs)
		internal.GET("/jobs/:id", h.Internal.GetJob)
	}

	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	servers := cfg.Servers
	if len(servers) == 0 {
		servers = DefaultServers
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", OpenAPI3Handler(servers))
}
