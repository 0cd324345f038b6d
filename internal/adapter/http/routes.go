package http

import (
	"debt-ledger/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health      *Handler
	Loans       *LoanHandler
	Investments *InvestmentHandler
	Wallets     *WalletHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Health)

	api := e.Group("", middleware.RequestHeaders())

	api.POST("/loans", h.Loans.CreateLoan)
	api.GET("/loans", h.Loans.ListLoans)
	api.GET("/loans/:loan_id", h.Loans.GetLoan)
	api.POST("/loans/:loan_id/activate", h.Loans.ActivateLoan)

	api.POST("/loans/:loan_id/investments", h.Investments.Invest)
	api.GET("/users/:user_id/investments", h.Investments.ListForUser)
	api.POST("/users/:user_id/payments", h.Investments.SimulateAllPayments)
	api.GET("/investments/:investment_id/payments", h.Investments.ListPayments)
	api.POST("/investments/:investment_id/payments", h.Investments.SimulatePayment)
	api.POST("/investments/:investment_id/payoff", h.Investments.SimulatePayoff)

	api.GET("/wallets/:user_id", h.Wallets.Balance)
	api.POST("/wallets/:user_id/deposits", h.Wallets.Deposit)
	api.GET("/wallets/:user_id/transactions", h.Wallets.Transactions)
	api.GET("/wallets/:user_id/reconcile", h.Wallets.Reconcile)
}
