package http

import (
	"errors"
	"net/http"

	"debt-ledger/internal/domain/investment"
	"debt-ledger/internal/domain/loan"
	"debt-ledger/internal/domain/wallet"
	loanuc "debt-ledger/internal/usecase/loan"
	"debt-ledger/internal/usecase/settlement"
	"debt-ledger/pkg/accrual"

	"github.com/labstack/echo/v4"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, settlement.ErrInvalidInput),
		errors.Is(err, loanuc.ErrInvalidInput),
		errors.Is(err, accrual.ErrInvalidInput),
		errors.Is(err, wallet.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, loan.ErrNotFound),
		errors.Is(err, investment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, wallet.ErrInsufficientFunds),
		errors.Is(err, investment.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrInsufficientCapacity),
		errors.Is(err, loan.ErrNotFundable),
		errors.Is(err, loan.ErrInvalidTransition),
		errors.Is(err, investment.ErrNotActive),
		errors.Is(err, investment.ErrInvalidTransition),
		errors.Is(err, investment.ErrScheduleComplete),
		errors.Is(err, settlement.ErrRequestInProgress),
		errors.Is(err, settlement.ErrIdempotencyKeyReused):
		return http.StatusConflict
	case errors.Is(err, settlement.ErrPersistence):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError maps domain errors → HTTP codes. Store internals never leak
// into the response body.
func writeError(c echo.Context, err error) error {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		msg = "ledger temporarily unavailable, retry with the same Ax-Request-Id"
	case http.StatusInternalServerError:
		c.Logger().Error(err)
		msg = "internal error"
	}
	return c.JSON(status, ErrorResponse{Error: msg})
}
