package http

import (
	"net/http"

	"debt-ledger/internal/adapter/middleware"
	"debt-ledger/internal/usecase/settlement"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type InvestmentHandler struct{ engine *settlement.Usecase }

func NewInvestmentHandler(engine *settlement.Usecase) *InvestmentHandler {
	return &InvestmentHandler{engine: engine}
}

type investReq struct {
	Principal decimal.Decimal `json:"principal" validate:"required,gt=0,dec2"`
}

func (h *InvestmentHandler) Invest(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badPathParam(c, "loan_id")
	}
	var req investReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.engine.Invest(c.Request().Context(), settlement.InvestInput{
		UserID:         middleware.UserID(c),
		LoanID:         loanID,
		Principal:      req.Principal,
		IdempotencyKey: middleware.RequestID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *InvestmentHandler) ListForUser(c echo.Context) error {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return badPathParam(c, "user_id")
	}
	out, err := h.engine.ListInvestmentsForUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"investments": out})
}

func (h *InvestmentHandler) ListPayments(c echo.Context) error {
	investmentID, ok := pathID(c, "investment_id")
	if !ok {
		return badPathParam(c, "investment_id")
	}
	out, err := h.engine.ListPaymentsForInvestment(c.Request().Context(), investmentID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"payments": out})
}

func (h *InvestmentHandler) SimulatePayment(c echo.Context) error {
	investmentID, ok := pathID(c, "investment_id")
	if !ok {
		return badPathParam(c, "investment_id")
	}
	if ok, err := h.owns(c, investmentID); !ok {
		return err
	}
	p, err := h.engine.SimulateSinglePayment(c.Request().Context(), investmentID, middleware.RequestID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *InvestmentHandler) SimulatePayoff(c echo.Context) error {
	investmentID, ok := pathID(c, "investment_id")
	if !ok {
		return badPathParam(c, "investment_id")
	}
	if ok, err := h.owns(c, investmentID); !ok {
		return err
	}
	p, err := h.engine.SimulatePayoff(c.Request().Context(), investmentID, middleware.RequestID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// SimulateAllPayments always answers 200; per-investment failures are in
// the results.
func (h *InvestmentHandler) SimulateAllPayments(c echo.Context) error {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return badPathParam(c, "user_id")
	}
	if !sameUser(c, userID) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "Ax-User-Id does not match user_id"})
	}
	results, err := h.engine.SimulateAllPayments(c.Request().Context(), userID, middleware.RequestID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

// owns checks that the caller holds investmentID. On failure the response
// is already written and ok is false.
func (h *InvestmentHandler) owns(c echo.Context, investmentID string) (ok bool, err error) {
	inv, err := h.engine.GetInvestment(c.Request().Context(), investmentID)
	if err != nil {
		return false, writeError(c, err)
	}
	if !sameUser(c, inv.UserID) {
		return false, c.JSON(http.StatusForbidden, ErrorResponse{Error: "Ax-User-Id does not own investment"})
	}
	return true, nil
}
