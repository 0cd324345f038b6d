package http

import (
	"net/http"

	domain "debt-ledger/internal/domain/loan"
	"debt-ledger/internal/usecase/loan"
	"debt-ledger/internal/usecase/settlement"
	"debt-ledger/pkg/accrual"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct {
	uc     *loan.Usecase
	engine *settlement.Usecase
}

func NewLoanHandler(uc *loan.Usecase, engine *settlement.Usecase) *LoanHandler {
	return &LoanHandler{uc: uc, engine: engine}
}

type createLoanReq struct {
	Title            string          `json:"title"             validate:"required,max=200"`
	TargetAmount     decimal.Decimal `json:"target_amount"     validate:"required,gt=0,dec2"`
	RatePerYear      decimal.Decimal `json:"rate_per_year"     validate:"gte=0,lte=100"`
	TermMonths       int             `json:"term_months"       validate:"required,gte=1,lte=360"`
	PaymentFrequency string          `json:"payment_frequency" validate:"omitempty,oneof=monthly quarterly"`
	MinInvestment    decimal.Decimal `json:"min_investment"    validate:"required,gt=0,dec2"`
	MaxInvestment    decimal.Decimal `json:"max_investment"    validate:"required,gt=0,dec2"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), loan.CreateLoanInput{
		Title:            req.Title,
		TargetAmount:     req.TargetAmount,
		RatePerYear:      req.RatePerYear,
		TermMonths:       req.TermMonths,
		PaymentFrequency: accrual.Frequency(req.PaymentFrequency),
		MinInvestment:    req.MinInvestment,
		MaxInvestment:    req.MaxInvestment,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badPathParam(c, "loan_id")
	}
	dto, err := h.engine.GetLoan(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// ListLoans takes an optional ?status= filter.
func (h *LoanHandler) ListLoans(c echo.Context) error {
	status := domain.Status(c.QueryParam("status"))
	switch status {
	case "", domain.StatusFunding, domain.StatusActive, domain.StatusPaidOff:
	default:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status filter"})
	}
	out, err := h.uc.List(c.Request().Context(), status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": out})
}

func (h *LoanHandler) ActivateLoan(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badPathParam(c, "loan_id")
	}
	dto, err := h.uc.Activate(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
