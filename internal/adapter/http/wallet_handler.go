package http

import (
	"net/http"

	"debt-ledger/internal/adapter/middleware"
	"debt-ledger/internal/usecase/settlement"
	"debt-ledger/internal/usecase/wallet"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	uc     *wallet.Usecase
	engine *settlement.Usecase
}

func NewWalletHandler(uc *wallet.Usecase, engine *settlement.Usecase) *WalletHandler {
	return &WalletHandler{uc: uc, engine: engine}
}

type depositReq struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0,dec2"`
}

func (h *WalletHandler) Balance(c echo.Context) error {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return badPathParam(c, "user_id")
	}
	dto, err := h.engine.GetWalletBalance(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *WalletHandler) Deposit(c echo.Context) error {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return badPathParam(c, "user_id")
	}
	if !sameUser(c, userID) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "Ax-User-Id does not match user_id"})
	}
	var req depositReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	tx, err := h.engine.Deposit(c.Request().Context(), userID, req.Amount, middleware.RequestID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, tx)
}

func (h *WalletHandler) Transactions(c echo.Context) error {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return badPathParam(c, "user_id")
	}
	out, err := h.uc.Transactions(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"transactions": out})
}

func (h *WalletHandler) Reconcile(c echo.Context) error {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return badPathParam(c, "user_id")
	}
	dto, err := h.uc.Reconcile(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
