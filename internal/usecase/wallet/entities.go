package wallet

import (
	"time"

	"debt-ledger/internal/domain/wallet"

	"github.com/shopspring/decimal"
)

type BalanceDTO struct {
	UserID  string          `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

type TransactionDTO struct {
	TransactionID string          `json:"transaction_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ReconciliationDTO struct {
	UserID         string          `json:"user_id"`
	Balance        decimal.Decimal `json:"balance"`
	TransactionSum decimal.Decimal `json:"transaction_sum"`
	Consistent     bool            `json:"consistent"`
}

func ToTransactionDTO(t *wallet.Transaction) TransactionDTO {
	return TransactionDTO{
		TransactionID: t.TransactionID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
	}
}
