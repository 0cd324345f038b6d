package wallet

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository is the wallet ledger. Every balance change is paired with a
// Transaction insert; implementations must run both in one DB transaction.
type Repository interface {
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	Credit(ctx context.Context, userID string, typ TxType, amount decimal.Decimal, description string) (*Transaction, error)
	Debit(ctx context.Context, userID string, typ TxType, amount decimal.Decimal, description string) (*Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]Transaction, error)
	SumTransactions(ctx context.Context, userID string) (decimal.Decimal, error)
}
