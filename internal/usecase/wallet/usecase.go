package wallet

import (
	"context"
	"log/slog"

	"debt-ledger/internal/domain/wallet"
)

// Usecase exposes the wallet ledger's transaction log and reconciliation.
// Balances and deposits go through the settlement engine.
type Usecase struct{ repo wallet.Repository }

func NewUsecase(r wallet.Repository) *Usecase { return &Usecase{repo: r} }

func (u *Usecase) Transactions(ctx context.Context, userID string) ([]TransactionDTO, error) {
	rows, err := u.repo.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]TransactionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ToTransactionDTO(&rows[i]))
	}
	return out, nil
}

// Reconcile compares the cached balance with the sum of the ledger lines.
func (u *Usecase) Reconcile(ctx context.Context, userID string) (*ReconciliationDTO, error) {
	bal, err := u.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum, err := u.repo.SumTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok := bal.Equal(sum)
	if !ok {
		slog.ErrorContext(ctx, "wallet out of balance", "user_id", userID, "balance", bal.String(), "sum", sum.String())
	}
	return &ReconciliationDTO{UserID: userID, Balance: bal, TransactionSum: sum, Consistent: ok}, nil
}
