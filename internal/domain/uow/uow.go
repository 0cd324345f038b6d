package uow

import (
	"context"

	"debt-ledger/internal/domain/investment"
	"debt-ledger/internal/domain/loan"
	"debt-ledger/internal/domain/wallet"
)

// Repos are bound to one database transaction.
type Repos struct {
	Loans       loan.Repository
	Investments investment.Repository
	Wallets     wallet.Repository
}

type UnitOfWork interface {
	// plain tx; any error returned by fn rolls everything back
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
	// convenience: lock investment first, then pass it in
	WithinInvestmentTx(ctx context.Context, investmentID string, fn func(r Repos, inv *investment.Investment) error) error
}
