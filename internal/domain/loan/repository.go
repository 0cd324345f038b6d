package loan

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// Row is locked until the surrounding transaction ends.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	List(ctx context.Context, status Status) ([]Loan, error)
	Save(ctx context.Context, l *Loan) error

	// ReserveFunding atomically adds amount to funded_amount as long as the
	// target is not exceeded. investor_count grows only when newInvestor.
	ReserveFunding(ctx context.Context, loanID string, amount decimal.Decimal, newInvestor bool) (*Loan, error)
	// Activate moves funding to active, or straight on to paid_off when
	// every investment under the loan is already paid off.
	Activate(ctx context.Context, loanID string) (*Loan, error)
	// MarkPaidOff refuses while any investment under the loan is active.
	MarkPaidOff(ctx context.Context, loanID string) (*Loan, error)
}
