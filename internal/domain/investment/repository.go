package investment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, inv *Investment) error
	GetByInvestmentID(ctx context.Context, investmentID string) (*Investment, error)
	// Row is locked until the surrounding transaction ends.
	GetByInvestmentIDForUpdate(ctx context.Context, investmentID string) (*Investment, error)

	ListForUser(ctx context.Context, userID string) ([]Investment, error)
	ListActiveForUser(ctx context.Context, userID string) ([]Investment, error)
	ListForLoan(ctx context.Context, loanID string) ([]Investment, error)
	CountActiveForLoan(ctx context.Context, loanID string) (int64, error)
	CountForUserAndLoan(ctx context.Context, userID, loanID string) (int64, error)

	// RecordPayment appends a Payment and advances the investment's schedule
	// to next (interest also grows TotalInterestEarned).
	RecordPayment(ctx context.Context, inv *Investment, typ PaymentType, amount decimal.Decimal, paidAt, next time.Time) (*Payment, error)
	MarkPaidOff(ctx context.Context, inv *Investment, at time.Time) error
	ListPayments(ctx context.Context, investmentID string) ([]Payment, error)
}
