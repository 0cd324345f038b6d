package loanmock

import (
	"context"

	domain "debt-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled; unset writes are no-ops.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListFn                 func(ctx context.Context, status domain.Status) ([]domain.Loan, error)
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	ReserveFundingFn       func(ctx context.Context, loanID string, amount decimal.Decimal, newInvestor bool) (*domain.Loan, error)
	ActivateFn             func(ctx context.Context, loanID string) (*domain.Loan, error)
	MarkPaidOffFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}
func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, status domain.Status) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, status)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) ReserveFunding(ctx context.Context, loanID string, amount decimal.Decimal, newInvestor bool) (*domain.Loan, error) {
	if m.ReserveFundingFn != nil {
		return m.ReserveFundingFn(ctx, loanID, amount, newInvestor)
	}
	return nil, context.Canceled
}

func (m *Repo) Activate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.ActivateFn != nil {
		return m.ActivateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) MarkPaidOff(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.MarkPaidOffFn != nil {
		return m.MarkPaidOffFn(ctx, loanID)
	}
	return nil, context.Canceled
}
