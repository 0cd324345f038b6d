package loan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"debt-ledger/internal/domain/loan"
	"debt-ledger/internal/domain/uow"
	"debt-ledger/pkg/accrual"
	"debt-ledger/pkg/id"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid loan offering")

// Usecase manages loan offerings: creation, listing and activation.
// Funding and payoff transitions belong to the settlement engine.
type Usecase struct {
	repo loan.Repository
	uow  uow.UnitOfWork
}

func NewUsecase(r loan.Repository, tx uow.UnitOfWork) *Usecase { return &Usecase{repo: r, uow: tx} }

func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	if in.PaymentFrequency == "" {
		in.PaymentFrequency = accrual.Monthly
	}
	if err := validateOffering(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l := &loan.Loan{
		LoanID:           id.NewID32(),
		Title:            in.Title,
		TargetAmount:     in.TargetAmount,
		FundedAmount:     decimal.Zero,
		RatePerYear:      in.RatePerYear,
		TermMonths:       in.TermMonths,
		PaymentFrequency: in.PaymentFrequency,
		MinInvestment:    in.MinInvestment,
		MaxInvestment:    in.MaxInvestment,
		Status:           loan.StatusFunding,
		StatusUpdatedAt:  now,
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "loan offering created", "loan_id", l.LoanID, "target", l.TargetAmount.String())
	return ToDTO(l), nil
}

func (u *Usecase) List(ctx context.Context, status loan.Status) ([]LoanDTO, error) {
	rows, err := u.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out, nil
}

// Activate moves a fully funded loan from funding to active. A loan whose
// investments were all paid off while it was funding closes straight away.
func (u *Usecase) Activate(ctx context.Context, loanID string) (*LoanDTO, error) {
	if u.uow == nil {
		return nil, loan.ErrInvalidTransition
	}
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.Activate(ctx, loanID)
		if err != nil {
			return err
		}
		dto = ToDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "loan activated", "loan_id", loanID, "status", dto.Status)
	return dto, nil
}

func validateOffering(in CreateLoanInput) error {
	switch {
	case !in.TargetAmount.IsPositive(),
		in.RatePerYear.IsNegative(),
		in.TermMonths <= 0,
		!in.PaymentFrequency.Valid(),
		!in.MinInvestment.IsPositive(),
		in.MaxInvestment.LessThan(in.MinInvestment),
		in.MaxInvestment.GreaterThan(in.TargetAmount):
		return ErrInvalidInput
	}
	return nil
}
