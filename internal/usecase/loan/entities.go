package loan

import (
	"time"

	"debt-ledger/internal/domain/loan"
	"debt-ledger/pkg/accrual"

	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	Title            string            `json:"title"`
	TargetAmount     decimal.Decimal   `json:"target_amount"`
	RatePerYear      decimal.Decimal   `json:"rate_per_year"`
	TermMonths       int               `json:"term_months"`
	PaymentFrequency accrual.Frequency `json:"payment_frequency"`
	MinInvestment    decimal.Decimal   `json:"min_investment"`
	MaxInvestment    decimal.Decimal   `json:"max_investment"`
}

type LoanDTO struct {
	LoanID           string            `json:"loan_id"`
	Title            string            `json:"title"`
	TargetAmount     decimal.Decimal   `json:"target_amount"`
	FundedAmount     decimal.Decimal   `json:"funded_amount"`
	RemainingAmount  decimal.Decimal   `json:"remaining_amount"`
	RatePerYear      decimal.Decimal   `json:"rate_per_year"`
	TermMonths       int               `json:"term_months"`
	PaymentFrequency accrual.Frequency `json:"payment_frequency"`
	MinInvestment    decimal.Decimal   `json:"min_investment"`
	MaxInvestment    decimal.Decimal   `json:"max_investment"`
	Status           string            `json:"status"`
	InvestorCount    int               `json:"investor_count"`
	CreatedAt        time.Time         `json:"created_at"`
}

// ToDTO maps the stored loan onto its public representation.
func ToDTO(l *loan.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:           l.LoanID,
		Title:            l.Title,
		TargetAmount:     l.TargetAmount,
		FundedAmount:     l.FundedAmount,
		RemainingAmount:  l.Remaining(),
		RatePerYear:      l.RatePerYear,
		TermMonths:       l.TermMonths,
		PaymentFrequency: l.PaymentFrequency,
		MinInvestment:    l.MinInvestment,
		MaxInvestment:    l.MaxInvestment,
		Status:           string(l.Status),
		InvestorCount:    l.InvestorCount,
		CreatedAt:        l.CreatedAt,
	}
}
