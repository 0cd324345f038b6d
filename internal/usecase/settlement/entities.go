package settlement

import (
	"time"

	"debt-ledger/internal/domain/investment"

	"github.com/shopspring/decimal"
)

type InvestInput struct {
	UserID    string
	LoanID    string
	Principal decimal.Decimal
	// IdempotencyKey is optional; replays with the same key return the
	// first result without touching the ledger again.
	IdempotencyKey string
}

type InvestmentDTO struct {
	InvestmentID          string          `json:"investment_id"`
	UserID                string          `json:"user_id"`
	LoanID                string          `json:"loan_id"`
	Principal             decimal.Decimal `json:"principal"`
	Status                string          `json:"status"`
	ExpectedPeriodPayment decimal.Decimal `json:"expected_period_payment"`
	TotalInterestEarned   decimal.Decimal `json:"total_interest_earned"`
	PaymentsMade          int             `json:"payments_made"`
	PeriodsRemaining      int             `json:"periods_remaining"`
	InterestRemaining     decimal.Decimal `json:"interest_remaining"`
	NextPaymentDate       time.Time       `json:"next_payment_date"`
	PaidOffAt             *time.Time      `json:"paid_off_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

type InvestResult struct {
	Investment InvestmentDTO `json:"investment"`
	// LoanFullyFunded tells the caller the loan can now be activated.
	LoanFullyFunded bool `json:"loan_fully_funded"`
}

type PaymentDTO struct {
	PaymentID    string          `json:"payment_id"`
	InvestmentID string          `json:"investment_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	PaymentDate  time.Time       `json:"payment_date"`
}

// BatchResult is the outcome for one investment of SimulateAllPayments.
type BatchResult struct {
	InvestmentID string      `json:"investment_id"`
	Payment      *PaymentDTO `json:"payment,omitempty"`
	Error        string      `json:"error,omitempty"`
	Err          error       `json:"-"`
}

func (r BatchResult) OK() bool { return r.Error == "" }

func toInvestmentDTO(inv *investment.Investment) InvestmentDTO {
	return InvestmentDTO{
		InvestmentID:          inv.InvestmentID,
		UserID:                inv.UserID,
		LoanID:                inv.LoanID,
		Principal:             inv.Principal,
		Status:                string(inv.Status),
		ExpectedPeriodPayment: inv.ExpectedPeriodPayment,
		TotalInterestEarned:   inv.TotalInterestEarned,
		PaymentsMade:          inv.PaymentsMade,
		NextPaymentDate:       inv.NextPaymentDate,
		PaidOffAt:             inv.PaidOffAt,
		CreatedAt:             inv.CreatedAt,
	}
}

func toPaymentDTO(p *investment.Payment) *PaymentDTO {
	return &PaymentDTO{
		PaymentID:    p.PaymentID,
		InvestmentID: p.InvestmentID,
		Type:         string(p.Type),
		Amount:       p.Amount,
		PaymentDate:  p.PaymentDate,
	}
}
