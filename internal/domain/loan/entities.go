package loan

import (
	"errors"
	"time"

	"debt-ledger/pkg/accrual"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("loan not found")
	ErrNotFundable          = errors.New("loan is not accepting investments")
	ErrInsufficientCapacity = errors.New("investment exceeds remaining loan capacity")
	ErrInvalidTransition    = errors.New("invalid loan status transition")
)

type Status string

const (
	StatusFunding Status = "funding"
	StatusActive  Status = "active"
	StatusPaidOff Status = "paid_off"
)

type Loan struct {
	ID               uint64            `gorm:"primaryKey;column:id" json:"-"`
	LoanID           string            `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	Title            string            `gorm:"size:200" json:"title"`
	TargetAmount     decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"target_amount"`
	FundedAmount     decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0" json:"funded_amount"`
	RatePerYear      decimal.Decimal   `gorm:"type:decimal(6,3);not null" json:"rate_per_year"`
	TermMonths       int               `gorm:"not null" json:"term_months"`
	PaymentFrequency accrual.Frequency `gorm:"type:enum('monthly','quarterly');default:'monthly'" json:"payment_frequency"`
	MinInvestment    decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"min_investment"`
	MaxInvestment    decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"max_investment"`
	Status           Status            `gorm:"type:enum('funding','active','paid_off');default:'funding';index:idx_loans_status" json:"status"`
	InvestorCount    int               `gorm:"not null;default:0" json:"investor_count"`
	StatusUpdatedAt  time.Time         `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// FullyFunded reports whether the funding target has been reached.
func (l *Loan) FullyFunded() bool { return l.FundedAmount.GreaterThanOrEqual(l.TargetAmount) }

// Remaining is the capacity still open to investors.
func (l *Loan) Remaining() decimal.Decimal {
	r := l.TargetAmount.Sub(l.FundedAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Accepts reports whether principal is inside the loan's ticket range.
func (l *Loan) Accepts(principal decimal.Decimal) bool {
	return principal.GreaterThanOrEqual(l.MinInvestment) && principal.LessThanOrEqual(l.MaxInvestment)
}
