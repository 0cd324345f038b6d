package investment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("investment not found")
	ErrOutOfRange        = errors.New("principal outside the loan's investment range")
	ErrNotActive         = errors.New("investment is not active")
	ErrInvalidTransition = errors.New("invalid investment status transition")
	// every interest period of the term has already been paid
	ErrScheduleComplete = errors.New("investment interest schedule already fully paid")
)

type Status string

const (
	StatusActive  Status = "active"
	StatusPaidOff Status = "paid_off"
)

type PaymentType string

const (
	PaymentInterest  PaymentType = "interest"
	PaymentPrincipal PaymentType = "principal"
)

// Investment is one user's stake in one loan. Rows are never deleted.
type Investment struct {
	ID                    uint64          `gorm:"primaryKey;column:id" json:"-"`
	InvestmentID          string          `gorm:"size:32;uniqueIndex:ux_investments_investment_id" json:"investment_id"`
	UserID                string          `gorm:"size:32;not null;index:idx_investments_user" json:"user_id"`
	LoanID                string          `gorm:"size:32;not null;index:idx_investments_loan" json:"loan_id"`
	Principal             decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"principal"`
	Status                Status          `gorm:"type:enum('active','paid_off');default:'active'" json:"status"`
	ExpectedPeriodPayment decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"expected_period_payment"`
	TotalInterestEarned   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_interest_earned"`
	PaymentsMade          int             `gorm:"not null;default:0" json:"payments_made"`
	NextPaymentDate       time.Time       `json:"next_payment_date"`
	PaidOffAt             *time.Time      `json:"paid_off_at,omitempty"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Investment) TableName() string { return "loan_investments" }

// Payment is an immutable disbursement against an investment.
type Payment struct {
	ID           uint64          `gorm:"primaryKey;column:id" json:"-"`
	PaymentID    string          `gorm:"size:32;uniqueIndex:ux_payments_payment_id" json:"payment_id"`
	InvestmentID string          `gorm:"size:32;not null;index:idx_payments_investment" json:"investment_id"`
	Type         PaymentType     `gorm:"type:enum('interest','principal');not null" json:"type"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	PaymentDate  time.Time       `gorm:"not null" json:"payment_date"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string { return "loan_payments" }
