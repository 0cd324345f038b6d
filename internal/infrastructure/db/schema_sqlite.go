package db

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SQLite has no ENUM type; these mirror the domain tables column for column
// with text status columns instead.

type loanSQLite struct {
	ID               uint64          `gorm:"primaryKey;column:id"`
	LoanID           string          `gorm:"size:32;uniqueIndex:ux_loans_loan_id;column:loan_id"`
	Title            string          `gorm:"size:200;column:title"`
	TargetAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;column:target_amount"`
	FundedAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0;column:funded_amount"`
	RatePerYear      decimal.Decimal `gorm:"type:decimal(6,3);not null;column:rate_per_year"`
	TermMonths       int             `gorm:"not null;column:term_months"`
	PaymentFrequency string          `gorm:"type:text;default:'monthly';column:payment_frequency"`
	MinInvestment    decimal.Decimal `gorm:"type:decimal(18,2);not null;column:min_investment"`
	MaxInvestment    decimal.Decimal `gorm:"type:decimal(18,2);not null;column:max_investment"`
	Status           string          `gorm:"type:text;default:'funding';index:idx_loans_status;column:status"`
	InvestorCount    int             `gorm:"not null;default:0;column:investor_count"`
	StatusUpdatedAt  time.Time       `gorm:"column:status_updated_at"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index;column:deleted_at"`
}

func (loanSQLite) TableName() string { return "loans" }

type investmentSQLite struct {
	ID                    uint64          `gorm:"primaryKey;column:id"`
	InvestmentID          string          `gorm:"size:32;uniqueIndex:ux_investments_investment_id;column:investment_id"`
	UserID                string          `gorm:"size:32;not null;index:idx_investments_user;column:user_id"`
	LoanID                string          `gorm:"size:32;not null;index:idx_investments_loan;column:loan_id"`
	Principal             decimal.Decimal `gorm:"type:decimal(18,2);not null;column:principal"`
	Status                string          `gorm:"type:text;default:'active';column:status"`
	ExpectedPeriodPayment decimal.Decimal `gorm:"type:decimal(18,2);not null;column:expected_period_payment"`
	TotalInterestEarned   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0;column:total_interest_earned"`
	PaymentsMade          int             `gorm:"not null;default:0;column:payments_made"`
	NextPaymentDate       time.Time       `gorm:"column:next_payment_date"`
	PaidOffAt             *time.Time      `gorm:"column:paid_off_at"`
	CreatedAt             time.Time       `gorm:"column:created_at"`
	UpdatedAt             time.Time       `gorm:"column:updated_at"`
}

func (investmentSQLite) TableName() string { return "loan_investments" }

type paymentSQLite struct {
	ID           uint64          `gorm:"primaryKey;column:id"`
	PaymentID    string          `gorm:"size:32;uniqueIndex:ux_payments_payment_id;column:payment_id"`
	InvestmentID string          `gorm:"size:32;not null;index:idx_payments_investment;column:investment_id"`
	Type         string          `gorm:"type:text;not null;column:type"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null;column:amount"`
	PaymentDate  time.Time       `gorm:"not null;column:payment_date"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
}

func (paymentSQLite) TableName() string { return "loan_payments" }

type walletSQLite struct {
	ID        uint64          `gorm:"primaryKey;column:id"`
	UserID    string          `gorm:"size:32;not null;uniqueIndex:ux_wallets_user_id;column:user_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0;column:balance"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (walletSQLite) TableName() string { return "wallets" }

type walletTxSQLite struct {
	ID            uint64          `gorm:"primaryKey;column:id"`
	TransactionID string          `gorm:"size:32;uniqueIndex:ux_wallet_tx_transaction_id;column:transaction_id"`
	UserID        string          `gorm:"size:32;not null;index:idx_wallet_tx_user;column:user_id"`
	Type          string          `gorm:"type:text;not null;column:type"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null;column:amount"`
	Description   string          `gorm:"size:255;column:description"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
}

func (walletTxSQLite) TableName() string { return "wallet_transactions" }

// SQLiteModels returns the SQLite-safe schema for AutoMigrate.
func SQLiteModels() []any {
	return []any{
		&loanSQLite{},
		&investmentSQLite{},
		&paymentSQLite{},
		&walletSQLite{},
		&walletTxSQLite{},
	}
}
