package wallet

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
)

type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxInvestment TxType = "investment"
	TxInterest   TxType = "interest"
	TxPrincipal  TxType = "principal"
)

// Wallet caches the balance of a user. Balance always equals the sum of the
// user's transactions.
type Wallet struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	UserID    string          `gorm:"size:32;not null;uniqueIndex:ux_wallets_user_id" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string { return "wallets" }

// Transaction is an append-only ledger line. Positive amounts are credits.
type Transaction struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	TransactionID string          `gorm:"size:32;uniqueIndex:ux_wallet_tx_transaction_id" json:"transaction_id"`
	UserID        string          `gorm:"size:32;not null;index:idx_wallet_tx_user" json:"user_id"`
	Type          TxType          `gorm:"type:enum('deposit','investment','interest','principal');not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Description   string          `gorm:"size:255" json:"description"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string { return "wallet_transactions" }
