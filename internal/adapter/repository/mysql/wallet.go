package mysql

import (
	"context"
	"errors"

	walletDomain "debt-ledger/internal/domain/wallet"
	"debt-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository keeps wallets.balance and wallet_transactions in step.
// Credit and Debit open their own transaction when called on a plain repo
// and join the caller's when bound to a UoW tx.
type WalletRepository struct{ db *gorm.DB }

func NewWalletRepository(db *gorm.DB) *WalletRepository { return &WalletRepository{db: db} }

func (r *WalletRepository) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var w walletDomain.Wallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

func (r *WalletRepository) Credit(ctx context.Context, userID string, typ walletDomain.TxType, amount decimal.Decimal, description string) (*walletDomain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, walletDomain.ErrInvalidAmount
	}
	var out *walletDomain.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// make sure the wallet row exists, then lock it
		seed := walletDomain.Wallet{UserID: userID, Balance: decimal.Zero}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}
		w, err := lockWallet(tx, userID)
		if err != nil {
			return err
		}
		out, err = applyDelta(tx, w, typ, amount, description)
		return err
	})
	return out, err
}

func (r *WalletRepository) Debit(ctx context.Context, userID string, typ walletDomain.TxType, amount decimal.Decimal, description string) (*walletDomain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, walletDomain.ErrInvalidAmount
	}
	var out *walletDomain.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := lockWallet(tx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return walletDomain.ErrInsufficientFunds
		}
		if err != nil {
			return err
		}
		if w.Balance.LessThan(amount) {
			return walletDomain.ErrInsufficientFunds
		}
		out, err = applyDelta(tx, w, typ, amount.Neg(), description)
		return err
	})
	return out, err
}

func (r *WalletRepository) ListTransactions(ctx context.Context, userID string) ([]walletDomain.Transaction, error) {
	var out []walletDomain.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// SumTransactions recomputes the balance from the ledger lines.
func (r *WalletRepository) SumTransactions(ctx context.Context, userID string) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&walletDomain.Transaction{}).
		Where("user_id = ?", userID).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}

func lockWallet(tx *gorm.DB, userID string) (*walletDomain.Wallet, error) {
	var w walletDomain.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// applyDelta inserts the ledger line first, then moves the cached balance.
// Both writes share tx, so neither is visible without the other.
func applyDelta(tx *gorm.DB, w *walletDomain.Wallet, typ walletDomain.TxType, delta decimal.Decimal, description string) (*walletDomain.Transaction, error) {
	t := &walletDomain.Transaction{
		TransactionID: id.NewID32(),
		UserID:        w.UserID,
		Type:          typ,
		Amount:        delta,
		Description:   description,
	}
	if err := tx.Create(t).Error; err != nil {
		return nil, err
	}
	newBal := w.Balance.Add(delta)
	if err := tx.Model(&walletDomain.Wallet{}).
		Where("id = ?", w.ID).
		Update("balance", newBal).Error; err != nil {
		return nil, err
	}
	w.Balance = newBal
	return t, nil
}
