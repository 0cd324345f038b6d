package mysql

import (
	"context"
	"errors"
	"time"

	invDomain "debt-ledger/internal/domain/investment"
	"debt-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvestmentRepository struct{ db *gorm.DB }

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(ctx context.Context, inv *invDomain.Investment) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvestmentRepository) GetByInvestmentID(ctx context.Context, investmentID string) (*invDomain.Investment, error) {
	var out invDomain.Investment
	res := r.db.WithContext(ctx).Where("investment_id = ?", investmentID).First(&out)
	return investmentResult(&out, res.Error)
}

func (r *InvestmentRepository) GetByInvestmentIDForUpdate(ctx context.Context, investmentID string) (*invDomain.Investment, error) {
	var out invDomain.Investment
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("investment_id = ?", investmentID).
		First(&out)
	return investmentResult(&out, res.Error)
}

func (r *InvestmentRepository) ListForUser(ctx context.Context, userID string) ([]invDomain.Investment, error) {
	var out []invDomain.Investment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *InvestmentRepository) ListActiveForUser(ctx context.Context, userID string) ([]invDomain.Investment, error) {
	var out []invDomain.Investment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, invDomain.StatusActive).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *InvestmentRepository) ListForLoan(ctx context.Context, loanID string) ([]invDomain.Investment, error) {
	var out []invDomain.Investment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *InvestmentRepository) CountActiveForLoan(ctx context.Context, loanID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&invDomain.Investment{}).
		Where("loan_id = ? AND status = ?", loanID, invDomain.StatusActive).
		Count(&n).Error
	return n, err
}

func (r *InvestmentRepository) CountForUserAndLoan(ctx context.Context, userID, loanID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&invDomain.Investment{}).
		Where("user_id = ? AND loan_id = ?", userID, loanID).
		Count(&n).Error
	return n, err
}

func (r *InvestmentRepository) RecordPayment(
	ctx context.Context,
	inv *invDomain.Investment,
	typ invDomain.PaymentType,
	amount decimal.Decimal,
	paidAt, next time.Time,
) (*invDomain.Payment, error) {
	p := &invDomain.Payment{
		PaymentID:    id.NewID32(),
		InvestmentID: inv.InvestmentID,
		Type:         typ,
		Amount:       amount,
		PaymentDate:  paidAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}

	earned := inv.TotalInterestEarned
	if typ == invDomain.PaymentInterest {
		earned = earned.Add(amount)
	}
	res := r.db.WithContext(ctx).Model(&invDomain.Investment{}).
		Where("id = ?", inv.ID).
		Updates(map[string]any{
			"total_interest_earned": earned,
			"payments_made":         inv.PaymentsMade + 1,
			"next_payment_date":     next.UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	inv.TotalInterestEarned = earned
	inv.PaymentsMade++
	inv.NextPaymentDate = next.UTC()
	return p, nil
}

func (r *InvestmentRepository) MarkPaidOff(ctx context.Context, inv *invDomain.Investment, at time.Time) error {
	at = at.UTC()
	res := r.db.WithContext(ctx).Model(&invDomain.Investment{}).
		Where("id = ? AND status = ?", inv.ID, invDomain.StatusActive).
		Updates(map[string]any{"status": invDomain.StatusPaidOff, "paid_off_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return invDomain.ErrInvalidTransition
	}
	inv.Status = invDomain.StatusPaidOff
	inv.PaidOffAt = &at
	return nil
}

func (r *InvestmentRepository) ListPayments(ctx context.Context, investmentID string) ([]invDomain.Payment, error) {
	var out []invDomain.Payment
	err := r.db.WithContext(ctx).
		Where("investment_id = ?", investmentID).
		Order("payment_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func investmentResult(inv *invDomain.Investment, err error) (*invDomain.Investment, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}
