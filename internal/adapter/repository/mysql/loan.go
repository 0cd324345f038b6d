package mysql

import (
	"context"
	"errors"
	"time"

	invDomain "debt-ledger/internal/domain/investment"
	loanDomain "debt-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return loanResult(&out, res.Error)
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return loanResult(&out, res.Error)
}

func (r *LoanRepository) List(ctx context.Context, status loanDomain.Status) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return out, q.Find(&out).Error
}

// ReserveFunding is a compare-and-increment: the guard and the increment are
// one UPDATE, so concurrent investors can never push funded_amount past
// target_amount.
func (r *LoanRepository) ReserveFunding(ctx context.Context, loanID string, amount decimal.Decimal, newInvestor bool) (*loanDomain.Loan, error) {
	if !amount.IsPositive() {
		return nil, loanDomain.ErrInsufficientCapacity
	}
	inc := 0
	if newInvestor {
		inc = 1
	}
	amt := amount.StringFixed(2)
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("loan_id = ? AND status = ? AND funded_amount + CAST(? AS DECIMAL(18,2)) <= target_amount",
			loanID, loanDomain.StatusFunding, amt).
		Updates(map[string]any{
			"funded_amount":  gorm.Expr("funded_amount + CAST(? AS DECIMAL(18,2))", amt),
			"investor_count": gorm.Expr("investor_count + ?", inc),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	l, err := r.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		if l.Status != loanDomain.StatusFunding {
			return nil, loanDomain.ErrNotFundable
		}
		return nil, loanDomain.ErrInsufficientCapacity
	}
	return l, nil
}

func (r *LoanRepository) Activate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	l, err := r.GetByLoanIDForUpdate(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != loanDomain.StatusFunding || !l.FullyFunded() {
		return nil, loanDomain.ErrInvalidTransition
	}
	if err := r.transition(ctx, l, loanDomain.StatusFunding, loanDomain.StatusActive); err != nil {
		return nil, err
	}
	total, active, err := r.investmentCounts(ctx, loanID)
	if err != nil {
		return nil, err
	}
	// every investor was paid off while the loan was still funding
	if total > 0 && active == 0 {
		if err := r.transition(ctx, l, loanDomain.StatusActive, loanDomain.StatusPaidOff); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (r *LoanRepository) MarkPaidOff(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	l, err := r.GetByLoanIDForUpdate(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != loanDomain.StatusActive {
		return nil, loanDomain.ErrInvalidTransition
	}
	_, active, err := r.investmentCounts(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, loanDomain.ErrInvalidTransition
	}
	return l, r.transition(ctx, l, loanDomain.StatusActive, loanDomain.StatusPaidOff)
}

// investmentCounts returns how many investments the loan has and how many
// of them are still active.
func (r *LoanRepository) investmentCounts(ctx context.Context, loanID string) (total, active int64, err error) {
	err = r.db.WithContext(ctx).Model(&invDomain.Investment{}).
		Where("loan_id = ?", loanID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).Model(&invDomain.Investment{}).
		Where("loan_id = ? AND status = ?", loanID, invDomain.StatusActive).
		Count(&active).Error
	return total, active, err
}

func (r *LoanRepository) transition(ctx context.Context, l *loanDomain.Loan, from, to loanDomain.Status) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("id = ? AND status = ?", l.ID, from).
		Updates(map[string]any{"status": to, "status_updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrInvalidTransition
	}
	l.Status = to
	l.StatusUpdatedAt = now
	return nil
}

func loanResult(l *loanDomain.Loan, err error) (*loanDomain.Loan, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
