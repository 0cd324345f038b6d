// Package settlement is the only place where money and funding state
// change. Every operation runs in one database transaction: wallet movement,
// investment bookkeeping and loan funding commit together or not at all.
//
// Row locks are always taken in the order investment, loan, wallet.
package settlement

import (
	"context"
	"log/slog"
	"time"

	"debt-ledger/internal/domain/investment"
	"debt-ledger/internal/domain/loan"
	"debt-ledger/internal/domain/uow"
	"debt-ledger/internal/domain/wallet"
	loanuc "debt-ledger/internal/usecase/loan"
	walletuc "debt-ledger/internal/usecase/wallet"
	"debt-ledger/pkg/accrual"
	"debt-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	descInvestment = "loan investment"
	descInterest   = "interest payment"
	descPrincipal  = "principal returned"
	descDeposit    = "wallet deposit"
)

type Usecase struct {
	loans       loan.Repository
	investments investment.Repository
	wallets     wallet.Repository
	uow         uow.UnitOfWork
	idem        IdempotencyStore
	flight      singleflight.Group
	log         *slog.Logger
	now         func() time.Time
}

// NewUsecase wires the engine. idem and logger may be nil.
func NewUsecase(
	loans loan.Repository,
	investments investment.Repository,
	wallets wallet.Repository,
	tx uow.UnitOfWork,
	idem IdempotencyStore,
	logger *slog.Logger,
) *Usecase {
	if idem == nil {
		idem = noopStore{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Usecase{
		loans:       loans,
		investments: investments,
		wallets:     wallets,
		uow:         tx,
		idem:        idem,
		log:         logger.With("component", "settlement"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Invest commits principal from the user's wallet to a funding loan.
func (u *Usecase) Invest(ctx context.Context, in InvestInput) (*InvestResult, error) {
	if in.UserID == "" || in.LoanID == "" || !in.Principal.IsPositive() || !wholeCents(in.Principal) {
		return nil, ErrInvalidInput
	}
	fingerprint := in.LoanID + "|" + in.Principal.StringFixed(2)
	out, err := idempotent(ctx, u, "invest", in.UserID, in.IdempotencyKey, fingerprint, func() (*InvestResult, error) {
		return u.invest(ctx, in)
	})
	return out, u.report(ctx, "invest", err, "user_id", in.UserID, "loan_id", in.LoanID)
}

func (u *Usecase) invest(ctx context.Context, in InvestInput) (*InvestResult, error) {
	var out *InvestResult
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusFunding {
			return loan.ErrNotFundable
		}
		if !l.Accepts(in.Principal) {
			return investment.ErrOutOfRange
		}

		if _, err := r.Wallets.Debit(ctx, in.UserID, wallet.TxInvestment, in.Principal, descInvestment); err != nil {
			return err
		}

		prior, err := r.Investments.CountForUserAndLoan(ctx, in.UserID, l.LoanID)
		if err != nil {
			return err
		}
		// a failed reservation aborts the tx, which also undoes the debit
		updated, err := r.Loans.ReserveFunding(ctx, l.LoanID, in.Principal, prior == 0)
		if err != nil {
			return err
		}

		freq := frequencyOf(l)
		payment, err := accrual.PeriodPaymentFor(in.Principal, l.RatePerYear, l.TermMonths, freq)
		if err != nil {
			return err
		}

		now := u.now()
		inv := &investment.Investment{
			InvestmentID:          id.NewID32(),
			UserID:                in.UserID,
			LoanID:                l.LoanID,
			Principal:             in.Principal,
			Status:                investment.StatusActive,
			ExpectedPeriodPayment: payment,
			TotalInterestEarned:   decimal.Zero,
			NextPaymentDate:       accrual.NextPaymentDate(now, freq),
			CreatedAt:             now,
		}
		if err := r.Investments.Create(ctx, inv); err != nil {
			return err
		}

		out = &InvestResult{Investment: toInvestmentDTO(inv), LoanFullyFunded: updated.FullyFunded()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.InfoContext(ctx, "investment created",
		"investment_id", out.Investment.InvestmentID,
		"loan_id", in.LoanID,
		"principal", in.Principal.String(),
		"loan_fully_funded", out.LoanFullyFunded)
	return out, nil
}

// SimulateSinglePayment pays one period of interest into the investor's
// wallet. It is caller-triggered; every call without an idempotency key
// pays one more period, up to the number of periods in the loan term.
func (u *Usecase) SimulateSinglePayment(ctx context.Context, investmentID, idempotencyKey string) (*PaymentDTO, error) {
	if investmentID == "" {
		return nil, ErrInvalidInput
	}
	out, err := idempotent(ctx, u, "payment", investmentID, idempotencyKey, investmentID, func() (*PaymentDTO, error) {
		return u.simulatePayment(ctx, investmentID)
	})
	return out, u.report(ctx, "simulate payment", err, "investment_id", investmentID)
}

func (u *Usecase) simulatePayment(ctx context.Context, investmentID string) (*PaymentDTO, error) {
	var out *PaymentDTO
	err := u.uow.WithinInvestmentTx(ctx, investmentID, func(r uow.Repos, inv *investment.Investment) error {
		if inv.Status != investment.StatusActive {
			return investment.ErrNotActive
		}
		l, err := r.Loans.GetByLoanID(ctx, inv.LoanID)
		if err != nil {
			return err
		}
		freq := frequencyOf(l)
		if inv.PaymentsMade >= accrual.Periods(l.TermMonths, freq) {
			return investment.ErrScheduleComplete
		}

		amount := inv.ExpectedPeriodPayment
		// zero-rate loans still advance the schedule, without a wallet line
		if amount.IsPositive() {
			if _, err := r.Wallets.Credit(ctx, inv.UserID, wallet.TxInterest, amount, descInterest); err != nil {
				return err
			}
		}
		p, err := r.Investments.RecordPayment(ctx, inv, investment.PaymentInterest, amount, u.now(),
			accrual.NextPaymentDate(inv.NextPaymentDate, freq))
		if err != nil {
			return err
		}
		out = toPaymentDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.InfoContext(ctx, "interest paid", "investment_id", investmentID, "amount", out.Amount.String())
	return out, nil
}

// SimulateAllPayments pays one interest period on every active investment of
// userID. Each investment settles in its own transaction; one failure does not
// stop the others.
func (u *Usecase) SimulateAllPayments(ctx context.Context, userID, idempotencyKey string) ([]BatchResult, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	out, err := idempotent(ctx, u, "payment-batch", userID, idempotencyKey, userID, func() ([]BatchResult, error) {
		active, err := u.investments.ListActiveForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		results := make([]BatchResult, 0, len(active))
		for _, inv := range active {
			res := BatchResult{InvestmentID: inv.InvestmentID}
			p, err := u.simulatePayment(ctx, inv.InvestmentID)
			if err != nil {
				err = classify(err)
				res.Err = err
				res.Error = err.Error()
				u.log.WarnContext(ctx, "batch payment failed", "investment_id", inv.InvestmentID, "error", err)
			} else {
				res.Payment = p
			}
			results = append(results, res)
		}
		return results, nil
	})
	return out, u.report(ctx, "simulate all payments", err, "user_id", userID)
}

// SimulatePayoff returns the principal to the investor and closes the
// investment. The loan is closed with its last active investment.
func (u *Usecase) SimulatePayoff(ctx context.Context, investmentID, idempotencyKey string) (*PaymentDTO, error) {
	if investmentID == "" {
		return nil, ErrInvalidInput
	}
	out, err := idempotent(ctx, u, "payoff", investmentID, idempotencyKey, investmentID, func() (*PaymentDTO, error) {
		return u.payoff(ctx, investmentID)
	})
	return out, u.report(ctx, "simulate payoff", err, "investment_id", investmentID)
}

func (u *Usecase) payoff(ctx context.Context, investmentID string) (*PaymentDTO, error) {
	var (
		out        *PaymentDTO
		loanClosed bool
	)
	err := u.uow.WithinInvestmentTx(ctx, investmentID, func(r uow.Repos, inv *investment.Investment) error {
		if inv.Status != investment.StatusActive {
			return investment.ErrNotActive
		}
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, inv.LoanID)
		if err != nil {
			return err
		}

		amount, err := accrual.PayoffAmount(inv.Principal)
		if err != nil {
			return err
		}
		if _, err := r.Wallets.Credit(ctx, inv.UserID, wallet.TxPrincipal, amount, descPrincipal); err != nil {
			return err
		}
		now := u.now()
		p, err := r.Investments.RecordPayment(ctx, inv, investment.PaymentPrincipal, amount, now,
			accrual.NextPaymentDate(inv.NextPaymentDate, frequencyOf(l)))
		if err != nil {
			return err
		}
		if err := r.Investments.MarkPaidOff(ctx, inv, now); err != nil {
			return err
		}

		if l.Status == loan.StatusActive {
			remaining, err := r.Investments.CountActiveForLoan(ctx, l.LoanID)
			if err != nil {
				return err
			}
			if remaining == 0 {
				if _, err := r.Loans.MarkPaidOff(ctx, l.LoanID); err != nil {
					return err
				}
				loanClosed = true
			}
		}
		out = toPaymentDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.InfoContext(ctx, "investment paid off",
		"investment_id", investmentID,
		"amount", out.Amount.String(),
		"loan_paid_off", loanClosed)
	return out, nil
}

// Deposit funds a wallet from outside the ledger (card top-up, bank
// transfer). It is the only credit that does not come from a loan.
func (u *Usecase) Deposit(ctx context.Context, userID string, amount decimal.Decimal, idempotencyKey string) (*walletuc.TransactionDTO, error) {
	if userID == "" || !amount.IsPositive() || !wholeCents(amount) {
		return nil, ErrInvalidInput
	}
	out, err := idempotent(ctx, u, "deposit", userID, idempotencyKey, amount.StringFixed(2), func() (*walletuc.TransactionDTO, error) {
		var dto walletuc.TransactionDTO
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			t, err := r.Wallets.Credit(ctx, userID, wallet.TxDeposit, amount, descDeposit)
			if err != nil {
				return err
			}
			dto = walletuc.ToTransactionDTO(t)
			return nil
		})
		if err != nil {
			return nil, err
		}
		u.log.InfoContext(ctx, "wallet deposit", "user_id", userID, "amount", amount.String())
		return &dto, nil
	})
	return out, u.report(ctx, "deposit", err, "user_id", userID)
}

func (u *Usecase) GetInvestment(ctx context.Context, investmentID string) (*InvestmentDTO, error) {
	inv, err := u.investments.GetByInvestmentID(ctx, investmentID)
	if err != nil {
		return nil, classify(err)
	}
	dto := toInvestmentDTO(inv)
	return &dto, nil
}

func (u *Usecase) GetLoan(ctx context.Context, loanID string) (*loanuc.LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, classify(err)
	}
	return loanuc.ToDTO(l), nil
}

// ListInvestmentsForUser returns every investment of userID. Active ones
// carry what is left of their interest schedule.
func (u *Usecase) ListInvestmentsForUser(ctx context.Context, userID string) ([]InvestmentDTO, error) {
	rows, err := u.investments.ListForUser(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	loans := map[string]*loan.Loan{}
	out := make([]InvestmentDTO, 0, len(rows))
	for i := range rows {
		inv := &rows[i]
		dto := toInvestmentDTO(inv)
		if inv.Status == investment.StatusActive {
			l, ok := loans[inv.LoanID]
			if !ok {
				if l, err = u.loans.GetByLoanID(ctx, inv.LoanID); err != nil {
					return nil, classify(err)
				}
				loans[inv.LoanID] = l
			}
			split, err := accrual.ScheduleSplit(inv.Principal, l.RatePerYear, l.TermMonths, frequencyOf(l), inv.PaymentsMade)
			if err != nil {
				return nil, err
			}
			dto.PeriodsRemaining = split.PeriodsRemaining
			dto.InterestRemaining = split.InterestRemaining
		}
		out = append(out, dto)
	}
	return out, nil
}

func (u *Usecase) ListPaymentsForInvestment(ctx context.Context, investmentID string) ([]PaymentDTO, error) {
	if _, err := u.investments.GetByInvestmentID(ctx, investmentID); err != nil {
		return nil, classify(err)
	}
	rows, err := u.investments.ListPayments(ctx, investmentID)
	if err != nil {
		return nil, classify(err)
	}
	out := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toPaymentDTO(&rows[i]))
	}
	return out, nil
}

func (u *Usecase) GetWalletBalance(ctx context.Context, userID string) (*walletuc.BalanceDTO, error) {
	bal, err := u.wallets.GetBalance(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	return &walletuc.BalanceDTO{UserID: userID, Balance: bal}, nil
}

// report classifies err and logs it: rule rejections at info, store
// failures at error.
func (u *Usecase) report(ctx context.Context, op string, err error, attrs ...any) error {
	if err == nil {
		return nil
	}
	err = classify(err)
	attrs = append(attrs, "op", op, "error", err)
	if IsBusinessError(err) {
		u.log.InfoContext(ctx, "settlement rejected", attrs...)
	} else {
		u.log.ErrorContext(ctx, "settlement failed", attrs...)
	}
	return err
}

// wholeCents reports whether d fits the ledger's 2-decimal columns without
// rounding.
func wholeCents(d decimal.Decimal) bool { return d.Equal(d.Round(2)) }

func frequencyOf(l *loan.Loan) accrual.Frequency {
	if l.PaymentFrequency.Valid() {
		return l.PaymentFrequency
	}
	return accrual.Monthly
}
