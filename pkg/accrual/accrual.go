// Package accrual computes interest schedules for interest-only loan
// investments. Every function is pure; amounts are rounded to cents with
// banker's rounding.
package accrual

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid accrual input")

// Frequency is how often an investment pays interest.
type Frequency string

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
)

const currencyPlaces = 2

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Months returns the number of calendar months covered by one period.
// Unknown frequencies fall back to monthly.
func (f Frequency) Months() int {
	if f == Quarterly {
		return 3
	}
	return 1
}

func (f Frequency) Valid() bool { return f == Monthly || f == Quarterly }

// PeriodPayment returns the monthly interest owed on principal:
// principal * (annualRatePercent/100) / 12.
func PeriodPayment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	return PeriodPaymentFor(principal, annualRatePercent, termMonths, Monthly)
}

// PeriodPaymentFor is PeriodPayment scaled to the months of one period of f.
func PeriodPaymentFor(principal, annualRatePercent decimal.Decimal, termMonths int, f Frequency) (decimal.Decimal, error) {
	if err := validate(principal, annualRatePercent, termMonths); err != nil {
		return decimal.Zero, err
	}
	monthly := principal.Mul(annualRatePercent).Div(hundred).Div(twelve)
	return monthly.Mul(decimal.NewFromInt(int64(f.Months()))).RoundBank(currencyPlaces), nil
}

// PayoffAmount is the cash returned on full payoff. No prepayment fee applies.
func PayoffAmount(principal decimal.Decimal) (decimal.Decimal, error) {
	if principal.IsNegative() {
		return decimal.Zero, ErrInvalidInput
	}
	return principal.RoundBank(currencyPlaces), nil
}

// NextPaymentDate advances from by one period of f.
func NextPaymentDate(from time.Time, f Frequency) time.Time {
	return from.AddDate(0, f.Months(), 0)
}

// Periods returns how many payment periods fit in termMonths (rounded up).
func Periods(termMonths int, f Frequency) int {
	if termMonths <= 0 {
		return 0
	}
	m := f.Months()
	return (termMonths + m - 1) / m
}

// Split summarises an investment after periodsElapsed interest payments.
type Split struct {
	InterestPaid         decimal.Decimal
	InterestRemaining    decimal.Decimal
	PrincipalOutstanding decimal.Decimal
	PeriodsRemaining     int
}

// ScheduleSplit reports interest paid versus interest still due over the
// term. Principal is repaid in full at payoff, so it stays outstanding
// until then.
func ScheduleSplit(principal, annualRatePercent decimal.Decimal, termMonths int, f Frequency, periodsElapsed int) (Split, error) {
	if periodsElapsed < 0 {
		return Split{}, ErrInvalidInput
	}
	payment, err := PeriodPaymentFor(principal, annualRatePercent, termMonths, f)
	if err != nil {
		return Split{}, err
	}
	total := Periods(termMonths, f)
	remaining := total - periodsElapsed
	if remaining < 0 {
		remaining = 0
	}
	return Split{
		InterestPaid:         payment.Mul(decimal.NewFromInt(int64(periodsElapsed))),
		InterestRemaining:    payment.Mul(decimal.NewFromInt(int64(remaining))),
		PrincipalOutstanding: principal,
		PeriodsRemaining:     remaining,
	}, nil
}

func validate(principal, rate decimal.Decimal, termMonths int) error {
	if principal.IsNegative() || rate.IsNegative() || termMonths <= 0 {
		return ErrInvalidInput
	}
	return nil
}
