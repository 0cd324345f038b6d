package settlement

import (
	"context"
	"errors"
	"fmt"

	"debt-ledger/internal/domain/investment"
	"debt-ledger/internal/domain/loan"
	"debt-ledger/internal/domain/wallet"
	"debt-ledger/pkg/accrual"
)

var (
	ErrInvalidInput = errors.New("invalid settlement request")
	// ErrPersistence wraps store failures. The call had no effect and may
	// be retried.
	ErrPersistence          = errors.New("ledger store unavailable")
	ErrRequestInProgress    = errors.New("request with this idempotency key is already in progress")
	ErrIdempotencyKeyReused = errors.New("idempotency key reused with a different request")
)

var businessErrors = []error{
	ErrInvalidInput,
	ErrRequestInProgress,
	ErrIdempotencyKeyReused,
	accrual.ErrInvalidInput,
	loan.ErrNotFound,
	loan.ErrNotFundable,
	loan.ErrInsufficientCapacity,
	loan.ErrInvalidTransition,
	investment.ErrNotFound,
	investment.ErrOutOfRange,
	investment.ErrNotActive,
	investment.ErrInvalidTransition,
	investment.ErrScheduleComplete,
	wallet.ErrInsufficientFunds,
	wallet.ErrInvalidAmount,
}

// IsBusinessError reports whether err is an expected rule rejection rather
// than an infrastructure failure.
func IsBusinessError(err error) bool {
	for _, known := range businessErrors {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

// classify leaves rule rejections untouched and tags everything else as a
// persistence failure.
func classify(err error) error {
	if err == nil || IsBusinessError(err) || errors.Is(err, ErrPersistence) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
