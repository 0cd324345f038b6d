package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// IdempotencyStore remembers the outcome of keyed requests for a retention
// window.
//
// Begin claims key for a new request. It returns the stored result when the
// key already completed with the same fingerprint, ErrIdempotencyKeyReused
// when the fingerprint differs and ErrRequestInProgress while another call
// holds the key. Abort releases a claim after a failed call so the client can
// retry with the same key. Complete records the fingerprint again so the
// reuse check holds even if the claim expired while fn ran.
type IdempotencyStore interface {
	Begin(ctx context.Context, key, fingerprint string) (replay []byte, err error)
	Complete(ctx context.Context, key, fingerprint string, result []byte) error
	Abort(ctx context.Context, key string) error
}

type noopStore struct{}

func (noopStore) Begin(context.Context, string, string) ([]byte, error)   { return nil, nil }
func (noopStore) Complete(context.Context, string, string, []byte) error { return nil }
func (noopStore) Abort(context.Context, string) error                     { return nil }

// idempotent runs fn at most once per (op, scope, key). Concurrent callers
// with the same key and fingerprint inside this process share one execution;
// a different fingerprint gets its own flight and is refused by the store.
func idempotent[T any](ctx context.Context, u *Usecase, op, scope, key, fingerprint string, fn func() (T, error)) (T, error) {
	var zero T
	if key == "" {
		return fn()
	}
	full := op + ":" + scope + ":" + key

	v, err, shared := u.flight.Do(full+"#"+fingerprint, func() (any, error) {
		replay, err := u.idem.Begin(ctx, full, fingerprint)
		if err != nil {
			return nil, storeErr(err)
		}
		if replay != nil {
			var out T
			if err := json.Unmarshal(replay, &out); err != nil {
				return nil, fmt.Errorf("%w: decode replay: %w", ErrPersistence, err)
			}
			u.log.InfoContext(ctx, "idempotent replay", "op", op, "key", key)
			return out, nil
		}

		out, err := fn()
		if err != nil {
			if abortErr := u.idem.Abort(ctx, full); abortErr != nil {
				u.log.WarnContext(ctx, "idempotency abort failed", "key", full, "error", abortErr)
			}
			return nil, err
		}
		payload, err := json.Marshal(out)
		if err == nil {
			err = u.idem.Complete(ctx, full, fingerprint, payload)
		}
		if err != nil {
			// the ledger change is committed; only the replay record is lost
			u.log.ErrorContext(ctx, "idempotency complete failed", "key", full, "error", err)
		}
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	if shared {
		u.log.DebugContext(ctx, "idempotent call coalesced", "op", op, "key", key)
	}
	return v.(T), nil
}

func storeErr(err error) error {
	if errors.Is(err, ErrRequestInProgress) || errors.Is(err, ErrIdempotencyKeyReused) {
		return err
	}
	return fmt.Errorf("%w: idempotency store: %w", ErrPersistence, err)
}
