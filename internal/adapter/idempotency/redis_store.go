// Package idempotency keeps settlement results in Redis so a retried request
// with the same Ax-Request-Id replays the first outcome.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"debt-ledger/internal/usecase/settlement"

	"github.com/redis/go-redis/v9"
)

const (
	// How long an in-progress claim survives a crashed caller.
	provisionalLockTTL = 60 * time.Second
	keyPrefix          = "idemp:ledger:"
)

type entry struct {
	InProgress  bool      `json:"in_progress"`
	Fingerprint string    `json:"fingerprint"`
	Result      []byte    `json:"result,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RedisStore implements settlement.IdempotencyStore.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Begin(ctx context.Context, key, fingerprint string) ([]byte, error) {
	k := redisKey(key)
	fp := hash(fingerprint)
	ok, err := s.provisionalSet(ctx, k, entry{InProgress: true, Fingerprint: fp, CreatedAt: nowUTC()})
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}

	cur, err := s.load(ctx, k)
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; treat as a fresh claim
		return s.Begin(ctx, key, fingerprint)
	}
	if err != nil {
		return nil, err
	}
	if cur.Fingerprint != fp {
		return nil, settlement.ErrIdempotencyKeyReused
	}
	if cur.InProgress {
		return nil, settlement.ErrRequestInProgress
	}
	return cur.Result, nil
}

// Complete stores result under key. The fingerprint is written again so an
// entry whose claim expired mid-call still refuses a different request.
func (s *RedisStore) Complete(ctx context.Context, key, fingerprint string, result []byte) error {
	k := redisKey(key)
	cur, err := s.load(ctx, k)
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	cur.InProgress = false
	cur.Fingerprint = hash(fingerprint)
	cur.Result = result
	cur.CreatedAt = nowUTC()
	payload, _ := json.Marshal(cur)
	return s.rdb.Set(ctx, k, payload, s.ttl).Err()
}

func (s *RedisStore) Abort(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, redisKey(key)).Err()
}

func (s *RedisStore) provisionalSet(ctx context.Context, key string, e entry) (bool, error) {
	payload, _ := json.Marshal(e)
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func (s *RedisStore) load(ctx context.Context, key string) (entry, error) {
	var e entry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return e, err
	}
	return e, nil
}

func redisKey(key string) string { return keyPrefix + key }

func hash(s string) string { h := sha256.Sum256([]byte(s)); return hex.EncodeToString(h[:]) }

func nowUTC() time.Time { return time.Now().UTC() }
