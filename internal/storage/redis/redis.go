package redis

import (
	"context"
	"fmt"
	"time"

	"linker_auth/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still carries the caller's
// token, so an expired holder cannot free a lock taken after it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

// * AcquireResetLock takes the per-email lock that serialises the
// "check throttle, then insert" step of a reset request (atomic via SETNX).
// The returned token is needed to release it. Returns false when another
// request already holds it.
func (r *RedisRepo) AcquireResetLock(ctx context.Context, kind models.ResetKind, email string, ttl time.Duration) (string, bool, error) {
	const op = "storage.redis.AcquireResetLock"

	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, lockKey(kind, email), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

// * ReleaseResetLock frees the lock if it is still held under token.
// A lock that expired and was taken by someone else is left alone.
func (r *RedisRepo) ReleaseResetLock(ctx context.Context, kind models.ResetKind, email, token string) error {
	const op = "storage.redis.ReleaseResetLock"

	if err := releaseScript.Run(ctx, r.client, []string{lockKey(kind, email)}, token).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * Close closes the underlying client.
func (r *RedisRepo) Close() {
	r.client.Close()
}

func lockKey(kind models.ResetKind, email string) string {
	return fmt.Sprintf("reset:lock:%s:%s", kind, email)
}
