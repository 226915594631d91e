package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var ErrCodeNotFound = errors.New("code not found or expired")

const (
	verifyPrefix = "verify_code:"
	resetPrefix  = "reset_code:"
)

// CodeRepo stores short-lived email verification and password reset
// codes. A code is keyed by account id; setting a new one replaces the
// previous code for that account.
type CodeRepo struct {
	client *goredis.Client
}

func NewCodeRepo(client *goredis.Client) *CodeRepo {
	return &CodeRepo{client: client}
}

func (r *CodeRepo) SetVerificationCode(ctx context.Context, accountID int64, code string, ttl time.Duration) error {
	return r.set(ctx, verifyPrefix, accountID, code, ttl)
}

func (r *CodeRepo) GetVerificationCode(ctx context.Context, accountID int64) (string, error) {
	return r.get(ctx, verifyPrefix, accountID)
}

func (r *CodeRepo) DeleteVerificationCode(ctx context.Context, accountID int64) error {
	return r.delete(ctx, verifyPrefix, accountID)
}

func (r *CodeRepo) SetResetCode(ctx context.Context, accountID int64, code string, ttl time.Duration) error {
	return r.set(ctx, resetPrefix, accountID, code, ttl)
}

func (r *CodeRepo) GetResetCode(ctx context.Context, accountID int64) (string, error) {
	return r.get(ctx, resetPrefix, accountID)
}

func (r *CodeRepo) DeleteResetCode(ctx context.Context, accountID int64) error {
	return r.delete(ctx, resetPrefix, accountID)
}

func (r *CodeRepo) set(ctx context.Context, prefix string, accountID int64, code string, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if accountID <= 0 || code == "" || ttl <= 0 {
		return fmt.Errorf("invalid code payload")
	}

	if err := r.client.Set(ctx, codeKey(prefix, accountID), code, ttl).Err(); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	return nil
}

func (r *CodeRepo) get(ctx context.Context, prefix string, accountID int64) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("redis client is nil")
	}

	code, err := r.client.Get(ctx, codeKey(prefix, accountID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrCodeNotFound
		}
		return "", fmt.Errorf("get code: %w", err)
	}

	return code, nil
}

func (r *CodeRepo) delete(ctx context.Context, prefix string, accountID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := r.client.Del(ctx, codeKey(prefix, accountID)).Err(); err != nil {
		return fmt.Errorf("delete code: %w", err)
	}

	return nil
}

func codeKey(prefix string, accountID int64) string {
	return fmt.Sprintf("%s%d", prefix, accountID)
}
