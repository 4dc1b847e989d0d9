package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"OWS_Community/internal/repository"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrExtendFailed     = errors.New("token extend failed")
	ErrTokenDeleted     = errors.New("token delete failed")
)

const (
	UserTokenPrefix    = "login:user:token"
	RefreshTokenPrefix = "login:user:refresh"
)

// SessionRepository 每个用户只保存一个有效 token，新登录会顶掉旧 token
type SessionRepository struct {
	RDB *redis.Client
}

func (r *SessionRepository) key(userID uint64) string {
	return fmt.Sprintf("%s:%d", UserTokenPrefix, userID)
}

func (r *SessionRepository) refreshKey(userID uint64) string {
	return fmt.Sprintf("%s:%d", RefreshTokenPrefix, userID)
}

func (r *SessionRepository) Save(ctx context.Context, userID uint64, token string, ttl time.Duration) error {
	if err := r.RDB.Set(ctx, r.key(userID), token, ttl).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, userID uint64) (string, error) {
	return r.get(ctx, r.key(userID))
}

func (r *SessionRepository) SaveRefresh(ctx context.Context, userID uint64, tokenID string, ttl time.Duration) error {
	if err := r.RDB.Set(ctx, r.refreshKey(userID), tokenID, ttl).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *SessionRepository) GetRefresh(ctx context.Context, userID uint64) (string, error) {
	return r.get(ctx, r.refreshKey(userID))
}

func (r *SessionRepository) get(ctx context.Context, key string) (string, error) {
	token, err := r.RDB.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

func (r *SessionRepository) Extend(ctx context.Context, userID uint64, ttl time.Duration) error {
	if err := r.RDB.Expire(ctx, r.key(userID), ttl).Err(); err != nil {
		return ErrExtendFailed
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID uint64) error {
	if err := r.RDB.Del(ctx, r.key(userID), r.refreshKey(userID)).Err(); err != nil {
		return ErrTokenDeleted
	}
	return nil
}
