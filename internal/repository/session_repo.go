package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ecommerce-auth/internal/model"
)

const sessionKeyPrefix = "refreshToken:"

// SessionRepository keeps at most one refresh token per user. Storing a new
// one replaces the previous entry.
type SessionRepository struct {
	client redis.Cmdable
}

func NewSessionRepository(client redis.Cmdable) *SessionRepository {
	return &SessionRepository{client: client}
}

func SessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (r *SessionRepository) Store(ctx context.Context, userID string, refreshToken string, ttl time.Duration) error {
	if userID == "" || refreshToken == "" {
		return fmt.Errorf("store refresh token: missing user id or token")
	}
	if ttl <= 0 {
		return fmt.Errorf("store refresh token: ttl must be positive")
	}

	if err := r.client.Set(ctx, SessionKey(userID), refreshToken, ttl).Err(); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, userID string) (string, error) {
	val, err := r.client.Get(ctx, SessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", model.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	return val, nil
}

// Delete is a no-op for users without a session.
func (r *SessionRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, SessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}
