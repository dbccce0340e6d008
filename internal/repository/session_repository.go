package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
)

const sessionKeyPrefix = "booking:session:"

// SessionRepository persists signed-in sessions in Redis so a restart keeps users
// signed in. A nil client turns every call into a no-op or a cache miss.
type SessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{client: client, logger: logger}
}

// Enabled reports whether sessions are persisted.
func (r *SessionRepository) Enabled() bool {
	return r.client != nil
}

// Get loads the session stored under id.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &session, nil
}

// Save stores the session under id with the given TTL.
func (r *SessionRepository) Save(ctx context.Context, id string, session *models.Session, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", id, err)
	}
	if err := r.client.Set(ctx, sessionKey(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", id, err)
	}
	return nil
}

// Delete removes the session stored under id.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return nil
}

// Touch extends the TTL of a stored session.
func (r *SessionRepository) Touch(ctx context.Context, id string, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Expire(ctx, sessionKey(id), ttl).Err(); err != nil {
		r.logger.Warn("failed to extend session ttl", zap.String("session_id", id), zap.Error(err))
		return fmt.Errorf("redis expire session %s: %w", id, err)
	}
	return nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
