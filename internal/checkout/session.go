package checkout

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
)

// SessionStore holds in-progress workflows.
type SessionStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*Workflow, bool, error)
	Save(ctx context.Context, w *Workflow) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// RedisSessionStore keeps one workflow per user under a short TTL; idle sessions simply expire.
type RedisSessionStore struct {
	blobs redis.BlobStore
	ttl   time.Duration
}

func NewRedisSessionStore(blobs redis.BlobStore, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{blobs: blobs, ttl: ttl}
}

func (s *RedisSessionStore) Load(ctx context.Context, userID uuid.UUID) (*Workflow, bool, error) {
	var w Workflow
	found, err := s.blobs.GetJSON(ctx, redis.CheckoutKey(userID.String()), &w)
	if err != nil || !found {
		return nil, false, err
	}
	return &w, true, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, w *Workflow) error {
	return s.blobs.SetJSON(ctx, redis.CheckoutKey(w.UserID.String()), w, s.ttl)
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.blobs.Del(ctx, redis.CheckoutKey(userID.String()))
}
