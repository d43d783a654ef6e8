// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

const sessionKeyPrefix = "ballotbox:session:"

// ErrAlreadyExpired is returned for a session whose expiry has passed, since
// Redis cannot hold a key with a non-positive TTL.
var ErrAlreadyExpired = errors.New("session already expired")

// RedisStore keeps sessions in Redis. Each key expires with its session, so
// nothing needs purging.
type RedisStore struct {
	client *redis.Client
	prefix string
}

type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces the keys, e.g. per test.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisStore) { r.prefix = prefix }
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	r := &RedisStore{client: client, prefix: sessionKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// OpenRedis parses a redis:// URL and checks the server answers.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type redisSession struct {
	Role      models.Role `json:"role"`
	SubjectID string      `json:"subject_id"`
	CreatedAt int64       `json:"created_at"`
	ExpiresAt int64       `json:"expires_at"`
}

func (r *RedisStore) CreateSession(ctx context.Context, s models.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("store session: %w", ErrAlreadyExpired)
	}
	payload, err := json.Marshal(redisSession{
		Role:      s.Role,
		SubjectID: s.SubjectID,
		CreatedAt: s.CreatedAt.UnixMilli(),
		ExpiresAt: s.ExpiresAt.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+s.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *RedisStore) GetSession(ctx context.Context, token string) (models.Session, error) {
	raw, err := r.client.Get(ctx, r.prefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, db.ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}

	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return models.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return models.Session{
		Token:     token,
		Role:      rs.Role,
		SubjectID: rs.SubjectID,
		CreatedAt: time.UnixMilli(rs.CreatedAt),
		ExpiresAt: time.UnixMilli(rs.ExpiresAt),
	}, nil
}

func (r *RedisStore) DeleteSession(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.prefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
