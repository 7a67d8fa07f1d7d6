package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/quizerr"
)

const progressPrefix = "quiz:progress:"

// NewRedisClient parses url, connects and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisProgressStore keeps one session record per user under
// quiz:progress:<user_id>. A positive ttl expires idle sessions; every Save
// renews it.
type RedisProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProgressStore wraps client. ttl <= 0 keeps records until deleted.
func NewRedisProgressStore(client *redis.Client, ttl time.Duration) *RedisProgressStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisProgressStore{client: client, ttl: ttl}
}

func (r *RedisProgressStore) key(userID string) string {
	return progressPrefix + userID
}

// Save stores the session record, renewing its TTL.
func (r *RedisProgressStore) Save(ctx context.Context, s core.Session) error {
	if s.UserID == "" {
		return quizerr.New(quizerr.CodeInvalidArgument, "user id cannot be empty")
	}
	data, err := EncodeSession(s)
	if err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "save session", err)
	}
	if err := r.client.Set(ctx, r.key(s.UserID), data, r.ttl).Err(); err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "failed to set session data", err)
	}
	return nil
}

// Load reads and decodes the session record of userID.
func (r *RedisProgressStore) Load(ctx context.Context, userID string) (core.Session, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.Session{}, quizerr.New(quizerr.CodeSessionNotFound,
				fmt.Sprintf("no active quiz for user %s", userID))
		}
		return core.Session{}, quizerr.Wrap(quizerr.CodeStorage, "failed to get session data", err)
	}

	s, err := DecodeSession(data)
	if err != nil {
		return core.Session{}, quizerr.Wrap(quizerr.CodeStorage, "load session", err)
	}
	return s, nil
}

// Delete removes the session record of userID.
func (r *RedisProgressStore) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "failed to delete session", err)
	}
	return nil
}

// TTL returns the remaining lifetime of a stored session.
func (r *RedisProgressStore) TTL(ctx context.Context, userID string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, r.key(userID)).Result()
	if err != nil {
		return 0, quizerr.Wrap(quizerr.CodeStorage, "failed to get TTL", err)
	}
	return ttl, nil
}
