package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRunLock is a single-holder lock shared across API instances.
type RedisRunLock struct {
	client *redis.Client
	key    string
}

// NewRedisRunLock builds a lock stored under key.
func NewRedisRunLock(client *redis.Client, key string) *RedisRunLock {
	return &RedisRunLock{client: client, key: key}
}

// Acquire takes the lock for ttl. ok is false when another holder has it.
func (l *RedisRunLock) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock if token still owns it.
func (l *RedisRunLock) Release(ctx context.Context, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

// LocalRunLock is the in-process fallback used when Redis is disabled.
type LocalRunLock struct {
	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

// NewLocalRunLock builds an in-process lock.
func NewLocalRunLock() *LocalRunLock {
	return &LocalRunLock{now: time.Now}
}

// Acquire takes the lock unless a live holder exists.
func (l *LocalRunLock) Acquire(_ context.Context, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.token != "" && now.Before(l.expires) {
		return "", false, nil
	}
	l.token = uuid.NewString()
	l.expires = now.Add(ttl)
	return l.token, true, nil
}

// Release frees the lock if token still owns it.
func (l *LocalRunLock) Release(_ context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.token == token {
		l.token = ""
	}
	return nil
}
