package service

import (
	"context"
	"sync"
	"time"

	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmissionLocker serializes work on a key across requests.
type SubmissionLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker holds a SET NX PX lease. Waiters poll until Wait elapses and
// then give up with util.ErrSubmissionInFlight.
type RedisLocker struct {
	Client *redis.Client
	TTL    time.Duration
	Wait   time.Duration
	Poll   time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{Client: client, TTL: ttl, Wait: 2 * time.Second, Poll: 50 * time.Millisecond}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	key = "learnhub:lock:" + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.Wait)

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, util.ErrSubmissionInFlight
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Poll):
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	// The request context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		logger.Log.Warn("failed to release submission lock", zap.String("key", key), zap.Error(err))
	}
}

// LocalLocker serializes within one process; used when Redis is not configured.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
	Wait time.Duration
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]chan struct{}), Wait: 2 * time.Second}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	timer := time.NewTimer(l.Wait)
	defer timer.Stop()

	for {
		l.mu.Lock()
		ch, busy := l.held[key]
		if !busy {
			done := make(chan struct{})
			l.held[key] = done
			l.mu.Unlock()
			return func() {
				l.mu.Lock()
				delete(l.held, key)
				l.mu.Unlock()
				close(done)
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
		case <-timer.C:
			return nil, util.ErrSubmissionInFlight
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
