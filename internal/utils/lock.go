package utils

import (
	"context"       // Context for Redis operations
	"crypto/rand"   // Lock tokens
	"encoding/hex"  // Token encoding
	"errors"        // Error values
	"fmt"           // Error wrapping
	"slices"        // Key ordering
	"sync"          // In-process locks
	"time"          // Lock TTL and polling

	"github.com/redis/go-redis/v9" // Redis client
)

// ErrLockTimeout is returned when a key stays locked longer than the wait limit
var ErrLockTimeout = errors.New("timed out waiting for lock")

// KeyLocker serializes work per key across concurrent requests
type KeyLocker interface {
	// Lock acquires every key and returns a function releasing them all
	Lock(ctx context.Context, keys ...string) (func(), error)
}

// normalizeKeys sorts and dedupes keys so two callers never wait on each other in opposite order
func normalizeKeys(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}

// LocalLocker is a KeyLocker for a single process
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localEntry
	wait  time.Duration // How long Lock waits for a busy key
}

type localEntry struct {
	ch   chan struct{} // Buffered with capacity 1, holds the token while locked
	refs int           // Callers holding or waiting on this key
}

// NewLocalLocker creates an in-process locker waiting at most wait for a busy key
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localEntry), wait: wait}
}

func (l *LocalLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	held := make([]string, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.unlock(held[i])
		}
	}

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()
	for _, key := range keys {
		if err := l.lock(ctx, key); err != nil {
			release()
			return nil, err
		}
		held = append(held, key)
	}
	return release, nil
}

func (l *LocalLocker) lock(ctx context.Context, key string) error {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.drop(key, e)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("lock %s: %w", key, ErrLockTimeout)
		}
		return fmt.Errorf("lock %s: %w", key, ctx.Err())
	}
}

func (l *LocalLocker) unlock(key string) {
	l.mu.Lock()
	e := l.locks[key]
	l.mu.Unlock()
	<-e.ch
	l.drop(key, e)
}

func (l *LocalLocker) drop(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a KeyLocker shared by every process using the same Redis
type RedisLocker struct {
	rdb    *redis.Client // Redis client
	prefix string        // Key namespace
	ttl    time.Duration // Lock expiry, bounds how long a crashed holder blocks others
	wait   time.Duration // How long Lock waits for a busy key
	poll   time.Duration // Delay between attempts
}

// NewRedisLocker creates a Redis backed locker
func NewRedisLocker(rdb *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, prefix: "lock:", ttl: ttl, wait: wait, poll: 25 * time.Millisecond}
}

func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	held := make([]string, 0, len(keys))
	release := func() {
		// Release must run even if the request context is already cancelled
		bg := context.Background()
		for i := len(held) - 1; i >= 0; i-- {
			_ = releaseScript.Run(bg, l.rdb, []string{held[i]}, token).Err()
		}
	}

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()
	for _, key := range keys {
		full := l.prefix + key
		if err := l.acquire(ctx, full, token); err != nil {
			release()
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		held = append(held, full)
	}
	return release, nil
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return ErrLockTimeout
			}
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrLockTimeout
			}
			return ctx.Err()
		case <-time.After(l.poll):
		}
	}
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
