// Package redislock is a small SetNX based mutex shared across server
// instances. It only narrows races; correctness still comes from the
// database constraints behind it.
package redislock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("redislock: lock not acquired")

// release deletes the key only when it still holds our token.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	rdb      redis.Cmdable
	ttl      time.Duration
	attempts int
	backoff  time.Duration
}

// New returns a Locker that holds keys for ttl and retries acquisition
// up to attempts times, sleeping backoff between tries.
func New(rdb redis.Cmdable, ttl time.Duration, attempts int, backoff time.Duration) *Locker {
	if attempts < 1 {
		attempts = 1
	}
	return &Locker{rdb: rdb, ttl: ttl, attempts: attempts, backoff: backoff}
}

// Lock acquires key and returns the function releasing it.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	for i := 0; i < l.attempts; i++ {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// Background context so a cancelled request still releases.
				release.Run(context.Background(), l.rdb, []string{key}, token)
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}
	return nil, ErrNotAcquired
}
