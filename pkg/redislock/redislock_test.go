package redislock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *redis.Client {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestLockExcludesSecondHolder(t *testing.T) {
	rdb := testClient(t)
	ctx := context.Background()
	key := "test:lock:" + uuid.NewString()

	l := New(rdb, 5*time.Second, 2, 10*time.Millisecond)
	unlock, err := l.Lock(ctx, key)
	require.NoError(t, err)

	_, err = l.Lock(ctx, key)
	assert.ErrorIs(t, err, ErrNotAcquired)

	unlock()
	unlock2, err := l.Lock(ctx, key)
	require.NoError(t, err)
	unlock2()
}

func TestReleaseKeepsForeignToken(t *testing.T) {
	rdb := testClient(t)
	ctx := context.Background()
	key := "test:lock:" + uuid.NewString()

	l := New(rdb, 50*time.Millisecond, 1, 0)
	unlock, err := l.Lock(ctx, key)
	require.NoError(t, err)

	// Expire our hold and let someone else take the key.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, rdb.Set(ctx, key, "other", time.Second).Err())

	unlock()
	val, err := rdb.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "other", val)
}
