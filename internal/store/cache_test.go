package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// setupTestRedis creates a miniredis instance and a redis client for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestNotesCacheRoundTrip(t *testing.T) {
	_, rdb := setupTestRedis(t)
	cache := NewNotesCache(rdb)
	ctx := context.Background()

	err := cache.Set(ctx, "s1", "Q3 goals", 24*time.Hour)
	assert.NoError(t, err)

	got, ok, err := cache.Get(ctx, "s1")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Q3 goals", got)
}

func TestNotesCacheMiss(t *testing.T) {
	_, rdb := setupTestRedis(t)
	cache := NewNotesCache(rdb)

	got, ok, err := cache.Get(context.Background(), "absent")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestNotesCacheSetsExpiry(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	cache := NewNotesCache(rdb)

	err := cache.Set(context.Background(), "s1", "notes", 24*time.Hour)
	assert.NoError(t, err)

	ttl := mr.TTL("oneonone:notes:s1")
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestNotesCacheExpiredKeyIsMiss(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	cache := NewNotesCache(rdb)
	ctx := context.Background()

	assert.NoError(t, cache.Set(ctx, "s1", "notes", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "s1")
	assert.NoError(t, err)
	assert.False(t, ok)
}
