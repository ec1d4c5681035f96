package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NotesCache holds the most recent notes snapshot per session so a room that
// is torn down and re-opened within the TTL window hydrates without a
// database read.
type NotesCache struct {
	rdb *redis.Client
}

func NewNotesCache(rdb *redis.Client) *NotesCache {
	return &NotesCache{rdb: rdb}
}

func notesKey(sessionID string) string {
	return fmt.Sprintf("oneonone:notes:%s", sessionID)
}

// Get returns the cached notes for a session; the second result is false
// when no snapshot exists.
func (c *NotesCache) Get(ctx context.Context, sessionID string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, notesKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *NotesCache) Set(ctx context.Context, sessionID, content string, ttl time.Duration) error {
	return c.rdb.Set(ctx, notesKey(sessionID), content, ttl).Err()
}
