package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// NotesCache keeps generated notes documents keyed by request parameters, so
// repeat requests for the same syllabus skip the whole generation pipeline.
type NotesCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewNotesCache(client *redisv9.Client, ttl time.Duration) *NotesCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &NotesCache{client: client, ttl: ttl}
}

// NotesKey derives the cache key from everything that affects the output.
func NotesKey(syllabusText, subject string, usePYQ bool, topK int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%t|%d", syllabusText, subject, usePYQ, topK)))
	return "notes:" + hex.EncodeToString(sum[:])
}

func (c *NotesCache) Get(ctx context.Context, key string, out any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get notes failed: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("unmarshal cached notes failed: %w", err)
	}
	return true, nil
}

func (c *NotesCache) Set(ctx context.Context, key string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal notes cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set notes failed: %w", err)
	}
	return nil
}
