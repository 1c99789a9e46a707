package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
)

// RedisFeed keeps the most recent activity records in a capped redis list,
// newest at the head.
type RedisFeed struct {
	client *redis.Client
	key    string
	max    int
}

var _ Feed = (*RedisFeed)(nil)

// NewRedisFeed connects to addr and verifies the connection.
func NewRedisFeed(ctx context.Context, addr, key string, max int) (*RedisFeed, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisFeedClient(client, key, max), nil
}

// NewRedisFeedClient wraps an existing client.
func NewRedisFeedClient(client *redis.Client, key string, max int) *RedisFeed {
	if max <= 0 {
		max = 500
	}
	return &RedisFeed{client: client, key: key, max: max}
}

// Push prepends rec and trims the list to its cap in one transaction.
func (f *RedisFeed) Push(ctx context.Context, rec model.ActivityRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal activity record: %w", err)
	}
	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, f.key, b)
	pipe.LTrim(ctx, f.key, 0, int64(f.max-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push activity record: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first. Entries that fail to decode
// are skipped.
func (f *RedisFeed) Recent(ctx context.Context, n int) ([]model.ActivityRecord, error) {
	if n <= 0 || n > f.max {
		n = f.max
	}
	vals, err := f.client.LRange(ctx, f.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read activity feed: %w", err)
	}
	out := make([]model.ActivityRecord, 0, len(vals))
	for _, v := range vals {
		var rec model.ActivityRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close closes the redis client.
func (f *RedisFeed) Close() error { return f.client.Close() }
