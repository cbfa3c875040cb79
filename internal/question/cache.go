package question

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// ListCache stores question lists under string keys.
type ListCache interface {
	Get(ctx context.Context, key string) ([]Question, bool, error)
	Set(ctx context.Context, key string, questions []Question) error
}

// Cache provides Redis-backed question list caching to offload the database.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ ListCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl, prefix: "questions"}
}

func (c *Cache) key(key string) string {
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

func (c *Cache) Get(ctx context.Context, key string) ([]Question, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, false, fmt.Errorf("decode cached questions: %w", err)
	}
	return qs, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, questions []Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}

func affinityKey(key string) string {
	return "club:" + key
}

const allKey = "all"
