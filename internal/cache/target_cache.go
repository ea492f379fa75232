package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TargetCache holds the publication targets derived from a user's rooms,
// so repeated task listings skip one upstream round trip. Keys are token
// fingerprints: the session token itself is never stored.
type TargetCache interface {
	Get(ctx context.Context, token string) ([]string, error)
	Set(ctx context.Context, token string, targets []string) error
}

type targetCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTargetCache creates a redis-backed target cache
func NewTargetCache(client *redis.Client, ttl time.Duration) TargetCache {
	return &targetCache{client: client, ttl: ttl}
}

func (c *targetCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("targets:%s", hex.EncodeToString(sum[:8]))
}

func (c *targetCache) Get(ctx context.Context, token string) ([]string, error) {
	data, err := c.client.Get(ctx, c.key(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var targets []string
	if err := json.Unmarshal([]byte(data), &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

func (c *targetCache) Set(ctx context.Context, token string, targets []string) error {
	data, err := json.Marshal(targets)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(token), data, c.ttl).Err()
}
