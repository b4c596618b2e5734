package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore records processed events in Redis via SETNX, for deployments
// that already run Redis and want cheaper dedup than a DynamoDB table.
type RedisStore struct {
	client    *redis.Client
	ttlWindow time.Duration
}

// NewRedisStore returns a configured RedisStore.
func NewRedisStore(client *redis.Client, ttlWindow time.Duration) *RedisStore {
	return &RedisStore{client: client, ttlWindow: ttlWindow}
}

func (s *RedisStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	claimed, err := s.client.SetNX(ctx, "webhook:event:"+eventID, 1, s.ttlWindow).Result()
	if err != nil {
		return false, fmt.Errorf("setnx event id: %w", err)
	}
	return claimed, nil
}
