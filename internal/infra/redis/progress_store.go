package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressStore keeps per-team unlock progress in a Redis hash per
// (quiz link, team): HSET quiz:{link}:progress:{team} {order} 1.
// Entries expire with the configured TTL so abandoned runs clean up.
type ProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProgressStore(client *redis.Client, ttl time.Duration) *ProgressStore {
	return &ProgressStore{client: client, ttl: ttl}
}

func (s *ProgressStore) IsUnlocked(ctx context.Context, link, team string, order int) (bool, error) {
	if order <= 1 {
		return true, nil
	}
	return s.client.HExists(ctx, s.key(link, team), strconv.Itoa(order-1)).Result()
}

func (s *ProgressStore) MarkCleared(ctx context.Context, link, team string, order int) error {
	key := s.key(link, team)
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, strconv.Itoa(order), 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *ProgressStore) key(link, team string) string {
	return "quiz:" + link + ":progress:" + team
}
