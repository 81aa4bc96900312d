package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"escaperoom-service/internal/domain"
)

// QuizLoader fetches published quiz content from the backing store.
type QuizLoader interface {
	LoadPublished(ctx context.Context, link string) (domain.Quiz, error)
}

// QuizCache caches published quizzes in Redis keyed by link and falls back to
// a loader on cache miss. A short-lived negative entry shields the store from
// repeated lookups of unknown links.
type QuizCache struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

const negativeEntry = "!"

func NewQuizCache(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetPublished(ctx context.Context, link string) (domain.Quiz, error) {
	key := c.key(link)

	if raw, err := c.client.Get(ctx, key).Result(); err == nil {
		return decodeCached(raw)
	}

	result, err, _ := c.sf.Do(link, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Result(); err == nil {
			quiz, err := decodeCached(raw)
			if err == nil || err == domain.ErrQuizNotFound {
				return quiz, err
			}
		}

		quiz, err := c.loader.LoadPublished(ctx, link)
		if err == domain.ErrQuizNotFound {
			_ = c.client.Set(ctx, key, negativeEntry, time.Minute).Err()
			return domain.Quiz{}, err
		}
		if err != nil {
			return domain.Quiz{}, err
		}

		encoded, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("encode quiz: %w", err)
		}
		_ = c.client.Set(ctx, key, encoded, c.ttlWithJitter()).Err()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops the cached entry after admin mutations.
func (c *QuizCache) Invalidate(ctx context.Context, link string) {
	_ = c.client.Del(ctx, c.key(link)).Err()
}

func (c *QuizCache) key(link string) string {
	return "quiz:link:" + link
}

func decodeCached(raw string) (domain.Quiz, error) {
	if raw == negativeEntry {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("decode cached quiz: %w", err)
	}
	return quiz, nil
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
