package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-session-service/internal/domain"
)

// QuestionFetcher fetches category questions from a backing store.
type QuestionFetcher interface {
	FetchQuestions(ctx context.Context, categoryID string, limit int) ([]domain.Question, error)
}

// QuestionCache caches per-category question lists in Redis as JSON and
// falls back to the fetcher on cache miss.
// Lists are stored as: SET category:{categoryID}:questions:{limit} {json}
type QuestionCache struct {
	client  *redis.Client
	fetcher QuestionFetcher
	ttl     time.Duration
	sf      singleflight.Group
	rnd     *rand.Rand
}

func NewQuestionCache(client *redis.Client, fetcher QuestionFetcher, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client:  client,
		fetcher: fetcher,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) FetchQuestions(ctx context.Context, categoryID string, limit int) ([]domain.Question, error) {
	key := c.key(categoryID, limit)

	if questions, ok := c.fromCache(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.fromCache(ctx, key); ok {
			return questions, nil
		}

		questions, err := c.fetcher.FetchQuestions(ctx, categoryID, limit)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(questions); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) key(categoryID string, limit int) string {
	return fmt.Sprintf("category:%s:questions:%d", categoryID, limit)
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
