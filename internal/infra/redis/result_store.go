package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
)

// ResultStore writes finished session results to Redis with a TTL.
// Results are stored as: SET session:{sessionID}:result {json}
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(result.SessionID), data, s.ttl).Err()
}

// LoadResult reads a stored result back; used by results screens and tests.
func (s *ResultStore) LoadResult(ctx context.Context, sessionID string) (domain.Result, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		return domain.Result{}, err
	}
	var result domain.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.Result{}, err
	}
	return result, nil
}

func (s *ResultStore) key(sessionID string) string {
	return "session:" + sessionID + ":result"
}
