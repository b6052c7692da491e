package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/infra/memory"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	fetcher := &countingFetcher{
		QuestionFetcher: memory.NewCatalog(nil, map[string][]domain.Question{
			"cat1": {sampleQuestion()},
		}),
	}
	cache := NewQuestionCache(client, fetcher, time.Minute)

	questions, err := cache.FetchQuestions(context.Background(), "cat1", 6)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(questions) != 1 || questions[0].ID != "q1" {
		t.Fatalf("unexpected questions %+v", questions)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected fetcher called once, got %d", fetcher.calls)
	}
	if !mr.Exists("category:cat1:questions:6") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit cache, fetcher not incremented.
	cached, err := cache.FetchQuestions(context.Background(), "cat1", 6)
	if err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected cache hit, fetcher calls=%d", fetcher.calls)
	}
	if cached[0].Correct != domain.OptionB {
		t.Fatalf("cached question lost its correct option: %+v", cached[0])
	}
}

type countingFetcher struct {
	memory.QuestionFetcher
	calls int
}

func (f *countingFetcher) FetchQuestions(ctx context.Context, categoryID string, limit int) ([]domain.Question, error) {
	f.calls++
	return f.QuestionFetcher.FetchQuestions(ctx, categoryID, limit)
}

func sampleQuestion() domain.Question {
	return domain.Question{
		ID:         "q1",
		CategoryID: "cat1",
		Prompt:     domain.Text{Ar: "ما ناتج ٢ + ٢؟", En: "What is 2 + 2?"},
		Options: []domain.Option{
			{Label: domain.OptionA, Text: domain.Text{En: "3"}},
			{Label: domain.OptionB, Text: domain.Text{En: "4"}},
			{Label: domain.OptionC, Text: domain.Text{En: "5"}},
			{Label: domain.OptionD, Text: domain.Text{En: "6"}},
		},
		Correct: domain.OptionB,
		Tier:    1,
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
