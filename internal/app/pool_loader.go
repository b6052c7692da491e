package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"trivia-session-service/internal/domain"
)

// CategoryResolver resolves the category set attached to a purchase.
type CategoryResolver interface {
	ResolveCategories(ctx context.Context, purchaseRef string) ([]string, error)
}

// QuestionFetcher returns up to limit questions for a category, ordered
// by ascending difficulty tier.
type QuestionFetcher interface {
	FetchQuestions(ctx context.Context, categoryID string, limit int) ([]domain.Question, error)
}

// PoolLoader assembles the ordered question list for one session: up to
// perCategory questions from every category of the purchase, shuffled.
// In team mode the category set is split in half first (team1 takes the
// extra category when the count is odd), every question is tagged with
// its owning team, and both halves are shuffled together so play order
// interleaves the teams while the tag keeps attribution.
type PoolLoader struct {
	categories  CategoryResolver
	questions   QuestionFetcher
	perCategory int

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPoolLoader builds a loader with a time-seeded shuffle source.
func NewPoolLoader(categories CategoryResolver, questions QuestionFetcher, perCategory int) *PoolLoader {
	return NewPoolLoaderWithRand(categories, questions, perCategory, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewPoolLoaderWithRand injects the shuffle source for deterministic orderings in tests.
func NewPoolLoaderWithRand(categories CategoryResolver, questions QuestionFetcher, perCategory int, rnd *rand.Rand) *PoolLoader {
	if perCategory <= 0 {
		perCategory = 6
	}
	return &PoolLoader{
		categories:  categories,
		questions:   questions,
		perCategory: perCategory,
		rnd:         rnd,
	}
}

// Load produces the session pool or fails with domain.ErrPoolEmpty when
// the purchase resolves to no questions at all. Categories contributing
// zero questions are skipped silently.
func (l *PoolLoader) Load(ctx context.Context, purchaseRef string, teamMode bool) ([]domain.Question, error) {
	categoryIDs, err := l.categories.ResolveCategories(ctx, purchaseRef)
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}
	if len(categoryIDs) == 0 {
		return nil, domain.ErrPoolEmpty
	}

	var pool []domain.Question
	if teamMode {
		split := (len(categoryIDs) + 1) / 2
		team1Half, err := l.fetchHalf(ctx, categoryIDs[:split], domain.Team1)
		if err != nil {
			return nil, err
		}
		team2Half, err := l.fetchHalf(ctx, categoryIDs[split:], domain.Team2)
		if err != nil {
			return nil, err
		}
		pool = append(team1Half, team2Half...)
	} else {
		pool, err = l.fetchHalf(ctx, categoryIDs, domain.TeamNone)
		if err != nil {
			return nil, err
		}
	}
	if len(pool) == 0 {
		return nil, domain.ErrPoolEmpty
	}

	l.mu.Lock()
	l.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	l.mu.Unlock()
	return pool, nil
}

func (l *PoolLoader) fetchHalf(ctx context.Context, categoryIDs []string, team domain.Team) ([]domain.Question, error) {
	var out []domain.Question
	for _, categoryID := range categoryIDs {
		questions, err := l.questions.FetchQuestions(ctx, categoryID, l.perCategory)
		if err != nil {
			return nil, fmt.Errorf("fetch questions for category %s: %w", categoryID, err)
		}
		for _, q := range questions {
			q.Team = team
			out = append(out, q)
		}
	}
	return out, nil
}
