package memory

import (
	"context"
	"sort"

	"trivia-session-service/internal/domain"
)

// Catalog is an in-memory content source implementing the loader's
// resolver and fetcher contracts (useful for tests/demos).
type Catalog struct {
	purchases map[string][]string
	questions map[string][]domain.Question
}

// NewCatalog builds a catalog from purchaseRef -> category IDs and
// categoryID -> questions maps.
func NewCatalog(purchases map[string][]string, questions map[string][]domain.Question) *Catalog {
	return &Catalog{purchases: purchases, questions: questions}
}

func (c *Catalog) ResolveCategories(_ context.Context, purchaseRef string) ([]string, error) {
	categoryIDs, ok := c.purchases[purchaseRef]
	if !ok {
		return nil, domain.ErrPurchaseNotFound
	}
	return append([]string(nil), categoryIDs...), nil
}

// FetchQuestions returns up to limit questions ordered by ascending
// tier. An unknown category yields an empty list, not an error.
func (c *Catalog) FetchQuestions(_ context.Context, categoryID string, limit int) ([]domain.Question, error) {
	questions := append([]domain.Question(nil), c.questions[categoryID]...)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Tier < questions[j].Tier
	})
	if limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}
	return questions, nil
}
