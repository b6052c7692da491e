package memory

import (
	"context"
	"errors"
	"testing"

	"trivia-session-service/internal/domain"
)

func TestCatalogResolvesCategories(t *testing.T) {
	catalog := NewCatalog(map[string][]string{"p1": {"cat1", "cat2"}}, nil)

	categoryIDs, err := catalog.ResolveCategories(context.Background(), "p1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(categoryIDs) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categoryIDs))
	}

	if _, err := catalog.ResolveCategories(context.Background(), "missing"); !errors.Is(err, domain.ErrPurchaseNotFound) {
		t.Fatalf("expected purchase error, got %v", err)
	}
}

func TestCatalogFetchOrdersByTierAndLimits(t *testing.T) {
	catalog := NewCatalog(nil, map[string][]domain.Question{
		"cat1": {
			{ID: "q-high", CategoryID: "cat1", Tier: 5},
			{ID: "q-low", CategoryID: "cat1", Tier: 1},
			{ID: "q-mid", CategoryID: "cat1", Tier: 3},
		},
	})

	questions, err := catalog.FetchQuestions(context.Background(), "cat1", 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(questions))
	}
	if questions[0].ID != "q-low" || questions[1].ID != "q-mid" {
		t.Fatalf("expected ascending tier order, got %s then %s", questions[0].ID, questions[1].ID)
	}
}

func TestCatalogFetchUnknownCategoryIsEmpty(t *testing.T) {
	catalog := NewCatalog(nil, nil)

	questions, err := catalog.FetchQuestions(context.Background(), "missing", 6)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(questions) != 0 {
		t.Fatalf("expected no questions, got %d", len(questions))
	}
}
