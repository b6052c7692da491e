package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-session-service/internal/domain"
)

// Catalog reads trivia content from Postgres. Question bodies are
// stored as JSONB next to the columns used for filtering and ordering.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) ResolveCategories(ctx context.Context, purchaseRef string) ([]string, error) {
	rows, err := c.pool.Query(ctx, `SELECT category_id FROM purchase_categories WHERE purchase_id=$1 ORDER BY category_id`, purchaseRef)
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}
	defer rows.Close()

	var categoryIDs []string
	for rows.Next() {
		var categoryID string
		if err := rows.Scan(&categoryID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categoryIDs = append(categoryIDs, categoryID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}
	return categoryIDs, nil
}

func (c *Catalog) FetchQuestions(ctx context.Context, categoryID string, limit int) ([]domain.Question, error) {
	rows, err := c.pool.Query(ctx, `SELECT data FROM questions WHERE category_id=$1 ORDER BY tier ASC, id ASC LIMIT $2`, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var question domain.Question
		if err := json.Unmarshal(raw, &question); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	return questions, nil
}
