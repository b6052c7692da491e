package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"trivia-session-service/internal/domain"
)

type sessionResultRow struct {
	bun.BaseModel `bun:"table:session_results"`

	SessionID  string    `bun:"session_id,pk"`
	TeamMode   bool      `bun:"team_mode"`
	Data       []byte    `bun:"data,type:jsonb"`
	FinishedAt time.Time `bun:"finished_at"`
}

// ResultRepository persists finished sessions as JSONB rows.
type ResultRepository struct {
	db *bun.DB
}

func NewResultRepository(db *bun.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) SaveResult(ctx context.Context, result domain.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	row := &sessionResultRow{
		SessionID:  result.SessionID,
		TeamMode:   result.TeamMode,
		Data:       data,
		FinishedAt: result.FinishedAt,
	}
	_, err = r.db.NewInsert().
		Model(row).
		On("CONFLICT (session_id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("finished_at = EXCLUDED.finished_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// LoadResult reads a stored result back.
func (r *ResultRepository) LoadResult(ctx context.Context, sessionID string) (domain.Result, error) {
	row := new(sessionResultRow)
	if err := r.db.NewSelect().Model(row).Where("session_id = ?", sessionID).Scan(ctx); err != nil {
		return domain.Result{}, fmt.Errorf("load result: %w", err)
	}
	var result domain.Result
	if err := json.Unmarshal(row.Data, &result); err != nil {
		return domain.Result{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return result, nil
}
