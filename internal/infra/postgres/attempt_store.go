package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"vocab-test-service/internal/domain"
)

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id"`
	StartedAt time.Time `bun:"started_at"`
	Data      []byte    `bun:"data,type:jsonb"`
}

// AttemptStore is a bun-backed implementation of app.AttemptStore. The
// attempt document is stored as JSONB with user/start columns for querying.
type AttemptStore struct {
	db *bun.DB
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) SaveAttempt(ctx context.Context, attempt domain.TestAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	row := &attemptRow{
		ID:        attempt.ID,
		UserID:    attempt.UserID,
		StartedAt: attempt.StartedAt,
		Data:      data,
	}
	_, err = s.db.NewInsert().Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) ListAttempts(ctx context.Context, userID string) ([]domain.TestAttempt, error) {
	var rows []attemptRow
	err := s.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Order("started_at").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.TestAttempt, 0, len(rows))
	for _, row := range rows {
		var attempt domain.TestAttempt
		if err := json.Unmarshal(row.Data, &attempt); err != nil {
			return nil, fmt.Errorf("unmarshal attempt %s: %w", row.ID, err)
		}
		out = append(out, attempt)
	}
	return out, nil
}
