package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"vocab-test-service/internal/domain"
)

type testRow struct {
	bun.BaseModel `bun:"table:tests"`

	ID   string `bun:"id,pk"`
	Data []byte `bun:"data,type:jsonb"`
}

// TestStore is a bun-backed implementation of app.TestCatalog. The whole
// test document lives in a JSONB column keyed by ID; every field must
// round-trip losslessly, so the document is the source of truth.
type TestStore struct {
	db *bun.DB
}

func NewTestStore(db *bun.DB) *TestStore {
	return &TestStore{db: db}
}

func (s *TestStore) GetTest(ctx context.Context, testID string) (domain.Test, error) {
	row := new(testRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", testID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Test{}, domain.ErrTestNotFound
	}
	if err != nil {
		return domain.Test{}, fmt.Errorf("get test: %w", err)
	}
	var test domain.Test
	if err := json.Unmarshal(row.Data, &test); err != nil {
		return domain.Test{}, fmt.Errorf("unmarshal test: %w", err)
	}
	return test, nil
}

func (s *TestStore) ListTests(ctx context.Context) ([]domain.Test, error) {
	var rows []testRow
	if err := s.db.NewSelect().Model(&rows).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	out := make([]domain.Test, 0, len(rows))
	for _, row := range rows {
		var test domain.Test
		if err := json.Unmarshal(row.Data, &test); err != nil {
			return nil, fmt.Errorf("unmarshal test %s: %w", row.ID, err)
		}
		out = append(out, test)
	}
	return out, nil
}

func (s *TestStore) SaveTest(ctx context.Context, test domain.Test) error {
	data, err := json.Marshal(test)
	if err != nil {
		return fmt.Errorf("marshal test: %w", err)
	}
	row := &testRow{ID: test.ID, Data: data}
	_, err = s.db.NewInsert().Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save test: %w", err)
	}
	return nil
}

func (s *TestStore) DeleteTest(ctx context.Context, testID string) error {
	res, err := s.db.NewDelete().Model((*testRow)(nil)).Where("id = ?", testID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete test: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrTestNotFound
	}
	return nil
}

// LoadTest satisfies the cache loaders so a cached repository can sit in
// front of the catalog.
func (s *TestStore) LoadTest(ctx context.Context, testID string) (domain.Test, error) {
	return s.GetTest(ctx, testID)
}
