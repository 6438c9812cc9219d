package memory

import (
	"context"
	"sort"
	"sync"

	"vocab-test-service/internal/domain"
)

// TestCatalog is an in-memory implementation of app.TestCatalog. It doubles
// as a TestLoader so cached repositories can sit in front of it.
type TestCatalog struct {
	mu    sync.RWMutex
	tests map[string]domain.Test
}

func NewTestCatalog(seed map[string]domain.Test) *TestCatalog {
	tests := make(map[string]domain.Test, len(seed))
	for id, t := range seed {
		tests[id] = t
	}
	return &TestCatalog{tests: tests}
}

func (c *TestCatalog) GetTest(_ context.Context, testID string) (domain.Test, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	test, ok := c.tests[testID]
	if !ok {
		return domain.Test{}, domain.ErrTestNotFound
	}
	return test, nil
}

func (c *TestCatalog) ListTests(_ context.Context) ([]domain.Test, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Test, 0, len(c.tests))
	for _, t := range c.tests {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (c *TestCatalog) SaveTest(_ context.Context, test domain.Test) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tests[test.ID] = test
	return nil
}

func (c *TestCatalog) DeleteTest(_ context.Context, testID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tests[testID]; !ok {
		return domain.ErrTestNotFound
	}
	delete(c.tests, testID)
	return nil
}

// LoadTest satisfies TestLoader for cache layering.
func (c *TestCatalog) LoadTest(ctx context.Context, testID string) (domain.Test, error) {
	return c.GetTest(ctx, testID)
}
