package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vocab-test-service/internal/domain"
)

// TestCatalog is the writable catalog collaborator behind the CRUD surface.
type TestCatalog interface {
	GetTest(ctx context.Context, testID string) (domain.Test, error)
	ListTests(ctx context.Context) ([]domain.Test, error)
	SaveTest(ctx context.Context, test domain.Test) error
	DeleteTest(ctx context.Context, testID string) error
}

// CatalogService owns test definition lifecycle: create, update, delete,
// read. The attempt engine only ever reads from the catalog.
type CatalogService struct {
	store TestCatalog
	now   func() time.Time
	newID func() string
}

// CatalogOption customizes a CatalogService, mainly for deterministic tests.
type CatalogOption func(*CatalogService)

// WithCatalogClock overrides the time source.
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(s *CatalogService) { s.now = now }
}

// WithCatalogIDGenerator overrides test ID generation.
func WithCatalogIDGenerator(gen func() string) CatalogOption {
	return func(s *CatalogService) { s.newID = gen }
}

func NewCatalogService(store TestCatalog, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{store: store, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new test, assigning its ID and creation time.
func (s *CatalogService) Create(ctx context.Context, test domain.Test) (domain.Test, error) {
	test.ID = s.newID()
	test.CreatedAt = s.now()
	if err := test.Validate(); err != nil {
		return domain.Test{}, err
	}
	if err := s.store.SaveTest(ctx, test); err != nil {
		return domain.Test{}, err
	}
	return test, nil
}

// Update replaces an existing test's content, keeping its ID and creation
// time.
func (s *CatalogService) Update(ctx context.Context, testID string, test domain.Test) (domain.Test, error) {
	existing, err := s.store.GetTest(ctx, testID)
	if err != nil {
		return domain.Test{}, err
	}
	test.ID = existing.ID
	test.CreatedAt = existing.CreatedAt
	if err := test.Validate(); err != nil {
		return domain.Test{}, err
	}
	if err := s.store.SaveTest(ctx, test); err != nil {
		return domain.Test{}, err
	}
	return test, nil
}

// Delete removes a test from the catalog.
func (s *CatalogService) Delete(ctx context.Context, testID string) error {
	return s.store.DeleteTest(ctx, testID)
}

// Get returns a single test definition.
func (s *CatalogService) Get(ctx context.Context, testID string) (domain.Test, error) {
	return s.store.GetTest(ctx, testID)
}

// List returns all test definitions.
func (s *CatalogService) List(ctx context.Context) ([]domain.Test, error) {
	return s.store.ListTests(ctx)
}
