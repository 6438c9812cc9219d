package memory

import (
	"context"
	"testing"

	"vocab-test-service/internal/domain"
)

func TestTestCatalogCRUD(t *testing.T) {
	ctx := context.Background()
	catalog := NewTestCatalog(nil)

	test := sampleTest()
	if err := catalog.SaveTest(ctx, test); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := catalog.GetTest(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != test.Title {
		t.Fatalf("expected %q, got %q", test.Title, got.Title)
	}

	tests, err := catalog.ListTests(ctx)
	if err != nil || len(tests) != 1 {
		t.Fatalf("expected 1 test, got %d (err=%v)", len(tests), err)
	}

	if err := catalog.DeleteTest(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := catalog.GetTest(ctx, "t1"); err != domain.ErrTestNotFound {
		t.Fatalf("expected ErrTestNotFound after delete, got %v", err)
	}
	if err := catalog.DeleteTest(ctx, "t1"); err != domain.ErrTestNotFound {
		t.Fatalf("expected ErrTestNotFound on double delete, got %v", err)
	}
}
