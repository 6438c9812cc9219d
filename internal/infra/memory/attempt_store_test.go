package memory

import (
	"context"
	"testing"
	"time"

	"vocab-test-service/internal/domain"
)

func TestAttemptStoreListsByUser(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, userID := range []string{"u1", "u2", "u1"} {
		attempt := domain.TestAttempt{
			ID:        string(rune('a' + i)),
			TestID:    "t1",
			UserID:    userID,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.SaveAttempt(ctx, attempt); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	attempts, err := store.ListAttempts(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts for u1, got %d", len(attempts))
	}
	if !attempts[0].StartedAt.Before(attempts[1].StartedAt) {
		t.Fatalf("expected attempts ordered by start time")
	}

	none, err := store.ListAttempts(ctx, "u3")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list for unknown user, got %d (err=%v)", len(none), err)
	}
}
