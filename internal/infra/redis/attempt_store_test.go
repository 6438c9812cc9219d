package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"vocab-test-service/internal/domain"
)

func TestAttemptStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(newClient(mr))
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	completed := started.Add(4 * time.Minute)
	score := 50.0
	attempt := domain.TestAttempt{
		ID:          "a1",
		TestID:      "t1",
		UserID:      "u1",
		StartedAt:   started,
		CompletedAt: &completed,
		Answers: []domain.Answer{
			{QuestionID: "q1", UserAnswer: domain.OptionAnswer(1), IsCorrect: true, TimeSpent: 12},
			{QuestionID: "q2", UserAnswer: domain.TextAnswer("resume"), IsCorrect: false, TimeSpent: 30},
		},
		Score: &score,
	}

	if err := store.SaveAttempt(ctx, attempt); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetAttempt(ctx, "u1", "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.StartedAt.Equal(started) || got.CompletedAt == nil || !got.CompletedAt.Equal(completed) {
		t.Fatalf("timestamps must round-trip, got %+v", got)
	}
	if got.Score == nil || *got.Score != 50.0 {
		t.Fatalf("score must round-trip, got %v", got.Score)
	}
	if len(got.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(got.Answers))
	}
	if !got.Answers[0].UserAnswer.Numeric || got.Answers[0].UserAnswer.Index != 1 {
		t.Fatalf("numeric answer must stay numeric, got %+v", got.Answers[0].UserAnswer)
	}
	if got.Answers[1].UserAnswer.Numeric || got.Answers[1].UserAnswer.Text != "resume" {
		t.Fatalf("text answer must stay text, got %+v", got.Answers[1].UserAnswer)
	}

	attempts, err := store.ListAttempts(ctx, "u1")
	if err != nil || len(attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d (err=%v)", len(attempts), err)
	}

	if _, err := store.GetAttempt(ctx, "u1", "missing"); err != domain.ErrAttemptNotFound {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}

	// History hashes must not expire.
	if mr.TTL("attempts:u1") != 0 {
		t.Fatalf("attempt history must not carry a TTL")
	}
}
