package app_test

import (
	"context"
	"testing"
	"time"

	"vocab-test-service/internal/app"
	"vocab-test-service/internal/domain"
	"vocab-test-service/internal/infra/memory"
)

func TestStartSubmitComplete(t *testing.T) {
	ctx := context.Background()
	service, attempts := newTestService(t)

	active, attempt, err := service.Start(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if attempt.TestID != "t1" || attempt.UserID != "u1" {
		t.Fatalf("unexpected attempt: %+v", attempt)
	}
	if len(active.Questions) != 2 {
		t.Fatalf("expected 2 active questions, got %d", len(active.Questions))
	}

	recorded, feedback, err := service.SubmitAnswer(ctx, "u1", "q1", domain.OptionAnswer(1), 7)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !recorded.IsCorrect {
		t.Fatalf("expected correct answer, got %+v", recorded)
	}
	if !feedback {
		t.Fatalf("expected feedback flag from test settings")
	}

	if _, _, err := service.SubmitAnswer(ctx, "u1", "q2", domain.TextAnswer("wrong"), 9); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	finalized, err := service.Complete(ctx, "u1")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if finalized.Score == nil || *finalized.Score != 50.0 {
		t.Fatalf("expected score 50.0, got %v", finalized.Score)
	}

	history, err := attempts.ListAttempts(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ID != finalized.ID {
		t.Fatalf("expected persisted attempt, got %+v", history)
	}
}

func TestStartUnknownTest(t *testing.T) {
	service, _ := newTestService(t)
	if _, _, err := service.Start(context.Background(), "u1", "nope"); err != domain.ErrTestNotFound {
		t.Fatalf("expected ErrTestNotFound, got %v", err)
	}
}

func TestSubmitRequiresActiveAttempt(t *testing.T) {
	ctx := context.Background()
	service, attempts := newTestService(t)

	if _, _, err := service.SubmitAnswer(ctx, "u1", "q1", domain.OptionAnswer(0), 1); err != domain.ErrNoActiveTest {
		t.Fatalf("expected ErrNoActiveTest, got %v", err)
	}
	if _, err := service.Complete(ctx, "u1"); err != domain.ErrNoActiveTest {
		t.Fatalf("expected ErrNoActiveTest, got %v", err)
	}
	history, _ := attempts.ListAttempts(ctx, "u1")
	if len(history) != 0 {
		t.Fatalf("guards must leave history unchanged, got %d", len(history))
	}
}

func TestRemoteGradeIsAuthoritative(t *testing.T) {
	ctx := context.Background()
	engines := memory.NewEngineStore()
	tests := memory.NewTestRepository(memory.NewStaticTestLoader(map[string]domain.Test{
		"t1": sampleTest(),
	}), time.Minute)
	attempts := memory.NewAttemptStore()
	grader := &stubGrader{score: 100.0}
	service := app.NewAttemptService(engines, tests, attempts, app.WithGrader(grader))

	if _, _, err := service.Start(ctx, "u1", "t1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := service.SubmitAnswer(ctx, "u1", "q1", domain.OptionAnswer(1), 3); err != nil {
		t.Fatalf("submit: %v", err)
	}

	finalized, err := service.Complete(ctx, "u1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if *finalized.Score != 100.0 {
		t.Fatalf("remote score must win, got %v", *finalized.Score)
	}
	if grader.localScore != 50.0 {
		t.Fatalf("grader must receive the local score, got %v", grader.localScore)
	}
	if len(grader.answers) != 1 || grader.answers[0].QuestionIndex < 0 || grader.answers[0].QuestionIndex > 1 {
		t.Fatalf("grader must receive positional answers, got %+v", grader.answers)
	}
}

func TestGraderFailureKeepsLocalScore(t *testing.T) {
	ctx := context.Background()
	engines := memory.NewEngineStore()
	tests := memory.NewTestRepository(memory.NewStaticTestLoader(map[string]domain.Test{
		"t1": sampleTest(),
	}), time.Minute)
	attempts := memory.NewAttemptStore()
	service := app.NewAttemptService(engines, tests, attempts, app.WithGrader(&stubGrader{fail: true}))

	if _, _, err := service.Start(ctx, "u1", "t1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := service.SubmitAnswer(ctx, "u1", "q1", domain.OptionAnswer(1), 3); err != nil {
		t.Fatalf("submit: %v", err)
	}

	finalized, err := service.Complete(ctx, "u1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if *finalized.Score != 50.0 {
		t.Fatalf("expected local score on grader failure, got %v", *finalized.Score)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	service.Clear("u1") // no attempt yet, still fine

	if _, _, err := service.Start(ctx, "u1", "t1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	service.Clear("u1")
	service.Clear("u1")
	if _, _, err := service.SubmitAnswer(ctx, "u1", "q1", domain.OptionAnswer(1), 1); err != domain.ErrNoActiveTest {
		t.Fatalf("expected ErrNoActiveTest after clear, got %v", err)
	}
}

type stubGrader struct {
	fail       bool
	score      float64
	localScore float64
	answers    []domain.IndexedAnswer
}

func (g *stubGrader) Grade(_ context.Context, testID string, score float64, answers []domain.IndexedAnswer) (domain.GradingReport, error) {
	g.localScore = score
	g.answers = answers
	if g.fail {
		return domain.GradingReport{}, context.DeadlineExceeded
	}
	return domain.GradingReport{TestID: testID, Score: g.score}, nil
}

func newTestService(t *testing.T) (*app.AttemptService, *memory.AttemptStore) {
	t.Helper()
	engines := memory.NewEngineStore()
	tests := memory.NewTestRepository(memory.NewStaticTestLoader(map[string]domain.Test{
		"t1": sampleTest(),
	}), 5*time.Minute)
	attempts := memory.NewAttemptStore()
	return app.NewAttemptService(engines, tests, attempts), attempts
}

func sampleTest() domain.Test {
	return domain.Test{
		ID:    "t1",
		Title: "Academic Vocabulary Quiz",
		Type:  domain.QuestionMultipleChoice,
		Questions: []domain.Question{
			{
				ID:                 "q1",
				Type:               domain.QuestionMultipleChoice,
				VocabItemID:        "v1",
				DifficultyRating:   4,
				Prompt:             "Which best defines \"ubiquitous\"?",
				Options:            []string{"Rare", "Found everywhere"},
				CorrectOptionIndex: 1,
			},
			{
				ID:               "q2",
				Type:             domain.QuestionFillInBlanks,
				VocabItemID:      "v2",
				DifficultyRating: 2,
				Sentence:         "Send your ___ with the application.",
				BlankIndex:       2,
				CorrectAnswer:    "resume",
			},
		},
		Settings:  domain.TestSettings{ShowFeedbackAfterEachQuestion: true},
		CreatedAt: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	}
}
