package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vocab-test-service/internal/domain"
	"vocab-test-service/internal/engine"
)

// EngineStore abstracts how per-user engines are kept (in-memory today; one
// engine per user means one active attempt per user).
type EngineStore interface {
	GetOrCreate(userID string) *engine.Engine
	Get(userID string) (*engine.Engine, bool)
	Delete(userID string)
}

// TestRepository loads test content (from cache/backing store).
type TestRepository interface {
	GetTest(ctx context.Context, testID string) (domain.Test, error)
}

// AttemptStore durably keeps finalized attempts across restarts.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt domain.TestAttempt) error
	ListAttempts(ctx context.Context, userID string) ([]domain.TestAttempt, error)
}

// Grader submits a finalized attempt for server-side grading. Optional; when
// configured its score is authoritative over the locally computed one.
type Grader interface {
	Grade(ctx context.Context, testID string, score float64, answers []domain.IndexedAnswer) (domain.GradingReport, error)
}

// AttemptService wires the attempt engine to its collaborators: the test
// catalog for content, the attempt store for history, and optionally a
// remote grader.
type AttemptService struct {
	engines  EngineStore
	tests    TestRepository
	attempts AttemptStore
	grader   Grader
	log      *zap.Logger
}

// ServiceOption customizes an AttemptService.
type ServiceOption func(*AttemptService)

// WithGrader enables remote grading on completion.
func WithGrader(g Grader) ServiceOption {
	return func(s *AttemptService) { s.grader = g }
}

// WithLogger replaces the default nop logger.
func WithLogger(log *zap.Logger) ServiceOption {
	return func(s *AttemptService) { s.log = log }
}

func NewAttemptService(engines EngineStore, tests TestRepository, attempts AttemptStore, opts ...ServiceOption) *AttemptService {
	s := &AttemptService{
		engines:  engines,
		tests:    tests,
		attempts: attempts,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins an attempt at testID for userID and returns the randomized
// active test alongside the fresh attempt record. An in-progress attempt for
// the same user is replaced without being saved.
func (s *AttemptService) Start(ctx context.Context, userID, testID string) (domain.Test, domain.TestAttempt, error) {
	test, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		return domain.Test{}, domain.TestAttempt{}, err
	}

	eng := s.engines.GetOrCreate(userID)
	if prev, ok := eng.CurrentAttempt(); ok && !prev.Completed() {
		s.log.Warn("replacing in-progress attempt",
			zap.String("userId", userID),
			zap.String("attemptId", prev.ID),
			zap.String("testId", prev.TestID))
	}

	eng.AddTest(test)
	if err := eng.Start(testID, userID); err != nil {
		return domain.Test{}, domain.TestAttempt{}, err
	}

	active, _ := eng.ActiveTest()
	attempt, _ := eng.CurrentAttempt()
	return active, attempt, nil
}

// SubmitAnswer records an answer for the user's active attempt. The second
// return value reports whether the test wants per-question feedback shown.
func (s *AttemptService) SubmitAnswer(ctx context.Context, userID, questionID string, answer domain.AnswerValue, timeSpent int) (domain.Answer, bool, error) {
	eng, ok := s.engines.Get(userID)
	if !ok {
		return domain.Answer{}, false, domain.ErrNoActiveTest
	}
	recorded, err := eng.SubmitAnswer(questionID, answer, timeSpent)
	if err != nil {
		return domain.Answer{}, false, err
	}
	active, _ := eng.ActiveTest()
	return recorded, active.Settings.ShowFeedbackAfterEachQuestion, nil
}

// Complete finalizes the user's attempt, reconciles with the remote grader
// when one is configured, and persists the result to the attempt store.
func (s *AttemptService) Complete(ctx context.Context, userID string) (domain.TestAttempt, error) {
	eng, ok := s.engines.Get(userID)
	if !ok {
		return domain.TestAttempt{}, domain.ErrNoActiveTest
	}

	active, _ := eng.ActiveTest()
	attempt, err := eng.Complete()
	if err != nil {
		return domain.TestAttempt{}, err
	}

	if s.grader != nil {
		report, gerr := s.grader.Grade(ctx, attempt.TestID, *attempt.Score, indexedAnswers(active, attempt))
		if gerr != nil {
			s.log.Warn("remote grading failed, keeping local score",
				zap.String("attemptId", attempt.ID), zap.Error(gerr))
		} else {
			score := report.Score
			attempt.Score = &score
		}
	}

	if err := s.attempts.SaveAttempt(ctx, attempt); err != nil {
		return domain.TestAttempt{}, fmt.Errorf("save attempt: %w", err)
	}
	return attempt, nil
}

// Clear drops the user's active test and attempt. Idempotent.
func (s *AttemptService) Clear(userID string) {
	if eng, ok := s.engines.Get(userID); ok {
		eng.ClearCurrent()
	}
}

// History lists a user's finalized attempts from durable storage.
func (s *AttemptService) History(ctx context.Context, userID string) ([]domain.TestAttempt, error) {
	return s.attempts.ListAttempts(ctx, userID)
}

// indexedAnswers projects an attempt's answers onto positions in the active
// test's question order, the shape the remote grader consumes.
func indexedAnswers(active domain.Test, attempt domain.TestAttempt) []domain.IndexedAnswer {
	index := make(map[string]int, len(active.Questions))
	for i, q := range active.Questions {
		index[q.ID] = i
	}
	out := make([]domain.IndexedAnswer, 0, len(attempt.Answers))
	for _, a := range attempt.Answers {
		pos, ok := index[a.QuestionID]
		if !ok {
			continue
		}
		out = append(out, domain.IndexedAnswer{QuestionIndex: pos, Answer: a.UserAnswer})
	}
	return out
}
