package engine

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"vocab-test-service/internal/domain"
)

// Engine drives the lifecycle of one test attempt at a time: start a test
// from its catalog, record answers, and finalize with a score. It is a
// synchronous state machine with no I/O; callers wanting concurrent attempts
// run one Engine per user.
type Engine struct {
	catalog map[string]domain.Test
	active  *domain.Test
	current *domain.TestAttempt
	history []domain.TestAttempt

	now   func() time.Time
	rnd   *rand.Rand
	newID func() string
}

// Option customizes an Engine, mainly for deterministic tests.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand overrides the randomness source used for shuffling.
func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) { e.rnd = rnd }
}

// WithIDGenerator overrides attempt ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		catalog: make(map[string]domain.Test),
		now:     time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddTest places a test in the engine's catalog, replacing any existing
// entry with the same ID. The catalog is read-only to the engine itself.
func (e *Engine) AddTest(t domain.Test) {
	e.catalog[t.ID] = t
}

// RemoveTest drops a test from the catalog. A running attempt keeps its
// already-derived active copy.
func (e *Engine) RemoveTest(testID string) {
	delete(e.catalog, testID)
}

// Test looks up a catalog entry.
func (e *Engine) Test(testID string) (domain.Test, bool) {
	t, ok := e.catalog[testID]
	return t, ok
}

// Start begins a new attempt at testID for userID. The test's questions are
// snapshotted and shuffled per its settings into the active working copy.
// Starting while an attempt is in progress replaces it without saving.
func (e *Engine) Start(testID, userID string) error {
	test, ok := e.catalog[testID]
	if !ok {
		return domain.ErrTestNotFound
	}

	questions := make([]domain.Question, len(test.Questions))
	copy(questions, test.Questions)

	if test.Settings.RandomizeQuestions {
		e.rnd.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}
	if test.Settings.RandomizeOptions {
		for i, q := range questions {
			if q.IsChoice() {
				questions[i] = e.shuffleOptions(q)
			}
		}
	}

	active := test
	active.Questions = questions
	e.active = &active
	e.current = &domain.TestAttempt{
		ID:        e.newID(),
		TestID:    testID,
		UserID:    userID,
		StartedAt: e.now(),
		Answers:   []domain.Answer{},
	}
	return nil
}

// shuffleOptions permutes a question's options and re-derives the correct
// index by tracking the original slot through the permutation. Matching by
// option text would break silently on duplicate strings.
func (e *Engine) shuffleOptions(q domain.Question) domain.Question {
	perm := e.rnd.Perm(len(q.Options))
	shuffled := make([]string, len(q.Options))
	correct := q.CorrectOptionIndex
	for dst, src := range perm {
		shuffled[dst] = q.Options[src]
		if src == q.CorrectOptionIndex {
			correct = dst
		}
	}
	q.Options = shuffled
	q.CorrectOptionIndex = correct
	return q
}

// SubmitAnswer scores an answer against the active test and appends it to
// the current attempt. Resubmitting a question appends a second record; the
// engine does not deduplicate.
func (e *Engine) SubmitAnswer(questionID string, answer domain.AnswerValue, timeSpent int) (domain.Answer, error) {
	if e.current == nil || e.active == nil {
		return domain.Answer{}, domain.ErrNoActiveTest
	}

	var question *domain.Question
	for i := range e.active.Questions {
		if e.active.Questions[i].ID == questionID {
			question = &e.active.Questions[i]
			break
		}
	}
	if question == nil {
		return domain.Answer{}, domain.ErrQuestionNotFound
	}

	recorded := domain.Answer{
		QuestionID: questionID,
		UserAnswer: answer,
		IsCorrect:  scoreAnswer(*question, answer),
		TimeSpent:  timeSpent,
	}
	e.current.Answers = append(e.current.Answers, recorded)
	return recorded, nil
}

// Complete finalizes the current attempt: the score is the count of correct
// answer records over the active test's question count, as a percentage.
// The denominator stays fixed at question count even when duplicate answers
// inflate the record list. The finalized attempt moves into history.
func (e *Engine) Complete() (domain.TestAttempt, error) {
	if e.current == nil || e.active == nil {
		return domain.TestAttempt{}, domain.ErrNoActiveTest
	}

	correct := 0
	for _, a := range e.current.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	score := 0.0
	if total := len(e.active.Questions); total > 0 {
		score = float64(correct) / float64(total) * 100
	}

	completedAt := e.now()
	e.current.CompletedAt = &completedAt
	e.current.Score = &score

	finalized := *e.current
	finalized.Answers = make([]domain.Answer, len(e.current.Answers))
	copy(finalized.Answers, e.current.Answers)

	e.history = append(e.history, finalized)
	return finalized, nil
}

// ClearCurrent drops the active test and current attempt. Idempotent; safe
// to call with nothing in progress.
func (e *Engine) ClearCurrent() {
	e.active = nil
	e.current = nil
}

// ActiveTest returns the randomized working copy of the started test.
func (e *Engine) ActiveTest() (domain.Test, bool) {
	if e.active == nil {
		return domain.Test{}, false
	}
	return *e.active, true
}

// CurrentAttempt returns a snapshot of the attempt in progress.
func (e *Engine) CurrentAttempt() (domain.TestAttempt, bool) {
	if e.current == nil {
		return domain.TestAttempt{}, false
	}
	snapshot := *e.current
	snapshot.Answers = make([]domain.Answer, len(e.current.Answers))
	copy(snapshot.Answers, e.current.Answers)
	return snapshot, true
}

// History lists attempts finalized by this engine instance, oldest first.
func (e *Engine) History() []domain.TestAttempt {
	out := make([]domain.TestAttempt, len(e.history))
	copy(out, e.history)
	return out
}

// scoreAnswer dispatches correctness evaluation on the question variant.
// Choice questions require a numeric answer equal to the correct index; a
// textual "1" never matches index 1. Fill-in-blanks compares with Unicode
// case folding and no whitespace trimming.
func scoreAnswer(q domain.Question, answer domain.AnswerValue) bool {
	switch {
	case q.IsChoice():
		return answer.Numeric && answer.Index == q.CorrectOptionIndex
	case q.Type == domain.QuestionFillInBlanks:
		return strings.EqualFold(answer.String(), q.CorrectAnswer)
	default:
		return false
	}
}

// CalculateScore recomputes a percentage score for an externally supplied
// question list and positional answers, without an active attempt. Answers
// referencing positions outside the list are ignored. An empty question
// list scores 0.
func CalculateScore(questions []domain.Question, answers []domain.IndexedAnswer) float64 {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= len(questions) {
			continue
		}
		if scoreAnswer(questions[a.QuestionIndex], a.Answer) {
			correct++
		}
	}
	return float64(correct) / float64(len(questions)) * 100
}
