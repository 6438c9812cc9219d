package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// QuestionType discriminates the question union. A Test also carries one as
// informational metadata; it is not enforced against the questions it holds.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multipleChoice"
	QuestionMatching       QuestionType = "matching"
	QuestionFillInBlanks   QuestionType = "fillInBlanks"
)

// Question is a tagged union over the three supported variants. Variant
// fields are populated according to Type; all variants share ID, VocabItemID
// and DifficultyRating (1 = easiest, 5 = hardest).
type Question struct {
	ID               string       `json:"id"`
	Type             QuestionType `json:"type"`
	VocabItemID      string       `json:"vocabItemId"`
	DifficultyRating int          `json:"difficultyRating"`

	// multipleChoice
	Prompt string `json:"prompt,omitempty"`

	// matching
	Term string `json:"term,omitempty"`

	// multipleChoice and matching
	Options            []string `json:"options,omitempty"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`

	// fillInBlanks
	Sentence      string `json:"sentence,omitempty"`
	BlankIndex    int    `json:"blankIndex,omitempty"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
}

// IsChoice reports whether the question is answered by selecting an option.
func (q Question) IsChoice() bool {
	return q.Type == QuestionMultipleChoice || q.Type == QuestionMatching
}

// TestSettings controls how an attempt presents a test.
type TestSettings struct {
	TimeLimit                     int  `json:"timeLimit,omitempty"` // seconds, 0 means no limit
	RandomizeQuestions            bool `json:"randomizeQuestions"`
	RandomizeOptions              bool `json:"randomizeOptions"`
	ShowFeedbackAfterEachQuestion bool `json:"showFeedbackAfterEachQuestion"`
}

// Test is a catalog entry: a titled set of questions plus presentation
// settings. Immutable once created except through explicit catalog updates.
type Test struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        QuestionType `json:"type"`
	Questions   []Question   `json:"questions"`
	Settings    TestSettings `json:"settings"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Validate enforces the structural invariants a catalog write must satisfy.
func (t Test) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTest)
	}
	for i, q := range t.Questions {
		if q.DifficultyRating < 1 || q.DifficultyRating > 5 {
			return fmt.Errorf("%w: question %d: difficulty rating %d out of range", ErrInvalidTest, i, q.DifficultyRating)
		}
		switch q.Type {
		case QuestionMultipleChoice, QuestionMatching:
			if len(q.Options) < 2 {
				return fmt.Errorf("%w: question %d: choice questions need at least 2 options", ErrInvalidTest, i)
			}
			if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
				return fmt.Errorf("%w: question %d: correct option index %d out of range", ErrInvalidTest, i, q.CorrectOptionIndex)
			}
		case QuestionFillInBlanks:
			if q.CorrectAnswer == "" {
				return fmt.Errorf("%w: question %d: fill-in-blanks needs a correct answer", ErrInvalidTest, i)
			}
		default:
			return fmt.Errorf("%w: question %d: unknown type %q", ErrInvalidTest, i, q.Type)
		}
	}
	return nil
}

// AnswerValue is the JSON scalar clients submit: either a string (text
// answers) or a number (option selections). The distinction is preserved so
// scoring never coerces one into the other.
type AnswerValue struct {
	Text    string
	Index   int
	Numeric bool
}

// OptionAnswer builds a numeric answer selecting option i.
func OptionAnswer(i int) AnswerValue { return AnswerValue{Index: i, Numeric: true} }

// TextAnswer builds a textual answer.
func TextAnswer(s string) AnswerValue { return AnswerValue{Text: s} }

// String renders the answer the way it would be shown to a user. Numeric
// answers are formatted base-10.
func (v AnswerValue) String() string {
	if v.Numeric {
		return strconv.Itoa(v.Index)
	}
	return v.Text
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.Numeric {
		return json.Marshal(v.Index)
	}
	return json.Marshal(v.Text)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case string:
		*v = TextAnswer(val)
	case float64:
		if val != float64(int(val)) {
			return fmt.Errorf("answer value: non-integer number %v", val)
		}
		*v = OptionAnswer(int(val))
	default:
		return fmt.Errorf("answer value: expected string or number, got %T", raw)
	}
	return nil
}

// Answer records one response within an attempt. Append-only; resubmitting
// the same question appends a second record.
type Answer struct {
	QuestionID string      `json:"questionId"`
	UserAnswer AnswerValue `json:"userAnswer"`
	IsCorrect  bool        `json:"isCorrect"`
	TimeSpent  int         `json:"timeSpent"` // seconds
}

// TestAttempt is one user's run through a test, from start to completion.
// CompletedAt and Score are set only once the attempt is finalized.
type TestAttempt struct {
	ID          string     `json:"id"`
	TestID      string     `json:"testId"`
	UserID      string     `json:"userId"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Answers     []Answer   `json:"answers"`
	Score       *float64   `json:"score,omitempty"` // percentage
}

// Completed reports whether the attempt has been finalized.
func (a TestAttempt) Completed() bool { return a.CompletedAt != nil }

// IndexedAnswer pairs an answer with a position in an externally supplied
// question list, the form the remote grading collaborator consumes.
type IndexedAnswer struct {
	QuestionIndex int         `json:"questionIndex"`
	Answer        AnswerValue `json:"answer"`
}

// GradedAnswer is the remote grader's verdict for a single question.
type GradedAnswer struct {
	QuestionIndex int         `json:"questionIndex"`
	UserAnswer    AnswerValue `json:"userAnswer"`
	IsCorrect     bool        `json:"isCorrect"`
	CorrectAnswer string      `json:"correctAnswer"`
}

// GradingReport is the server-computed grading for a submitted attempt.
// When present, its score is authoritative over the locally computed one.
type GradingReport struct {
	TestID  string         `json:"testId"`
	Score   float64        `json:"score"`
	Answers []GradedAnswer `json:"answers"`
}
