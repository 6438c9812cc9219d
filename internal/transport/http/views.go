package http

import (
	"time"

	"vocab-test-service/internal/domain"
)

// questionView is a question as shown to a test taker: answer keys
// (correctOptionIndex, correctAnswer) are stripped.
type questionView struct {
	ID               string              `json:"id"`
	Type             domain.QuestionType `json:"type"`
	VocabItemID      string              `json:"vocabItemId"`
	DifficultyRating int                 `json:"difficultyRating"`
	Prompt           string              `json:"prompt,omitempty"`
	Term             string              `json:"term,omitempty"`
	Options          []string            `json:"options,omitempty"`
	Sentence         string              `json:"sentence,omitempty"`
	BlankIndex       int                 `json:"blankIndex,omitempty"`
}

// activeTestView is the randomized working copy sent on attempt start.
type activeTestView struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Type        domain.QuestionType `json:"type"`
	Settings    domain.TestSettings `json:"settings"`
	Questions   []questionView      `json:"questions"`
}

type startedPayload struct {
	AttemptID string         `json:"attemptId"`
	StartedAt time.Time      `json:"startedAt"`
	Test      activeTestView `json:"test"`
}

func newActiveTestView(test domain.Test) activeTestView {
	questions := make([]questionView, len(test.Questions))
	for i, q := range test.Questions {
		questions[i] = questionView{
			ID:               q.ID,
			Type:             q.Type,
			VocabItemID:      q.VocabItemID,
			DifficultyRating: q.DifficultyRating,
			Prompt:           q.Prompt,
			Term:             q.Term,
			Options:          q.Options,
			Sentence:         q.Sentence,
			BlankIndex:       q.BlankIndex,
		}
	}
	return activeTestView{
		ID:          test.ID,
		Title:       test.Title,
		Description: test.Description,
		Type:        test.Type,
		Settings:    test.Settings,
		Questions:   questions,
	}
}
