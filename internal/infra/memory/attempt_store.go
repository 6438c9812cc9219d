package memory

import (
	"context"
	"sort"
	"sync"

	"vocab-test-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore, keyed by
// user.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string][]domain.TestAttempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string][]domain.TestAttempt)}
}

func (s *AttemptStore) SaveAttempt(_ context.Context, attempt domain.TestAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.UserID] = append(s.attempts[attempt.UserID], attempt)
	return nil
}

func (s *AttemptStore) ListAttempts(_ context.Context, userID string) ([]domain.TestAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TestAttempt, len(s.attempts[userID]))
	copy(out, s.attempts[userID])
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}
