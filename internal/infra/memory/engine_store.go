package memory

import (
	"sync"

	"vocab-test-service/internal/engine"
)

// EngineStore keeps one attempt engine per user, implementing
// app.EngineStore. Engine options are applied to every engine it creates.
type EngineStore struct {
	mu      sync.RWMutex
	engines map[string]*engine.Engine
	opts    []engine.Option
}

func NewEngineStore(opts ...engine.Option) *EngineStore {
	return &EngineStore{
		engines: make(map[string]*engine.Engine),
		opts:    opts,
	}
}

func (s *EngineStore) GetOrCreate(userID string) *engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if eng, ok := s.engines[userID]; ok {
		return eng
	}
	eng := engine.New(s.opts...)
	s.engines[userID] = eng
	return eng
}

func (s *EngineStore) Get(userID string) (*engine.Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eng, ok := s.engines[userID]
	return eng, ok
}

func (s *EngineStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.engines, userID)
}
