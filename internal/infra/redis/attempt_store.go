package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"vocab-test-service/internal/domain"
)

// AttemptStore keeps finalized attempts in Redis, one hash per user:
// HSET attempts:{userID} {attemptID} {json}
// History must survive restarts, so attempt hashes carry no TTL.
type AttemptStore struct {
	client *redis.Client
}

func NewAttemptStore(client *redis.Client) *AttemptStore {
	return &AttemptStore{client: client}
}

func (s *AttemptStore) SaveAttempt(ctx context.Context, attempt domain.TestAttempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	if err := s.client.HSet(ctx, s.key(attempt.UserID), attempt.ID, raw).Err(); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) ListAttempts(ctx context.Context, userID string) ([]domain.TestAttempt, error) {
	entries, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.TestAttempt, 0, len(entries))
	for _, raw := range entries {
		var attempt domain.TestAttempt
		if err := json.Unmarshal([]byte(raw), &attempt); err != nil {
			return nil, fmt.Errorf("unmarshal attempt: %w", err)
		}
		out = append(out, attempt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

// GetAttempt looks up a single attempt by user and attempt ID.
func (s *AttemptStore) GetAttempt(ctx context.Context, userID, attemptID string) (domain.TestAttempt, error) {
	raw, err := s.client.HGet(ctx, s.key(userID), attemptID).Result()
	if err == redis.Nil {
		return domain.TestAttempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.TestAttempt{}, fmt.Errorf("get attempt: %w", err)
	}
	var attempt domain.TestAttempt
	if err := json.Unmarshal([]byte(raw), &attempt); err != nil {
		return domain.TestAttempt{}, fmt.Errorf("unmarshal attempt: %w", err)
	}
	return attempt, nil
}

func (s *AttemptStore) key(userID string) string {
	return "attempts:" + userID
}
