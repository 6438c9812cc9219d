package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"vocab-test-service/internal/domain"
)

// TestLoader fetches test content from a backing store (e.g., Postgres).
type TestLoader interface {
	LoadTest(ctx context.Context, testID string) (domain.Test, error)
}

// TestRepository caches full test documents in Redis and falls back to a
// loader on cache miss. The whole test is cached (not just answer keys)
// because attempts need complete question content to randomize.
// Tests are stored as: SET test:{testID} {json} EX {ttl}
type TestRepository struct {
	client *redis.Client
	loader TestLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewTestRepository(client *redis.Client, loader TestLoader, ttl time.Duration) *TestRepository {
	return &TestRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *TestRepository) GetTest(ctx context.Context, testID string) (domain.Test, error) {
	key := r.testKey(testID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var test domain.Test
		if err := json.Unmarshal(raw, &test); err == nil {
			return test, nil
		}
		// fall through to reload on a corrupt cache entry
	}

	result, err, _ := r.sf.Do(testID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var test domain.Test
			if err := json.Unmarshal(raw, &test); err == nil {
				return test, nil
			}
		}

		test, err := r.loader.LoadTest(ctx, testID)
		if err != nil {
			return domain.Test{}, err
		}

		raw, err := json.Marshal(test)
		if err != nil {
			return domain.Test{}, fmt.Errorf("marshal test: %w", err)
		}
		_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()

		return test, nil
	})
	if err != nil {
		return domain.Test{}, err
	}
	return result.(domain.Test), nil
}

// Invalidate drops a cached test, e.g. after a catalog update.
func (r *TestRepository) Invalidate(ctx context.Context, testID string) error {
	return r.client.Del(ctx, r.testKey(testID)).Err()
}

func (r *TestRepository) testKey(testID string) string {
	return "test:" + testID
}

func (r *TestRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
