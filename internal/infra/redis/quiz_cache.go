package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

// QuizCache decorates an app.QuizStore with a Redis read cache so repeated
// session creations for the same quiz don't hit the backing store. Documents
// are stored as: SET quiz:{quizID}:doc {json} with TTL. Writes pass through
// to the inner store and invalidate the cached document.
type QuizCache struct {
	client *redis.Client
	inner  app.QuizStore
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, inner app.QuizStore, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	key := c.key(id)

	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		var quiz domain.Quiz
		if err := json.Unmarshal([]byte(cached), &quiz); err == nil {
			return quiz, nil
		}
		// Unreadable entry: fall through and refill.
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if cached, err := c.client.Get(ctx, key).Result(); err == nil {
			var quiz domain.Quiz
			if err := json.Unmarshal([]byte(cached), &quiz); err == nil {
				return quiz, nil
			}
		}

		quiz, err := c.inner.GetQuiz(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		if data, err := json.Marshal(quiz); err == nil {
			// best-effort: a failed SET only costs a future cache miss
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) CreateQuiz(ctx context.Context, title string, questions []domain.Question) (domain.Quiz, error) {
	return c.inner.CreateQuiz(ctx, title, questions)
}

func (c *QuizCache) UpdateQuiz(ctx context.Context, id, title string, questions []domain.Question) (domain.Quiz, error) {
	quiz, err := c.inner.UpdateQuiz(ctx, id, title, questions)
	if err != nil {
		return domain.Quiz{}, err
	}
	_ = c.client.Del(ctx, c.key(id)).Err()
	return quiz, nil
}

func (c *QuizCache) DeleteQuiz(ctx context.Context, id string) error {
	if err := c.inner.DeleteQuiz(ctx, id); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(id)).Err()
	return nil
}

func (c *QuizCache) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return c.inner.ListQuizzes(ctx)
}

func (c *QuizCache) key(id string) string {
	return "quiz:" + id + ":doc"
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
