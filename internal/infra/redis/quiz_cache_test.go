package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
)

// countingStore counts GetQuiz calls that reach the backing store.
type countingStore struct {
	app.QuizStore
	calls int
}

func (s *countingStore) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	s.calls++
	return s.QuizStore.GetQuiz(ctx, id)
}

func newCache(t *testing.T) (*QuizCache, *countingStore) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingStore{QuizStore: memory.NewQuizStoreWithSeed([]domain.Quiz{sampleQuiz()})}
	return NewQuizCache(client, inner, time.Minute), inner
}

func TestGetQuizCachesDocument(t *testing.T) {
	ctx := context.Background()
	cache, inner := newCache(t)

	quiz, err := cache.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.ID != "quiz-1" {
		t.Fatalf("expected quiz-1, got %+v", quiz)
	}
	if inner.calls != 1 {
		t.Fatalf("expected one backing call, got %d", inner.calls)
	}

	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected cache hit, backing calls=%d", inner.calls)
	}
}

func TestGetQuizUnknownID(t *testing.T) {
	cache, _ := newCache(t)

	if _, err := cache.GetQuiz(context.Background(), "missing"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestUpdateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	cache, inner := newCache(t)

	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	quiz := sampleQuiz()
	if _, err := cache.UpdateQuiz(ctx, "quiz-1", "Renamed", quiz.Questions); err != nil {
		t.Fatalf("update: %v", err)
	}

	updated, err := cache.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("stale cache entry survived update: %+v", updated)
	}
	if inner.calls != 2 {
		t.Fatalf("expected refill after invalidation, backing calls=%d", inner.calls)
	}
}

func TestDeleteInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)

	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if err := cache.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound after delete, got %v", err)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Arithmetic",
		Questions: []domain.Question{
			{
				ID:       "q1",
				Question: "What is 2 + 2?",
				Answers: []domain.Answer{
					{ID: "a1", Text: "3", IsCorrect: false},
					{ID: "a2", Text: "4", IsCorrect: true},
				},
				TimeLimit: 20,
			},
		},
	}
}
