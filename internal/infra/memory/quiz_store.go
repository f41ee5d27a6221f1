package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"livequiz-service/internal/domain"
)

// QuizStore is an in-memory app.QuizStore, used for tests and demo mode.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
	now     func() time.Time
}

func NewQuizStore() *QuizStore {
	return &QuizStore{
		quizzes: make(map[string]domain.Quiz),
		now:     time.Now,
	}
}

// NewQuizStoreWithSeed pre-populates the store, keeping seeded ids intact.
func NewQuizStoreWithSeed(seed []domain.Quiz) *QuizStore {
	store := NewQuizStore()
	for _, quiz := range seed {
		store.quizzes[quiz.ID] = quiz
	}
	return store
}

func (s *QuizStore) GetQuiz(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *QuizStore) CreateQuiz(_ context.Context, title string, questions []domain.Question) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz := domain.NewQuizRecord(title, questions, s.now())
	s.quizzes[quiz.ID] = quiz
	return quiz, nil
}

func (s *QuizStore) UpdateQuiz(_ context.Context, id, title string, questions []domain.Question) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz.Title = title
	quiz.Questions = domain.EnsureQuestionIDs(questions)
	s.quizzes[id] = quiz
	return quiz, nil
}

func (s *QuizStore) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	return nil
}

func (s *QuizStore) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		quizzes = append(quizzes, quiz)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].CreatedAt < quizzes[j].CreatedAt })
	return quizzes, nil
}
