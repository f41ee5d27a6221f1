// Package file persists quizzes to a single JSON document on disk, the
// same layout the hosted quiz builder keeps under data/quizzes.json.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"livequiz-service/internal/domain"
)

// QuizStore is a file-backed app.QuizStore. Every operation reads and
// rewrites the whole document; quiz catalogs are small enough that this
// stays cheap.
type QuizStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewQuizStore(path string) *QuizStore {
	return &QuizStore{path: path, now: time.Now}
}

func (s *QuizStore) GetQuiz(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quizzes, err := s.load()
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, quiz := range quizzes {
		if quiz.ID == id {
			return quiz, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *QuizStore) CreateQuiz(_ context.Context, title string, questions []domain.Question) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quizzes, err := s.load()
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz := domain.NewQuizRecord(title, questions, s.now())
	quizzes = append(quizzes, quiz)
	if err := s.save(quizzes); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (s *QuizStore) UpdateQuiz(_ context.Context, id, title string, questions []domain.Question) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quizzes, err := s.load()
	if err != nil {
		return domain.Quiz{}, err
	}
	for i := range quizzes {
		if quizzes[i].ID != id {
			continue
		}
		quizzes[i].Title = title
		quizzes[i].Questions = domain.EnsureQuestionIDs(questions)
		if err := s.save(quizzes); err != nil {
			return domain.Quiz{}, err
		}
		return quizzes[i], nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *QuizStore) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quizzes, err := s.load()
	if err != nil {
		return err
	}
	kept := quizzes[:0]
	for _, quiz := range quizzes {
		if quiz.ID != id {
			kept = append(kept, quiz)
		}
	}
	if len(kept) == len(quizzes) {
		return domain.ErrQuizNotFound
	}
	return s.save(kept)
}

func (s *QuizStore) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *QuizStore) load() ([]domain.Quiz, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Quiz{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read quizzes: %w", err)
	}
	var quizzes []domain.Quiz
	if err := json.Unmarshal(data, &quizzes); err != nil {
		return nil, fmt.Errorf("decode quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *QuizStore) save(quizzes []domain.Quiz) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(quizzes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode quizzes: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write quizzes: %w", err)
	}
	return nil
}
