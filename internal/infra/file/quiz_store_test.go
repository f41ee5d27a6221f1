package file

import (
	"context"
	"path/filepath"
	"testing"

	"livequiz-service/internal/domain"
)

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Question:  "Capital of France?",
			TimeLimit: 20,
			Answers: []domain.Answer{
				{Text: "Paris", IsCorrect: true},
				{Text: "Lyon", IsCorrect: false},
			},
		},
	}
}

func TestQuizStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "quizzes.json")

	store := NewQuizStore(path)
	quiz, err := store.CreateQuiz(ctx, "Capitals", sampleQuestions())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A fresh instance reads the same document.
	reopened := NewQuizStore(path)
	got, err := reopened.GetQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get from reopened store: %v", err)
	}
	if got.Title != "Capitals" || len(got.Questions) != 1 {
		t.Fatalf("expected persisted quiz, got %+v", got)
	}
}

func TestQuizStoreMissingFileIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore(filepath.Join(t.TempDir(), "absent.json"))

	quizzes, err := store.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(quizzes))
	}
	if _, err := store.GetQuiz(ctx, "anything"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestQuizStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore(filepath.Join(t.TempDir(), "quizzes.json"))

	quiz, err := store.CreateQuiz(ctx, "Capitals", sampleQuestions())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := store.UpdateQuiz(ctx, quiz.ID, "World Capitals", quiz.Questions)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "World Capitals" {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}

	if err := store.DeleteQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteQuiz(ctx, quiz.ID); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}
