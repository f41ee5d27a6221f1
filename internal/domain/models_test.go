package domain

import (
	"errors"
	"testing"
	"time"
)

func validQuestions() []Question {
	return []Question{
		{
			Question:  "Capital of France?",
			TimeLimit: 20,
			Answers: []Answer{
				{Text: "Paris", IsCorrect: true},
				{Text: "Lyon", IsCorrect: false},
			},
		},
	}
}

func TestNewQuizRecordAssignsIDs(t *testing.T) {
	created := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	quiz := NewQuizRecord("Capitals", validQuestions(), created)

	if quiz.ID == "" {
		t.Fatalf("expected quiz id")
	}
	if quiz.CreatedAt != created.UnixMilli() {
		t.Fatalf("expected createdAt %d, got %d", created.UnixMilli(), quiz.CreatedAt)
	}
	for _, q := range quiz.Questions {
		if q.ID == "" {
			t.Fatalf("question missing id: %+v", q)
		}
		for _, a := range q.Answers {
			if a.ID == "" {
				t.Fatalf("answer missing id: %+v", a)
			}
		}
	}
}

func TestEnsureQuestionIDsKeepsExisting(t *testing.T) {
	questions := validQuestions()
	questions[0].ID = "q-fixed"
	questions[0].Answers[0].ID = "a-fixed"

	out := EnsureQuestionIDs(questions)
	if out[0].ID != "q-fixed" || out[0].Answers[0].ID != "a-fixed" {
		t.Fatalf("existing ids overwritten: %+v", out[0])
	}
}

func TestCorrectAnswerID(t *testing.T) {
	q := validQuestions()[0]
	q.Answers[0].ID = "a1"
	if got := q.CorrectAnswerID(); got != "a1" {
		t.Fatalf("expected a1, got %q", got)
	}

	none := Question{Answers: []Answer{{ID: "a1"}, {ID: "a2"}}}
	if got := none.CorrectAnswerID(); got != "" {
		t.Fatalf("expected empty id when nothing is correct, got %q", got)
	}
}

func TestValidateQuiz(t *testing.T) {
	if err := ValidateQuiz("Capitals", validQuestions()); err != nil {
		t.Fatalf("valid quiz rejected: %v", err)
	}

	cases := []struct {
		name      string
		title     string
		questions []Question
	}{
		{"missing title", "", validQuestions()},
		{"no questions", "Capitals", nil},
		{"no prompt", "Capitals", func() []Question {
			qs := validQuestions()
			qs[0].Question = ""
			return qs
		}()},
		{"zero time limit", "Capitals", func() []Question {
			qs := validQuestions()
			qs[0].TimeLimit = 0
			return qs
		}()},
		{"single answer", "Capitals", func() []Question {
			qs := validQuestions()
			qs[0].Answers = qs[0].Answers[:1]
			return qs
		}()},
		{"two correct answers", "Capitals", func() []Question {
			qs := validQuestions()
			qs[0].Answers[1].IsCorrect = true
			return qs
		}()},
	}
	for _, tc := range cases {
		if err := ValidateQuiz(tc.title, tc.questions); !errors.Is(err, ErrInvalidQuiz) {
			t.Fatalf("%s: expected ErrInvalidQuiz, got %v", tc.name, err)
		}
	}
}
