package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Answer is one selectable option on a question. Exactly one answer per
// question is flagged correct at quiz-creation time; play time does not
// re-validate and simply uses the first match.
type Answer struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is a single prompt with a fixed, ordered answer set and a
// per-question time limit in seconds.
type Question struct {
	ID        string   `json:"id"`
	Question  string   `json:"question"`
	Answers   []Answer `json:"answers"`
	TimeLimit int      `json:"timeLimit"`
}

// CorrectAnswerID returns the id of the first answer flagged correct,
// or "" when none is.
func (q Question) CorrectAnswerID() string {
	for _, a := range q.Answers {
		if a.IsCorrect {
			return a.ID
		}
	}
	return ""
}

// Quiz is the persisted quiz document. It is read-only for the lifetime of
// any game session referencing it.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	CreatedAt int64      `json:"createdAt"` // epoch millis
}

// Player is session-scoped state for one joined connection. ID is the
// connection identity and doubles as the durable player key for the
// session's lifetime.
type Player struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Score   int            `json:"score"`
	Answers map[int]string `json:"answers"` // question index -> answer id
}

// Standing is one row of the final scoreboard.
type Standing struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// NewQuizRecord builds a Quiz ready for persistence, assigning ids where the
// caller left them empty.
func NewQuizRecord(title string, questions []Question, createdAt time.Time) Quiz {
	return Quiz{
		ID:        uuid.NewString(),
		Title:     title,
		Questions: EnsureQuestionIDs(questions),
		CreatedAt: createdAt.UnixMilli(),
	}
}

// EnsureQuestionIDs fills in ids for questions and answers that lack one.
func EnsureQuestionIDs(questions []Question) []Question {
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
		for j := range questions[i].Answers {
			if questions[i].Answers[j].ID == "" {
				questions[i].Answers[j].ID = uuid.NewString()
			}
		}
	}
	return questions
}

// ValidateQuiz checks the creation-time invariants of a quiz: a title,
// at least one question, and per question a positive time limit, at least
// two answers and exactly one correct answer.
func ValidateQuiz(title string, questions []Question) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidQuiz)
	}
	if len(questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrInvalidQuiz)
	}
	for i, q := range questions {
		if q.Question == "" {
			return fmt.Errorf("%w: question %d has no prompt", ErrInvalidQuiz, i+1)
		}
		if q.TimeLimit <= 0 {
			return fmt.Errorf("%w: question %d needs a positive time limit", ErrInvalidQuiz, i+1)
		}
		if len(q.Answers) < 2 {
			return fmt.Errorf("%w: question %d needs at least two answers", ErrInvalidQuiz, i+1)
		}
		correct := 0
		for _, a := range q.Answers {
			if a.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("%w: question %d must have exactly one correct answer", ErrInvalidQuiz, i+1)
		}
	}
	return nil
}
