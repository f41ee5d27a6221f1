package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrGameNotFound is returned when a PIN does not resolve to a live session.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameStarted is returned when a player tries to join a session that
	// has left the waiting state.
	ErrGameStarted = errors.New("game already started")
	// ErrPinExhausted is returned when PIN generation keeps colliding with
	// live sessions.
	ErrPinExhausted = errors.New("could not allocate a unique game pin")
	// ErrInvalidQuiz wraps quiz-creation validation failures.
	ErrInvalidQuiz = errors.New("invalid quiz")
)
