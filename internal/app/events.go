package app

import "livequiz-service/internal/domain"

// EventType names match the client-facing protocol of the realtime gateway.
type EventType string

const (
	EventPlayerJoined    EventType = "playerJoined"
	EventPlayerLeft      EventType = "playerLeft"
	EventGameStarted     EventType = "gameStarted"
	EventQuestionStarted EventType = "questionStarted"
	EventPlayerAnswered  EventType = "playerAnswered"
	EventQuestionEnded   EventType = "questionEnded"
	EventGameEnded       EventType = "gameEnded"
)

// Event is a state-change notification fanned out to every connection
// grouped under a session's PIN.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

type PlayerJoinedPayload struct {
	Player domain.Player `json:"player"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
}

type QuestionStartedPayload struct {
	QuestionIndex int             `json:"questionIndex"`
	Question      domain.Question `json:"question"`
}

type PlayerAnsweredPayload struct {
	PlayerID string `json:"playerId"`
	AnswerID string `json:"answerId"`
}

type QuestionEndedPayload struct {
	CorrectAnswerID string         `json:"correctAnswerId"`
	Scores          map[string]int `json:"scores"`
}

type GameEndedPayload struct {
	FinalScores []domain.Standing `json:"finalScores"`
}
