package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"livequiz-service/internal/domain"
)

// revealDelay is the fixed pause between announcing a question's correct
// answer and advancing to the next question.
const revealDelay = 3 * time.Second

// QuizStore abstracts quiz persistence (memory, JSON file, Postgres, any of
// them behind the Redis cache). The live-game core only ever calls GetQuiz.
type QuizStore interface {
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
	CreateQuiz(ctx context.Context, title string, questions []domain.Question) (domain.Quiz, error)
	UpdateQuiz(ctx context.Context, id, title string, questions []domain.Question) (domain.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// GameService ties quiz lookup to session creation and exposes the command
// handlers consumed by the realtime gateway. Every command but Join absorbs
// not-found conditions silently; the absorbed failures are logged so they
// stay observable without changing client-visible behavior.
type GameService struct {
	registry    *Registry
	quizzes     QuizStore
	revealDelay time.Duration
	logger      *zap.Logger
}

func NewGameService(registry *Registry, quizzes QuizStore, logger *zap.Logger) *GameService {
	return &GameService{
		registry:    registry,
		quizzes:     quizzes,
		revealDelay: revealDelay,
		logger:      logger,
	}
}

// NewGameServiceWithDelay is test-only for deterministic advance pacing.
func NewGameServiceWithDelay(registry *Registry, quizzes QuizStore, logger *zap.Logger, delay time.Duration) *GameService {
	service := NewGameService(registry, quizzes, logger)
	service.revealDelay = delay
	return service
}

// CreateSession looks up the quiz and registers a new waiting session,
// returning its PIN. Fails with domain.ErrQuizNotFound for unknown quiz ids.
func (s *GameService) CreateSession(ctx context.Context, quizID string) (string, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return "", err
	}
	session, err := s.registry.Create(quiz)
	if err != nil {
		return "", err
	}
	return session.Pin(), nil
}

// Join adds the connection to the session as a player. Unlike the other
// commands, failures are surfaced so the gateway can acknowledge them.
func (s *GameService) Join(pin, connID, name string, conn ClientConn) (domain.Player, error) {
	session, ok := s.registry.Get(pin)
	if !ok {
		s.logger.Debug("join rejected: unknown pin", zap.String("pin", pin))
		return domain.Player{}, domain.ErrGameNotFound
	}
	player, err := session.Join(connID, name, conn)
	if err != nil {
		s.logger.Debug("join rejected", zap.String("pin", pin), zap.Error(err))
		return domain.Player{}, err
	}
	s.logger.Info("player joined",
		zap.String("pin", pin),
		zap.String("playerId", connID),
		zap.String("name", name))
	return player, nil
}

// StartGame begins question cycling. Silent no-op for unknown PINs.
func (s *GameService) StartGame(pin string) {
	session, ok := s.registry.Get(pin)
	if !ok {
		s.logger.Debug("start ignored: unknown pin", zap.String("pin", pin))
		return
	}
	session.Start()
	s.logger.Info("game started", zap.String("pin", pin))
}

// SubmitAnswer records an answer for the current question. Silent no-op for
// unknown PINs or players.
func (s *GameService) SubmitAnswer(pin, playerID, answerID string) {
	session, ok := s.registry.Get(pin)
	if !ok {
		s.logger.Debug("answer ignored: unknown pin", zap.String("pin", pin))
		return
	}
	if !session.SubmitAnswer(playerID, answerID) {
		s.logger.Debug("answer ignored: unknown player",
			zap.String("pin", pin),
			zap.String("playerId", playerID))
	}
}

// NextQuestion reveals the current question's results and schedules the
// advance after the reveal delay. Silent no-op for unknown PINs.
func (s *GameService) NextQuestion(pin string) {
	session, ok := s.registry.Get(pin)
	if !ok {
		s.logger.Debug("advance ignored: unknown pin", zap.String("pin", pin))
		return
	}
	session.EndQuestion()
	session.scheduleAdvance(s.revealDelay, func() { s.advance(pin) })
}

// advance is the reveal-delay continuation. It re-resolves the PIN through
// the registry, so a session torn down during the window is never
// resurrected.
func (s *GameService) advance(pin string) {
	session, ok := s.registry.Get(pin)
	if !ok {
		s.logger.Debug("advance skipped: session gone", zap.String("pin", pin))
		return
	}
	session.Advance()
}

// EndGame broadcasts final standings and removes the session; the PIN is
// immediately reusable. Silent no-op for unknown PINs.
func (s *GameService) EndGame(pin string) {
	session, ok := s.registry.Get(pin)
	if !ok {
		s.logger.Debug("end ignored: unknown pin", zap.String("pin", pin))
		return
	}
	session.End()
	s.registry.Remove(pin)
	s.logger.Info("game ended", zap.String("pin", pin))
}

// Disconnect removes the identity from every session it participates in.
// Triggered by transport-level connection loss, never by a client command.
func (s *GameService) Disconnect(connID string) {
	s.registry.ForEach(func(session *GameSession) {
		if session.Disconnect(connID) {
			s.logger.Info("player disconnected",
				zap.String("pin", session.Pin()),
				zap.String("playerId", connID))
		}
	})
}
