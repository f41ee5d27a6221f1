package app

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"livequiz-service/internal/domain"
)

// ClientConn is a connected participant as seen by a session. Send must not
// block: implementations queue the event and deliver it in queue order.
type ClientConn interface {
	Send(event Event) error
	Close() error
}

// GameSession tracks one live game keyed by PIN: the quiz being played,
// the joined players, the connections grouped under the PIN, and the
// question cursor used for speed-weighted scoring.
//
// The mutex is the session's exclusive-access domain: every command's
// read-modify-write plus broadcast enqueue runs under it, so recipients see
// events in mutation order and commands against the same PIN never
// interleave mid-mutation.
type GameSession struct {
	pin  string
	quiz domain.Quiz

	mu        sync.Mutex
	players   map[string]*domain.Player
	joinOrder []string
	clients   map[string]ClientConn

	currentQuestion   int
	started           bool
	ended             bool
	questionStartedAt time.Time // zero until a question begins

	advanceTimer *time.Timer

	now    func() time.Time
	logger *zap.Logger
}

func newGameSession(pin string, quiz domain.Quiz, now func() time.Time, logger *zap.Logger) *GameSession {
	return &GameSession{
		pin:     pin,
		quiz:    quiz,
		players: make(map[string]*domain.Player),
		clients: make(map[string]ClientConn),
		now:     now,
		logger:  logger,
	}
}

// Pin returns the session's 6-digit PIN.
func (s *GameSession) Pin() string {
	return s.pin
}

// PlayerCount returns the current membership size.
func (s *GameSession) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// Player returns a snapshot of the player keyed by the given identity.
func (s *GameSession) Player(id string) (domain.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return domain.Player{}, false
	}
	return *p, true
}

// Started reports whether the session has left the waiting state.
func (s *GameSession) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Ended reports whether the session reached its terminal state.
func (s *GameSession) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// CurrentQuestionIndex returns the question cursor.
func (s *GameSession) CurrentQuestionIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentQuestion
}

// Join adds a player for the given connection identity and registers the
// connection in the session's broadcast group. Rejected once the game has
// started. A duplicate join under the same identity replaces the player
// record and re-broadcasts, matching the source behavior.
func (s *GameSession) Join(connID, name string, conn ClientConn) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return domain.Player{}, domain.ErrGameStarted
	}

	player := &domain.Player{
		ID:      connID,
		Name:    name,
		Score:   0,
		Answers: make(map[int]string),
	}
	if _, seen := s.players[connID]; !seen {
		s.joinOrder = append(s.joinOrder, connID)
	}
	s.players[connID] = player
	s.clients[connID] = conn

	s.broadcastLocked(Event{Type: EventPlayerJoined, Payload: PlayerJoinedPayload{Player: *player}})
	return *player, nil
}

// Start moves the session to the in-progress state, stamps the first
// question's start time and announces it.
func (s *GameSession) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended || len(s.quiz.Questions) == 0 {
		return
	}

	s.started = true
	s.currentQuestion = 0
	s.questionStartedAt = s.now()

	s.broadcastLocked(Event{Type: EventGameStarted})
	s.broadcastLocked(Event{Type: EventQuestionStarted, Payload: QuestionStartedPayload{
		QuestionIndex: 0,
		Question:      s.quiz.Questions[0],
	}})
}

// SubmitAnswer records the player's answer for the current question,
// awarding speed-weighted points when it matches the correct answer and a
// question is actually running. Reports whether the player was known.
func (s *GameSession) SubmitAnswer(playerID, answerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[playerID]
	if !ok {
		return false
	}

	// Last write wins for an already-answered index.
	player.Answers[s.currentQuestion] = answerID

	if !s.ended && s.currentQuestion < len(s.quiz.Questions) && !s.questionStartedAt.IsZero() {
		question := s.quiz.Questions[s.currentQuestion]
		if answerID == question.CorrectAnswerID() {
			player.Score += Score(s.now().Sub(s.questionStartedAt), true)
		}
	}

	s.broadcastLocked(Event{Type: EventPlayerAnswered, Payload: PlayerAnsweredPayload{
		PlayerID: playerID,
		AnswerID: answerID,
	}})
	return true
}

// EndQuestion reveals the current question's correct answer together with a
// snapshot of all scores. The follow-up advance is scheduled by the caller.
func (s *GameSession) EndQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}

	correctID := ""
	if s.currentQuestion < len(s.quiz.Questions) {
		correctID = s.quiz.Questions[s.currentQuestion].CorrectAnswerID()
	}
	scores := make(map[string]int, len(s.players))
	for id, p := range s.players {
		scores[id] = p.Score
	}

	s.broadcastLocked(Event{Type: EventQuestionEnded, Payload: QuestionEndedPayload{
		CorrectAnswerID: correctID,
		Scores:          scores,
	}})
}

// Advance moves to the next question, ending the game when the quiz is
// exhausted. No-op on an ended session, so a stale reveal continuation can
// never clobber newer state.
func (s *GameSession) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}

	s.currentQuestion++
	if s.currentQuestion >= len(s.quiz.Questions) {
		s.endLocked()
		return
	}

	s.questionStartedAt = s.now()
	s.broadcastLocked(Event{Type: EventQuestionStarted, Payload: QuestionStartedPayload{
		QuestionIndex: s.currentQuestion,
		Question:      s.quiz.Questions[s.currentQuestion],
	}})
}

// End marks the session ended and broadcasts the final standings.
func (s *GameSession) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked()
}

func (s *GameSession) endLocked() {
	s.ended = true
	s.broadcastLocked(Event{Type: EventGameEnded, Payload: GameEndedPayload{
		FinalScores: s.standingsLocked(),
	}})
}

// Standings returns the scoreboard sorted by score descending, ties stable
// by join order.
func (s *GameSession) Standings() []domain.Standing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.standingsLocked()
}

func (s *GameSession) standingsLocked() []domain.Standing {
	standings := make([]domain.Standing, 0, len(s.players))
	for _, id := range s.joinOrder {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		standings = append(standings, domain.Standing{PlayerID: p.ID, Name: p.Name, Score: p.Score})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	return standings
}

// Disconnect removes the identity's player and connection from the session
// and tells the remaining members. Reports whether the identity was a member.
func (s *GameSession) Disconnect(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[connID]; !ok {
		return false
	}
	delete(s.players, connID)
	delete(s.clients, connID)
	for i, id := range s.joinOrder {
		if id == connID {
			s.joinOrder = append(s.joinOrder[:i], s.joinOrder[i+1:]...)
			break
		}
	}

	s.broadcastLocked(Event{Type: EventPlayerLeft, Payload: PlayerLeftPayload{PlayerID: connID}})
	return true
}

// scheduleAdvance arms the reveal-delay continuation, replacing any pending
// one so a session never carries two scheduled advances.
func (s *GameSession) scheduleAdvance(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.advanceTimer != nil {
		s.advanceTimer.Stop()
	}
	s.advanceTimer = time.AfterFunc(d, fn)
}

// Close cancels any pending advance. Called on session teardown.
func (s *GameSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.advanceTimer != nil {
		s.advanceTimer.Stop()
		s.advanceTimer = nil
	}
}

func (s *GameSession) broadcastLocked(event Event) {
	for id, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("broadcast failed",
				zap.String("pin", s.pin),
				zap.String("playerId", id),
				zap.String("event", string(event.Type)),
				zap.Error(err))
		}
	}
}
