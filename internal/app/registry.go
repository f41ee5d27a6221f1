package app

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"livequiz-service/internal/domain"
)

const (
	pinMin  = 100000
	pinSpan = 900000

	// maxPinAttempts bounds collision retries; the source looped forever.
	maxPinAttempts = 100
)

// Registry owns the mapping from PIN to live game session for the process's
// lifetime. It is constructed once and injected into the game service; state
// is lost on restart, which is acceptable for ephemeral sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*GameSession
	rnd      *rand.Rand
	now      func() time.Time
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return NewRegistryWithClock(logger, time.Now)
}

// NewRegistryWithClock is test-only for deterministic question timestamps.
func NewRegistryWithClock(logger *zap.Logger, now func() time.Time) *Registry {
	return &Registry{
		sessions: make(map[string]*GameSession),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      now,
		logger:   logger,
	}
}

// Create allocates a collision-free 6-digit PIN and inserts a fresh session
// for the quiz. PINs freed by Remove become reusable immediately.
func (r *Registry) Create(quiz domain.Quiz) (*GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < maxPinAttempts; attempt++ {
		pin := strconv.Itoa(pinMin + r.rnd.Intn(pinSpan))
		if _, taken := r.sessions[pin]; taken {
			continue
		}
		session := newGameSession(pin, quiz, r.now, r.logger)
		r.sessions[pin] = session
		r.logger.Info("game session created",
			zap.String("pin", pin),
			zap.String("quizId", quiz.ID),
			zap.Int("sessions", len(r.sessions)))
		return session, nil
	}
	return nil, domain.ErrPinExhausted
}

// Get returns the live session for a PIN.
func (r *Registry) Get(pin string) (*GameSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[pin]
	return session, ok
}

// Remove deletes the session and cancels its pending advance, freeing the
// PIN for reuse.
func (r *Registry) Remove(pin string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[pin]
	if !ok {
		return
	}
	session.Close()
	delete(r.sessions, pin)
	r.logger.Info("game session removed",
		zap.String("pin", pin),
		zap.Int("sessions", len(r.sessions)))
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ForEach calls fn for every live session.
func (r *Registry) ForEach(fn func(*GameSession)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, session := range r.sessions {
		fn(session)
	}
}

// Close cancels every session's pending work. Called on server shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		session.Close()
	}
	r.sessions = make(map[string]*GameSession)
}
