package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

// GameHandler exposes session creation to the host's quiz-creation flow.
type GameHandler struct {
	service *app.GameService
	logger  *zap.Logger
}

func NewGameHandler(service *app.GameService, logger *zap.Logger) *GameHandler {
	return &GameHandler{service: service, logger: logger}
}

// Register mounts the game routes on the mux.
func (h *GameHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/games/create", h.Create)
}

type createGameRequest struct {
	QuizID string `json:"quizId"`
}

type createGameResponse struct {
	GamePin string `json:"gamePin"`
}

// Create starts a new waiting session for a quiz and returns its PIN.
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		writeError(w, http.StatusBadRequest, "Quiz ID required")
		return
	}

	pin, err := h.service.CreateSession(r.Context(), req.QuizID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, "Quiz not found")
		return
	}
	if err != nil {
		h.logger.Error("create game session failed", zap.String("quizId", req.QuizID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create game")
		return
	}

	writeJSON(w, http.StatusOK, createGameResponse{GamePin: pin})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
