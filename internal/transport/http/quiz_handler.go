package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

// QuizHandler exposes quiz CRUD over REST. The live-game core only depends
// on lookups; these routes exist for the quiz-builder client.
type QuizHandler struct {
	store  app.QuizStore
	logger *zap.Logger
}

func NewQuizHandler(store app.QuizStore, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{store: store, logger: logger}
}

// Register mounts the quiz routes on the mux.
func (h *QuizHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/quizzes", h.List)
	mux.HandleFunc("POST /api/quizzes", h.Create)
	mux.HandleFunc("GET /api/quizzes/{id}", h.Get)
	mux.HandleFunc("PUT /api/quizzes/{id}", h.Update)
	mux.HandleFunc("DELETE /api/quizzes/{id}", h.Delete)
}

type quizRequest struct {
	Title     string            `json:"title"`
	Questions []domain.Question `json:"questions"`
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.store.ListQuizzes(r.Context())
	if err != nil {
		h.logger.Error("list quizzes failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load quizzes")
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := domain.ValidateQuiz(req.Title, req.Questions); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quiz, err := h.store.CreateQuiz(r.Context(), req.Title, req.Questions)
	if err != nil {
		h.logger.Error("create quiz failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save quiz")
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.store.GetQuiz(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, "Quiz not found")
		return
	}
	if err != nil {
		h.logger.Error("get quiz failed", zap.String("quizId", r.PathValue("id")), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load quiz")
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := domain.ValidateQuiz(req.Title, req.Questions); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quiz, err := h.store.UpdateQuiz(r.Context(), r.PathValue("id"), req.Title, req.Questions)
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, "Quiz not found")
		return
	}
	if err != nil {
		h.logger.Error("update quiz failed", zap.String("quizId", r.PathValue("id")), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save quiz")
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteQuiz(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, "Quiz not found")
		return
	}
	if err != nil {
		h.logger.Error("delete quiz failed", zap.String("quizId", r.PathValue("id")), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete quiz")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
