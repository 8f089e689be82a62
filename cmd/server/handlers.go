package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/certledger/certledger/internal/ai"
	"github.com/certledger/certledger/internal/catalog"
	"github.com/certledger/certledger/internal/platform/cache"
	"github.com/certledger/certledger/internal/platform/database"
	"github.com/certledger/certledger/internal/quiz"
	"github.com/certledger/certledger/internal/recommend"
)

// server holds the wired engines behind the HTTP surface.
type server struct {
	quizzes   *quiz.Engine
	recommend *recommend.Engine
	catalog   catalog.Store
	db        *database.DB
	cache     *cache.Cache
}

// newMux creates the HTTP router.
func newMux(s *server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/recommendations/{email}", s.handleRecommendations)
	mux.HandleFunc("GET /api/quizzes", s.handleListQuizzes)
	mux.HandleFunc("POST /api/quizzes", s.handleCreateQuiz)
	mux.HandleFunc("GET /api/quizzes/{quizID}", s.handleQuizDetails)
	mux.HandleFunc("POST /api/quizzes/{quizID}/next-question", s.handleNextQuestion)
	mux.HandleFunc("POST /api/quizzes/{quizID}/submit", s.handleSubmitQuiz)
	return mux
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.HealthCheck(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.cache != nil {
		if err := s.cache.HealthCheck(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "cache unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	resp, err := s.recommend.GetRecommendations(r.Context(), email)
	if err != nil {
		slog.Error("recommendations failed", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build recommendations")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	quizzes, err := s.quizzes.ListQuizzes(r.Context(), email)
	if err != nil {
		slog.Error("list quizzes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list quizzes")
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (s *server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req catalog.QuizDefinition
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.IsActive = true

	created, err := s.catalog.CreateQuiz(r.Context(), req)
	if err != nil {
		slog.Error("create quiz failed", "topic", req.Topic, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleQuizDetails(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	details, err := s.quizzes.GetQuizDetails(r.Context(), r.PathValue("quizID"), email)
	if err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *server) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string              `json:"email"`
		History []quiz.AnswerRecord `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	question, err := s.quizzes.NextQuestion(r.Context(), r.PathValue("quizID"), req.Email, req.History)
	if err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (s *server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Score int    `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	result, err := s.quizzes.SubmitQuiz(r.Context(), r.PathValue("quizID"), req.Email, req.Score)
	if err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeQuizError maps quiz pipeline errors to HTTP statuses.
func writeQuizError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "quiz not found")
	case errors.Is(err, quiz.ErrSessionComplete):
		writeError(w, http.StatusConflict, "quiz session already complete")
	case errors.Is(err, ai.ErrBudgetExceeded):
		writeError(w, http.StatusTooManyRequests, "token budget exceeded")
	case errors.Is(err, quiz.ErrGenerationFailed):
		slog.Error("question generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "question generation failed")
	default:
		slog.Error("quiz request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
