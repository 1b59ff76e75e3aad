// backend/internal/quiz/handler.go
package quiz

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quiz-platform/internal/apperr"
	"quiz-platform/internal/auth"
	"quiz-platform/internal/httpx"
	"quiz-platform/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid " + name)
	}
	return uint(id), nil
}

func isAdmin(r *http.Request) bool {
	user := auth.CurrentUser(r.Context())
	return user != nil && user.IsAdmin
}

func renderQuizzes(quizzes []models.Quiz, withAnswers bool) []models.QuizDTO {
	out := make([]models.QuizDTO, len(quizzes))
	for i, q := range quizzes {
		out[i] = q.ToDTO(withAnswers)
	}
	return out
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	category, err := h.service.CreateCategory(r.Context(), auth.CurrentUser(r.Context()), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req CategoryRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	category, err := h.service.UpdateCategory(r.Context(), auth.CurrentUser(r.Context()), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), auth.CurrentUser(r.Context()), id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CategoryQuizzes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	quizzes, err := h.service.ListQuizzes(r.Context(), &id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderQuizzes(quizzes, isAdmin(r)))
}

// ListQuizzes accepts an optional ?category=<id> filter.
func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	var categoryID *uint
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httpx.Error(w, r, apperr.Validation("Invalid category"))
			return
		}
		cid := uint(id)
		categoryID = &cid
	}

	quizzes, err := h.service.ListQuizzes(r.Context(), categoryID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderQuizzes(quizzes, isAdmin(r)))
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	quiz, err := h.service.GetQuiz(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quiz.ToDTO(isAdmin(r)))
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req QuizRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	quiz, err := h.service.CreateQuiz(r.Context(), auth.CurrentUser(r.Context()), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, quiz.ToDTO(true))
}

func (h *Handler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req QuizRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	quiz, err := h.service.UpdateQuiz(r.Context(), auth.CurrentUser(r.Context()), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quiz.ToDTO(true))
}

func (h *Handler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.DeleteQuiz(r.Context(), auth.CurrentUser(r.Context()), id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var batch QuestionBatch
	if err := httpx.Decode(r, &batch); err != nil {
		httpx.Error(w, r, err)
		return
	}
	questions, err := h.service.AddQuestions(r.Context(), auth.CurrentUser(r.Context()), id, batch)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	out := make([]models.QuestionDTO, len(questions))
	for i, q := range questions {
		out[i] = q.ToDTO(true)
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req QuestionUpdateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	question, err := h.service.UpdateQuestion(r.Context(), auth.CurrentUser(r.Context()), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, question.ToDTO(true))
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.DeleteQuestion(r.Context(), auth.CurrentUser(r.Context()), id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TakeQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req TakeQuizRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	attempt, err := h.service.TakeQuiz(r.Context(), auth.CurrentUser(r.Context()), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"score":      attempt.Score,
		"attempt_id": attempt.ID,
	})
}

func (h *Handler) RateQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req RateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	rating, err := h.service.RateQuiz(r.Context(), auth.CurrentUser(r.Context()), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rating)
}

func (h *Handler) AverageRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	avg, err := h.service.AverageRating(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]*float64{"average_rating": avg})
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	entries, err := h.service.Leaderboard(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.service.Progress(r.Context(), auth.CurrentUser(r.Context()))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, attempts)
}

// Routes mounts the category, quiz, question, attempt and rating endpoints
// on api. Admin checks happen in the service.
func (h *Handler) Routes(api *mux.Router) {
	api.HandleFunc("/categories", h.ListCategories).Methods("GET")
	api.HandleFunc("/categories", auth.Require(h.CreateCategory)).Methods("POST")
	api.HandleFunc("/categories/{id}", h.GetCategory).Methods("GET")
	api.HandleFunc("/categories/{id}", auth.Require(h.UpdateCategory)).Methods("PUT")
	api.HandleFunc("/categories/{id}", auth.Require(h.DeleteCategory)).Methods("DELETE")
	api.HandleFunc("/categories/{id}/quizzes", h.CategoryQuizzes).Methods("GET")

	api.HandleFunc("/quizzes", h.ListQuizzes).Methods("GET")
	api.HandleFunc("/quizzes", auth.Require(h.CreateQuiz)).Methods("POST")
	api.HandleFunc("/quizzes/{id}", h.GetQuiz).Methods("GET")
	api.HandleFunc("/quizzes/{id}", auth.Require(h.UpdateQuiz)).Methods("PUT")
	api.HandleFunc("/quizzes/{id}", auth.Require(h.DeleteQuiz)).Methods("DELETE")
	api.HandleFunc("/quizzes/{id}/questions", auth.Require(h.AddQuestions)).Methods("POST")
	api.HandleFunc("/questions/{id}", auth.Require(h.UpdateQuestion)).Methods("PUT")
	api.HandleFunc("/questions/{id}", auth.Require(h.DeleteQuestion)).Methods("DELETE")

	api.HandleFunc("/quizzes/{id}/take", auth.Require(h.TakeQuiz)).Methods("POST")
	api.HandleFunc("/quizzes/{id}/rate", auth.Require(h.RateQuiz)).Methods("POST")
	api.HandleFunc("/quizzes/{id}/average-rating", h.AverageRating).Methods("GET")
	api.HandleFunc("/quizzes/{id}/leaderboard", h.GetLeaderboard).Methods("GET")
	api.HandleFunc("/progress", auth.Require(h.Progress)).Methods("GET")
}
