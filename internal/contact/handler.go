package contact

import (
	"net/http"

	"github.com/gorilla/mux"

	"quiz-platform/internal/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	msg, err := h.service.Submit(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) Routes(api *mux.Router) {
	api.HandleFunc("/contact", h.Submit).Methods("POST", "OPTIONS")
}
