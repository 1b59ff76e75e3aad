// backend/internal/auth/handler.go
package auth

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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	_, pair, err := h.service.Register(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"token": pair,
		"msg":   "Successfully Registered",
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	pair, err := h.service.Login(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": pair,
		"msg":   "Successfully Login",
	})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	access, err := h.service.Refresh(req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":          user.ID,
		"email":       user.Email,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"profile_img": user.ProfileImg,
		"is_admin":    user.IsAdmin,
	})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordPair
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), CurrentUser(r.Context()), req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.Message(w, http.StatusOK, "Password changed Successfully")
}

func (h *Handler) SendResetEmail(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.Message(w, http.StatusOK, "Password reset link sent successfully, Please check your email")
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req PasswordPair
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	if err := h.service.ConfirmPasswordReset(r.Context(), vars["uid"], vars["token"], req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.Message(w, http.StatusOK, "Password reset successfully")
}

// Routes mounts the account endpoints on api.
func (h *Handler) Routes(api *mux.Router) {
	api.HandleFunc("/auth/register", h.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", h.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/token/refresh", h.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/send-reset-password-email", h.SendResetEmail).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/reset-password/{uid}/{token}", h.ResetPassword).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/profile", Require(h.Profile)).Methods("GET")
	api.HandleFunc("/auth/change-password", Require(h.ChangePassword)).Methods("POST", "OPTIONS")
}
