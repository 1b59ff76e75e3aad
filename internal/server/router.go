// Package server assembles the HTTP surface of the quiz platform.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"quiz-platform/internal/auth"
	"quiz-platform/internal/contact"
	"quiz-platform/internal/httpx"
	"quiz-platform/internal/models"
	"quiz-platform/internal/quiz"
	"quiz-platform/pkg/websocket"
)

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type Deps struct {
	Auth    *auth.Handler
	Quiz    *quiz.Handler
	Contact *contact.Handler
	Hub     *websocket.Hub
	Tokens  *auth.TokenIssuer
	Users   UserLookup

	CORSOrigins []string
	Checks      map[string]HealthCheck
}

// NewRouter returns the root handler: CORS, request logging, then routing.
func NewRouter(d Deps) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", health(d.Checks)).Methods("GET")
	router.HandleFunc("/ws/quizzes/{quizID}", d.Hub.HandleWebSocket)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware(d.Tokens, d.Users))
	d.Auth.Routes(api)
	d.Quiz.Routes(api)
	d.Contact.Routes(api)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return corsMiddleware.Handler(httpx.RequestLogger(router))
}

func health(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Printf("Health check %s failed: %v", name, err)
				report[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "up"
		}

		body := map[string]interface{}{"status": "ok", "checks": report}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		httpx.WriteJSON(w, status, body)
	}
}
