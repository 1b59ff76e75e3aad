// backend/internal/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"quiz-platform/internal/apperr"
	"quiz-platform/internal/httpx"
	"quiz-platform/internal/models"
)

type ctxKey int

const userKey ctxKey = iota

type userLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// WithUser stores user in ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// JWTMiddleware resolves a Bearer access token to the current user. Requests
// without an Authorization header pass through anonymously; a present but
// invalid credential is rejected.
func JWTMiddleware(tokens *TokenIssuer, users userLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			bearerToken := strings.Split(authHeader, " ")
			if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
				httpx.Error(w, r, apperr.Unauthorized("Invalid token format"))
				return
			}

			userID, err := tokens.Verify(bearerToken[1], accessTokenType)
			if err != nil {
				httpx.Error(w, r, err)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					err = apperr.Unauthorized("User not found")
				}
				httpx.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// Require rejects anonymous requests.
func Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			httpx.Error(w, r, apperr.Unauthorized("Authentication credentials were not provided."))
			return
		}
		next(w, r)
	}
}
