// backend/internal/auth/tokens.go
package auth

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"quiz-platform/internal/apperr"
	"quiz-platform/internal/models"
)

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// TokenIssuer signs and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (t *TokenIssuer) IssuePair(user *models.User) (TokenPair, error) {
	refresh, err := t.sign(user.ID, refreshTokenType, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := t.sign(user.ID, accessTokenType, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Refresh: refresh, Access: access}, nil
}

// IssueAccess mints a new access token from a valid refresh token.
func (t *TokenIssuer) IssueAccess(refresh string) (string, error) {
	userID, err := t.Verify(refresh, refreshTokenType)
	if err != nil {
		return "", err
	}
	return t.sign(userID, accessTokenType, t.accessTTL)
}

func (t *TokenIssuer) sign(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID,
		"token_type": tokenType,
		"jti":        uuid.NewString(),
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	})
	return token.SignedString(t.secret)
}

// Verify checks signature, expiry and type and returns the user id.
func (t *TokenIssuer) Verify(tokenString, tokenType string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindUnauthorized, "Token is invalid or expired", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, apperr.Unauthorized("Invalid token claims")
	}
	if typ, _ := claims["token_type"].(string); typ != tokenType {
		return 0, apperr.Unauthorized("Token has wrong type")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, apperr.Unauthorized("Invalid user ID in token")
	}
	return uint(userID), nil
}
