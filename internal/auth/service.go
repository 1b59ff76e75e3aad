// backend/internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"golang.org/x/crypto/bcrypt"

	"quiz-platform/internal/apperr"
	"quiz-platform/internal/mailer"
	"quiz-platform/internal/models"
)

type userStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, hash string) error
}

type Service struct {
	repo         userStore
	tokens       *TokenIssuer
	reset        *ResetTokens
	mail         mailer.Sender
	resetURLBase string
}

func NewService(repo userStore, tokens *TokenIssuer, reset *ResetTokens, mail mailer.Sender, resetURLBase string) *Service {
	return &Service{
		repo:         repo,
		tokens:       tokens,
		reset:        reset,
		mail:         mail,
		resetURLBase: resetURLBase,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, TokenPair, error) {
	if err := req.Validate(); err != nil {
		return nil, TokenPair{}, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, TokenPair{}, apperr.Validation("user with this email already exists")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, TokenPair{}, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	user := &models.User{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		ProfileImg: req.ProfileImg,
		Password:   hash,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	log.Printf("Registered user %d", user.ID)
	return user, pair, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (TokenPair, error) {
	if err := req.Validate(); err != nil {
		return TokenPair{}, err
	}

	invalid := apperr.Validation("Email or Password not valid")
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return TokenPair{}, invalid
		}
		return TokenPair{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return TokenPair{}, invalid
	}
	return s.tokens.IssuePair(user)
}

func (s *Service) Refresh(req RefreshRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	return s.tokens.IssueAccess(req.Refresh)
}

func (s *Service) ChangePassword(ctx context.Context, user *models.User, req PasswordPair) error {
	if err := Authorize(user, ActionChangePassword); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, user.ID, hash)
}

// RequestPasswordReset e-mails a reset link to the owner of req.Email. An
// unknown address is reported as NotFound.
func (s *Service) RequestPasswordReset(ctx context.Context, req ResetRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	link := s.ResetLink(user)
	msg, err := mailer.ResetPasswordEmail(user.Email, link)
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		log.Printf("Reset email for user %d not delivered: %v", user.ID, err)
	}
	return nil
}

// ResetLink builds the front-end link carrying uid and token for user.
func (s *Service) ResetLink(user *models.User) string {
	q := url.Values{}
	q.Set("uid", EncodeUID(user.ID))
	q.Set("token", s.reset.MakeToken(user))
	return s.resetURLBase + "?" + q.Encode()
}

// ConfirmPasswordReset sets a new password when uid and token are valid for
// the user's current state.
func (s *Service) ConfirmPasswordReset(ctx context.Context, uid, token string, req PasswordPair) error {
	if err := req.Validate(); err != nil {
		return err
	}

	invalid := "Token is not Valid or Expired"
	userID, err := DecodeUID(uid)
	if err != nil {
		return apperr.Wrap(apperr.KindTokenInvalid, invalid, err)
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.TokenInvalid(invalid)
		}
		return err
	}
	if !s.reset.CheckToken(user, token) {
		return apperr.TokenInvalid(invalid)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	log.Printf("Password reset for user %d", user.ID)
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Wrap(apperr.KindValidation, "password: must be at most 72 bytes", err)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
