// Package contact stores messages sent through the public contact form.
package contact

import (
	"context"
	"log"
	"strings"

	"quiz-platform/internal/httpx"
	"quiz-platform/internal/models"
)

type Request struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Message string `json:"message" validate:"required"`
}

func (r Request) Validate() error {
	return httpx.ValidateStruct(r)
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Submit(ctx context.Context, req Request) (*models.ContactMessage, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{Name: req.Name, Email: req.Email, Message: req.Message}
	if err := s.repo.Create(ctx, msg); err != nil {
		log.Printf("Error saving contact message: %v", err)
		return nil, err
	}
	log.Printf("Contact message %d received from %s", msg.ID, msg.Email)
	return msg, nil
}
