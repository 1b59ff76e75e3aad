// backend/internal/mailer/brevo.go
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const brevoURL = "https://api.brevo.com/v3/smtp/email"

// BrevoSender delivers mail through the Brevo transactional e-mail API.
type BrevoSender struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	Endpoint    string
	Client      *http.Client
}

func NewBrevoSender(apiKey, senderEmail, senderName string) *BrevoSender {
	return &BrevoSender{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		Endpoint:    brevoURL,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func (s *BrevoSender) Send(ctx context.Context, msg Message) error {
	at := strings.Index(msg.To, "@")
	if at <= 0 {
		return fmt.Errorf("invalid recipient email: %s", msg.To)
	}
	name := msg.ToName
	if name == "" {
		name = msg.To[:at]
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": msg.To, "name": name}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("brevo: status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
