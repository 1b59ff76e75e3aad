// backend/internal/mailer/mailer.go
package mailer

import (
	"context"
	"log"
	"time"
)

type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender only logs messages. Used when no provider is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("Email to %s not sent (no provider configured): %s", msg.To, msg.Subject)
	return nil
}

// Async dispatches every message on its own goroutine and never reports an
// error to the caller. Failures are logged.
type Async struct {
	next    Sender
	timeout time.Duration
}

func NewAsync(next Sender) *Async {
	return &Async{next: next, timeout: 30 * time.Second}
}

func (a *Async) Send(_ context.Context, msg Message) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.next.Send(ctx, msg); err != nil {
			log.Printf("Failed to send email to %s: %v", msg.To, err)
			return
		}
		log.Printf("Email sent successfully to %s", msg.To)
	}()
	return nil
}
