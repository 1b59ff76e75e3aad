package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrevoSenderPostsPayload(t *testing.T) {
	var got brevoPayload
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewBrevoSender("key-123", "noreply@example.com", "Quiz Platform")
	s.Endpoint = srv.URL

	err := s.Send(context.Background(), Message{To: "ada@example.com", Subject: "Quiz Result", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	assert.Equal(t, "key-123", apiKey)
	assert.Equal(t, "Quiz Result", got.Subject)
	assert.Equal(t, "ada", got.To[0]["name"])
	assert.Equal(t, "noreply@example.com", got.Sender["email"])
}

func TestBrevoSenderReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewBrevoSender("bad", "noreply@example.com", "Quiz Platform")
	s.Endpoint = srv.URL

	assert.Error(t, s.Send(context.Background(), Message{To: "ada@example.com"}))
	assert.Error(t, s.Send(context.Background(), Message{To: "not-an-email"}))
}

func TestAsyncSwallowsErrors(t *testing.T) {
	rec := &Recorder{Err: assert.AnError}
	async := NewAsync(rec)

	require.NoError(t, async.Send(context.Background(), Message{To: "ada@example.com"}))
	assert.Eventually(t, func() bool { return len(rec.Sent()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestTemplatesEscape(t *testing.T) {
	msg, err := QuizResultEmail("ada@example.com", "Ada", "<Algebra>", 5)
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "You scored 5 in the quiz &lt;Algebra&gt;.")

	msg, err = ResetPasswordEmail("ada@example.com", "https://app.example/reset?uid=MQ&token=abc")
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "uid=MQ&amp;token=abc")
}
