package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := mux.NewRouter()
	router.HandleFunc("/ws/quizzes/{quizID}", hub.HandleWebSocket)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesOnlyItsRoom(t *testing.T) {
	hub, base := startHub(t)
	algebra := dial(t, base+"/ws/quizzes/1")
	history := dial(t, base+"/ws/quizzes/2")

	require.Eventually(t, func() bool {
		return hub.ClientCount(Room(1)) == 1 && hub.ClientCount(Room(2)) == 1
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastMessage(Room(1), "attempt_completed", map[string]int{"score": 5})

	var msg Message
	require.NoError(t, algebra.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, algebra.ReadJSON(&msg))
	assert.Equal(t, "attempt_completed", msg.Type)
	assert.Equal(t, map[string]interface{}{"score": float64(5)}, msg.Data)

	require.NoError(t, history.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := history.ReadMessage()
	assert.Error(t, err, "room 2 must not receive room 1 events")
}

func TestClientLeavesRoomOnClose(t *testing.T) {
	hub, base := startHub(t)
	conn := dial(t, base+"/ws/quizzes/7")
	require.Eventually(t, func() bool { return hub.ClientCount(Room(7)) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount(Room(7)) == 0 }, time.Second, 10*time.Millisecond)
}

func TestRejectsBadQuizID(t *testing.T) {
	_, base := startHub(t)

	_, resp, err := websocket.DefaultDialer.Dial(base+"/ws/quizzes/abc", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}
