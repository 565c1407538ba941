package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.mahjong/internal/game"
	"sudooom.mahjong/internal/game/mahjong/table"
)

func newTestServer(t *testing.T, hub *Hub, visibility chan bool) string {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, r.URL.Query().Get("session"), func(visible bool) {
			visibility <- visible
		})
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubPushesUpdates(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub, make(chan bool, 1))

	a := dial(t, url+"?session=1")
	other := dial(t, url+"?session=2")
	require.Eventually(t, func() bool { return hub.Count("1") == 1 && hub.Count("2") == 1 },
		time.Second, 10*time.Millisecond)

	hub.OnUpdate(context.Background(), game.Update{
		SessionID: "1",
		Events:    []table.Event{{Type: table.EventDiscarded, Seat: 2, Version: 9}},
	})

	_ = a.SetReadDeadline(time.Now().Add(time.Second))
	var msg ServerMessage
	require.NoError(t, a.ReadJSON(&msg))
	assert.Equal(t, "update", msg.Type)
	require.NotNil(t, msg.Update)
	assert.Equal(t, "1", msg.Update.SessionID)
	assert.Equal(t, int64(9), msg.Update.Events[0].Version)

	// 其他牌局收不到
	_ = other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := other.ReadMessage()
	require.Error(t, err)
}

func TestHubClientMessages(t *testing.T) {
	hub := NewHub()
	visibility := make(chan bool, 1)
	url := newTestServer(t, hub, visibility)
	c := dial(t, url+"?session=7")

	require.NoError(t, c.WriteJSON(map[string]any{"type": "visibility", "visible": false}))
	select {
	case v := <-visibility:
		assert.False(t, v)
	case <-time.After(time.Second):
		t.Fatal("visibility callback not called")
	}

	_ = c.SetReadDeadline(time.Now().Add(time.Second))
	var msg ServerMessage

	require.NoError(t, c.WriteJSON(map[string]any{"type": "ping"}))
	require.NoError(t, c.ReadJSON(&msg))
	assert.Equal(t, "pong", msg.Type)

	require.NoError(t, c.WriteJSON(map[string]any{"type": "shout"}))
	require.NoError(t, c.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "shout")
}

func TestHubRemovesClosedConnections(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub, make(chan bool, 1))

	c := dial(t, url+"?session=3")
	require.Eventually(t, func() bool { return hub.Count("3") == 1 }, time.Second, 10*time.Millisecond)

	_ = c.Close()
	require.Eventually(t, func() bool { return hub.Count("3") == 0 }, time.Second, 10*time.Millisecond)

	c = dial(t, url+"?session=3")
	require.Eventually(t, func() bool { return hub.Count("3") == 1 }, time.Second, 10*time.Millisecond)
	hub.CloseSession("3")
	require.Eventually(t, func() bool { return hub.Count("3") == 0 }, time.Second, 10*time.Millisecond)

	_ = c.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := c.ReadMessage()
	require.Error(t, err)
}
