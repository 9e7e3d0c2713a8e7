package hudfeed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubBroadcasts(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(TypeEvent, map[string]any{"kind": "wave_started", "wave": 1})
	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		assert.Equal(t, TypeEvent, msg["type"])
		data := msg["data"].(map[string]any)
		assert.Equal(t, "wave_started", data["kind"])
		assert.EqualValues(t, 1, data["wave"])
	}
}

func TestHubReplaysLatestState(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	hub.Publish(TypeState, map[string]int{"score": 10})
	hub.Publish(TypeEvent, map[string]string{"kind": "upgrade"})
	hub.Publish(TypeState, map[string]int{"score": 25})

	conn := dial(t, srv)
	msg := readMessage(t, conn)
	assert.Equal(t, TypeState, msg["type"])
	assert.EqualValues(t, 25, msg["data"].(map[string]any)["score"])
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()
	hub.Publish(TypeState, 1)
	var nilHub *Hub
	nilHub.Publish(TypeState, 1)
	assert.Equal(t, 0, nilHub.Clients())
}
