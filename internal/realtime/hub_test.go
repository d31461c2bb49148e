package realtime

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	users map[string]uuid.UUID
}

func (v *stubVerifier) VerifyToken(token string) (uuid.UUID, error) {
	if id, ok := v.users[token]; ok {
		return id, nil
	}
	return uuid.Nil, errors.New("invalid token")
}

func newTestHub(t *testing.T) (*Hub, string, uuid.UUID, func()) {
	t.Helper()
	userID := uuid.New()
	hub := NewHub(&stubVerifier{users: map[string]uuid.UUID{"good-token": userID}}, nil)
	server := httptest.NewServer(hub)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	return hub, wsURL, userID, server.Close
}

func dialAndAuth(t *testing.T, wsURL, token string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	auth, _ := json.Marshal(Frame{Type: FrameAuth, Token: token})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, auth))
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	frame, err := ParseFrame(data)
	require.NoError(t, err)
	return frame
}

func TestHubAuthHandshake(t *testing.T) {
	_, wsURL, _, closeServer := newTestHub(t)
	defer closeServer()

	conn := dialAndAuth(t, wsURL, "good-token")
	defer conn.Close()

	reply := readFrame(t, conn)
	assert.Equal(t, FrameAuthSuccess, reply.Type)
}

func TestHubRejectsBadToken(t *testing.T) {
	_, wsURL, _, closeServer := newTestHub(t)
	defer closeServer()

	conn := dialAndAuth(t, wsURL, "bad-token")
	defer conn.Close()

	reply := readFrame(t, conn)
	assert.Equal(t, FrameAuthError, reply.Type)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection must be closed after a rejected auth")
}

func TestHubRejectsNonAuthFirstFrame(t *testing.T) {
	_, wsURL, _, closeServer := newTestHub(t)
	defer closeServer()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	ping, _ := json.Marshal(Frame{Type: FramePing})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, ping))

	reply := readFrame(t, conn)
	assert.Equal(t, FrameAuthError, reply.Type)
}

func TestHubPublish(t *testing.T) {
	hub, wsURL, userID, closeServer := newTestHub(t)
	defer closeServer()

	conn := dialAndAuth(t, wsURL, "good-token")
	defer conn.Close()
	require.Equal(t, FrameAuthSuccess, readFrame(t, conn).Type)

	// wait for registration to land
	require.Eventually(t, func() bool {
		return hub.ConnectedUsers() == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Publish(userID, Frame{Type: FrameNotification, Resource: "/api/notifications"})

	frame := readFrame(t, conn)
	assert.Equal(t, FrameNotification, frame.Type)
	assert.Equal(t, "/api/notifications", frame.Resource)

	// frames for other users never arrive here
	hub.Publish(uuid.New(), Frame{Type: FrameNotification, Resource: "/api/rfps"})
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestParseFrame(t *testing.T) {
	t.Run("accepts known types", func(t *testing.T) {
		frame, err := ParseFrame([]byte(`{"type":"notification","resource":"/api/rfps"}`))
		require.NoError(t, err)
		assert.Equal(t, "/api/rfps", frame.Resource)
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		_, err := ParseFrame([]byte(`{"type":"shutdown"}`))
		assert.Error(t, err)
	})
}
