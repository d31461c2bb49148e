package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	authDeadline  = 10 * time.Second
	writeDeadline = 10 * time.Second
	pongWait      = 60 * time.Second
	pingInterval  = 30 * time.Second
)

// TokenVerifier resolves a credential from an auth frame to a user
type TokenVerifier interface {
	VerifyToken(token string) (uuid.UUID, error)
}

// Hub owns the notification websocket endpoint. Connections authenticate
// with their first frame; until auth succeeds nothing is delivered and
// after the deadline the socket is dropped.
type Hub struct {
	verifier TokenVerifier
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]map[*hubClient]struct{}
}

type hubClient struct {
	conn   *websocket.Conn
	userID uuid.UUID
	send   chan Frame
}

// NewHub creates a notification hub
func NewHub(verifier TokenVerifier, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[uuid.UUID]map[*hubClient]struct{}),
	}
}

var _ http.Handler = (*Hub)(nil)

// ServeHTTP upgrades the connection and runs the auth handshake
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	userID, err := h.authenticate(conn)
	if err != nil {
		h.logger.Debug("websocket auth failed", zap.Error(err))
		writeFrame(conn, Frame{Type: FrameAuthError, Error: "authentication failed"})
		conn.Close()
		return
	}
	writeFrame(conn, Frame{Type: FrameAuthSuccess})

	client := &hubClient{conn: conn, userID: userID, send: make(chan Frame, 16)}
	h.register(client)
	h.logger.Info("websocket client connected", zap.String("user_id", userID.String()))

	go h.writePump(client)
	h.readPump(client)
}

// authenticate reads the first frame, which must be an auth frame with a
// valid token
func (h *Hub) authenticate(conn *websocket.Conn) (uuid.UUID, error) {
	conn.SetReadDeadline(time.Now().Add(authDeadline))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return uuid.Nil, err
	}
	frame, err := ParseFrame(data)
	if err != nil {
		return uuid.Nil, err
	}
	if frame.Type != FrameAuth {
		return uuid.Nil, &websocket.CloseError{Code: websocket.ClosePolicyViolation, Text: "first frame must be auth"}
	}
	return h.verifier.VerifyToken(frame.Token)
}

// Publish delivers a frame to every open connection of a user. Users
// without a connection are skipped silently; missed invalidations are
// covered by the network-first fetch on next load.
func (h *Hub) Publish(userID uuid.UUID, frame Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- frame:
		default:
			// slow consumer, drop rather than block the publisher
		}
	}
}

// ConnectedUsers returns the number of users with at least one connection
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*hubClient]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.userID]; ok {
		if _, ok := conns[c]; ok {
			delete(conns, c)
			close(c.send)
			if len(conns) == 0 {
				delete(h.clients, c.userID)
			}
		}
	}
}

// readPump drains inbound frames so pongs are processed and closes are seen
func (h *Hub) readPump(c *hubClient) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *hubClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := writeFrame(c.conn, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, frame Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteMessage(websocket.TextMessage, data)
}
