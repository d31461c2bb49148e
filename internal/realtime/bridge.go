package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bidboard/backend/internal/offline"
)

// BridgeState is the connection state of the notification bridge
type BridgeState string

const (
	BridgeDisconnected BridgeState = "disconnected"
	BridgeConnecting   BridgeState = "connecting"
	BridgeConnected    BridgeState = "connected"
	BridgePolling      BridgeState = "polling"
)

// staticHostSuffixes are hosting platforms that serve static files only.
// A deployment there has no websocket endpoint, so the bridge polls instead.
var staticHostSuffixes = []string{
	".pages.dev",
	".netlify.app",
	".github.io",
	".surge.sh",
}

const defaultPollInterval = 60 * time.Second

// pollPath returns the resources changed since the last poll
const pollPath = "/api/realtime/changes"

// Bridge keeps the query cache fresh from server-side change notices.
// Over websocket it receives notification frames; on static hosting it
// polls through the dispatcher instead. Frames never mutate cached data
// directly, they only invalidate so the next read refetches.
//
// The bridge never reconnects on its own. When the socket drops the state
// goes to disconnected and stays there until the owner calls Connect again,
// typically on the next connectivity-restored signal.
type Bridge struct {
	cache        *offline.QueryCache
	dispatcher   *offline.Dispatcher
	dialer       *websocket.Dialer
	pollInterval time.Duration
	logger       *zap.Logger

	mu     sync.Mutex
	state  BridgeState
	conn   *websocket.Conn
	cancel context.CancelFunc

	// OnNotification, when set, receives the payload of each notification
	// frame after the cache invalidation ran
	OnNotification func(frame Frame)
}

// BridgeOption configures a Bridge
type BridgeOption func(*Bridge)

// WithPollInterval overrides the polling fallback interval
func WithPollInterval(interval time.Duration) BridgeOption {
	return func(b *Bridge) {
		b.pollInterval = interval
	}
}

// WithBridgeDialer sets the websocket dialer
func WithBridgeDialer(dialer *websocket.Dialer) BridgeOption {
	return func(b *Bridge) {
		b.dialer = dialer
	}
}

// WithBridgeLogger sets the logger
func WithBridgeLogger(logger *zap.Logger) BridgeOption {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// NewBridge creates a disconnected bridge
func NewBridge(cache *offline.QueryCache, dispatcher *offline.Dispatcher, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		cache:        cache,
		dispatcher:   dispatcher,
		dialer:       websocket.DefaultDialer,
		pollInterval: defaultPollInterval,
		logger:       zap.NewNop(),
		state:        BridgeDisconnected,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current bridge state
func (b *Bridge) State() BridgeState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// IsStaticHost reports whether the host is a static-only platform
func IsStaticHost(host string) bool {
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	for _, suffix := range staticHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// Connect establishes the realtime channel against endpoint, a ws:// or
// wss:// URL. Static hosts get the polling fallback instead of a socket.
// Calling Connect while already connected is an error; Close first.
func (b *Bridge) Connect(ctx context.Context, endpoint, token string) error {
	b.mu.Lock()
	if b.state != BridgeDisconnected {
		b.mu.Unlock()
		return fmt.Errorf("bridge already %s", b.state)
	}
	b.state = BridgeConnecting
	b.mu.Unlock()

	parsed, err := url.Parse(endpoint)
	if err != nil {
		b.setState(BridgeDisconnected)
		return fmt.Errorf("parse endpoint: %w", err)
	}

	if IsStaticHost(parsed.Host) {
		pollCtx, cancel := context.WithCancel(context.Background())
		b.mu.Lock()
		b.cancel = cancel
		b.state = BridgePolling
		b.mu.Unlock()
		b.logger.Info("static host detected, falling back to polling", zap.String("host", parsed.Host))
		go b.pollLoop(pollCtx)
		return nil
	}

	conn, resp, err := b.dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		b.setState(BridgeDisconnected)
		return fmt.Errorf("dial: %w", err)
	}

	if err := b.handshake(conn, token); err != nil {
		conn.Close()
		b.setState(BridgeDisconnected)
		return err
	}

	b.mu.Lock()
	b.conn = conn
	b.state = BridgeConnected
	b.mu.Unlock()
	b.logger.Info("realtime bridge connected")

	go b.readLoop(conn)
	return nil
}

func (b *Bridge) handshake(conn *websocket.Conn, token string) error {
	auth, err := json.Marshal(Frame{Type: FrameAuth, Token: token})
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteMessage(websocket.TextMessage, auth); err != nil {
		return fmt.Errorf("send auth: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(authDeadline))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("await auth reply: %w", err)
	}
	reply, err := ParseFrame(data)
	if err != nil {
		return err
	}
	if reply.Type != FrameAuthSuccess {
		return fmt.Errorf("authentication rejected: %s", reply.Error)
	}
	conn.SetReadDeadline(time.Time{})
	return nil
}

// Close tears the channel down and returns the bridge to disconnected
func (b *Bridge) Close() {
	b.mu.Lock()
	conn := b.conn
	cancel := b.cancel
	b.conn = nil
	b.cancel = nil
	b.state = BridgeDisconnected
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
}

func (b *Bridge) setState(state BridgeState) {
	b.mu.Lock()
	b.state = state
	b.mu.Unlock()
}

func (b *Bridge) readLoop(conn *websocket.Conn) {
	defer func() {
		b.mu.Lock()
		if b.conn == conn {
			b.conn = nil
			b.state = BridgeDisconnected
		}
		b.mu.Unlock()
		conn.Close()
		b.logger.Info("realtime bridge disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := ParseFrame(data)
		if err != nil {
			b.logger.Warn("dropping malformed frame", zap.Error(err))
			continue
		}
		if frame.Type != FrameNotification {
			continue
		}
		b.applyNotification(frame)
	}
}

// applyNotification invalidates the cached reads for the changed resource
func (b *Bridge) applyNotification(frame Frame) {
	if frame.Resource != "" {
		removed := b.cache.InvalidatePrefix(offline.CacheKey(http.MethodGet, frame.Resource))
		b.logger.Debug("invalidated cached reads",
			zap.String("resource", frame.Resource),
			zap.Int("entries", removed))
	}
	if b.OnNotification != nil {
		b.OnNotification(frame)
	}
}

// pollLoop is the static-host fallback: ask the server which resources
// changed and invalidate them
func (b *Bridge) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()
	for {
		b.pollOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (b *Bridge) pollOnce(ctx context.Context) {
	body, err := b.dispatcher.Get(ctx, pollPath)
	if err != nil {
		b.logger.Debug("poll failed", zap.Error(err))
		return
	}
	var payload struct {
		Changed []string `json:"changed"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		b.logger.Warn("malformed poll response", zap.Error(err))
		return
	}
	for _, resource := range payload.Changed {
		b.applyNotification(Frame{Type: FrameNotification, Resource: resource})
	}
}
