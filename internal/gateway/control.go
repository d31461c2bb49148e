package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Control message types exchanged between gateway and clients. The union is
// closed: anything else is rejected at the parse boundary.
const (
	MessageSkipWaiting = "skip_waiting"
	MessageReload      = "reload"
	MessageActivated   = "activated"
)

// ControlMessage is one message on the gateway control channel
type ControlMessage struct {
	Type    string `json:"type"`
	Version string `json:"version,omitempty"`
}

// ParseControlMessage decodes and validates a control message
func ParseControlMessage(data []byte) (ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ControlMessage{}, fmt.Errorf("decode control message: %w", err)
	}
	switch msg.Type {
	case MessageSkipWaiting, MessageReload, MessageActivated:
		return msg, nil
	default:
		return ControlMessage{}, fmt.Errorf("unknown control message type %q", msg.Type)
	}
}

// CooldownLock rate-limits an action across gateway instances
type CooldownLock interface {
	// Acquire returns true if the caller won the lock; a second caller
	// inside the ttl window gets false.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MemoryCooldownLock is a single-process cooldown lock
type MemoryCooldownLock struct {
	mu       sync.Mutex
	acquired map[string]time.Time
	now      func() time.Time
}

var _ CooldownLock = (*MemoryCooldownLock)(nil)

// NewMemoryCooldownLock creates an in-memory cooldown lock
func NewMemoryCooldownLock() *MemoryCooldownLock {
	return &MemoryCooldownLock{acquired: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryCooldownLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if at, ok := l.acquired[key]; ok && l.now().Sub(at) < ttl {
		return false, nil
	}
	l.acquired[key] = l.now()
	return true, nil
}

// RedisCooldownLock shares the cooldown between gateway instances
type RedisCooldownLock struct {
	client *redis.Client
}

var _ CooldownLock = (*RedisCooldownLock)(nil)

// NewRedisCooldownLock creates a Redis-backed cooldown lock
func NewRedisCooldownLock(client *redis.Client) *RedisCooldownLock {
	return &RedisCooldownLock{client: client}
}

func (l *RedisCooldownLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire cooldown lock: %w", err)
	}
	return ok, nil
}

const (
	reloadCooldownKey = "gateway:reload:cooldown"
	reloadCooldown    = 60 * time.Second
)

// Controller runs the control channel: it applies skip-waiting requests and
// broadcasts reload and activation notices to connected clients. The reload
// broadcast sits behind a cooldown so a flapping deploy cannot put clients
// into a reload loop.
type Controller struct {
	manager *LifecycleManager
	lock    CooldownLock
	logger  *zap.Logger

	mu          sync.Mutex
	subscribers map[int]chan ControlMessage
	nextSubID   int
}

// NewController creates a control channel for the gateway
func NewController(manager *LifecycleManager, lock CooldownLock, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		manager:     manager,
		lock:        lock,
		logger:      logger,
		subscribers: make(map[int]chan ControlMessage),
	}
}

// Subscribe registers a client for control broadcasts and returns the
// channel plus an unsubscribe function. Slow clients drop messages rather
// than block the broadcaster.
func (c *Controller) Subscribe() (<-chan ControlMessage, func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	ch := make(chan ControlMessage, 8)
	c.subscribers[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
		c.mu.Unlock()
	}
}

// Handle applies one inbound control message
func (c *Controller) Handle(ctx context.Context, msg ControlMessage) error {
	switch msg.Type {
	case MessageSkipWaiting:
		if err := c.manager.Activate(ctx); err != nil {
			return err
		}
		c.broadcast(ControlMessage{Type: MessageActivated, Version: c.manager.Version()})
		return nil
	case MessageReload:
		return c.RequestReload(ctx)
	default:
		// activated is outbound only
		return fmt.Errorf("unexpected inbound control message %q", msg.Type)
	}
}

// RequestReload broadcasts a reload to all clients unless one went out
// inside the cooldown window
func (c *Controller) RequestReload(ctx context.Context) error {
	won, err := c.lock.Acquire(ctx, reloadCooldownKey, reloadCooldown)
	if err != nil {
		return err
	}
	if !won {
		c.logger.Debug("reload suppressed by cooldown")
		return nil
	}
	c.broadcast(ControlMessage{Type: MessageReload})
	return nil
}

func (c *Controller) broadcast(msg ControlMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}
