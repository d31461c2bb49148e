package offline

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BannerState tells the UI layer which connectivity banner to render
type BannerState string

const (
	BannerHidden      BannerState = "hidden"
	BannerOffline     BannerState = "offline"
	BannerReconnected BannerState = "reconnected"
)

// reconnectedBannerTTL is how long the "back online" banner stays up
const reconnectedBannerTTL = 5 * time.Second

// ConnectivityTracker holds the process's view of network connectivity.
// It never probes on its own; the dispatcher and any platform signals feed
// transitions in through SetOnline and SetOffline.
type ConnectivityTracker struct {
	mu            sync.RWMutex
	online        bool
	lastOnlineAt  time.Time
	reconnectedAt time.Time
	subscribers   map[int]func(online bool)
	nextSubID     int
	now           func() time.Time
	logger        *zap.Logger
}

// TrackerOption configures a ConnectivityTracker
type TrackerOption func(*ConnectivityTracker)

// WithTrackerLogger sets the logger
func WithTrackerLogger(logger *zap.Logger) TrackerOption {
	return func(t *ConnectivityTracker) {
		t.logger = logger
	}
}

// WithTrackerClock overrides the clock, used in tests
func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(t *ConnectivityTracker) {
		t.now = now
	}
}

// NewConnectivityTracker creates a tracker with the given initial state
func NewConnectivityTracker(initiallyOnline bool, opts ...TrackerOption) *ConnectivityTracker {
	t := &ConnectivityTracker{
		online:      initiallyOnline,
		subscribers: make(map[int]func(online bool)),
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if initiallyOnline {
		t.lastOnlineAt = t.now()
	}
	return t
}

// IsOnline returns the current connectivity state
func (t *ConnectivityTracker) IsOnline() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.online
}

// LastOnlineAt returns the last moment connectivity was confirmed.
// ok is false if the tracker has never been online.
func (t *ConnectivityTracker) LastOnlineAt() (at time.Time, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastOnlineAt, !t.lastOnlineAt.IsZero()
}

// SetOnline records a confirmed connection. Repeated calls while already
// online refresh the last-online timestamp but notify nobody.
func (t *ConnectivityTracker) SetOnline() {
	t.mu.Lock()
	now := t.now()
	t.lastOnlineAt = now
	transitioned := !t.online
	if transitioned {
		t.online = true
		t.reconnectedAt = now
	}
	subs := t.snapshotSubscribersLocked()
	t.mu.Unlock()

	if transitioned {
		t.logger.Info("connectivity restored")
		for _, fn := range subs {
			fn(true)
		}
	}
}

// SetOffline records a lost connection. Repeated calls while already
// offline notify nobody.
func (t *ConnectivityTracker) SetOffline() {
	t.mu.Lock()
	transitioned := t.online
	t.online = false
	subs := t.snapshotSubscribersLocked()
	t.mu.Unlock()

	if transitioned {
		t.logger.Warn("connectivity lost")
		for _, fn := range subs {
			fn(false)
		}
	}
}

// Subscribe registers a callback for connectivity transitions and returns
// an unsubscribe function. Callbacks run synchronously on the goroutine
// that flipped the state.
func (t *ConnectivityTracker) Subscribe(fn func(online bool)) func() {
	t.mu.Lock()
	id := t.nextSubID
	t.nextSubID++
	t.subscribers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subscribers, id)
		t.mu.Unlock()
	}
}

// Banner returns the banner the UI should show right now. The offline
// banner is sticky for the whole offline period; the reconnected banner
// dismisses itself after a few seconds.
func (t *ConnectivityTracker) Banner() BannerState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.online {
		return BannerOffline
	}
	if !t.reconnectedAt.IsZero() && t.now().Sub(t.reconnectedAt) < reconnectedBannerTTL {
		return BannerReconnected
	}
	return BannerHidden
}

// FormatLastOnline renders the last-online timestamp as a relative phrase
// for the offline banner
func (t *ConnectivityTracker) FormatLastOnline() string {
	t.mu.RLock()
	last := t.lastOnlineAt
	now := t.now()
	t.mu.RUnlock()

	if last.IsZero() {
		return "Never"
	}
	elapsed := now.Sub(last)
	switch {
	case elapsed < time.Minute:
		return "Just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(elapsed.Hours()))
	case elapsed < 48*time.Hour:
		return "Yesterday"
	default:
		return fmt.Sprintf("%d days ago", int(elapsed.Hours()/24))
	}
}

func (t *ConnectivityTracker) snapshotSubscribersLocked() []func(online bool) {
	subs := make([]func(online bool), 0, len(t.subscribers))
	for _, fn := range t.subscribers {
		subs = append(subs, fn)
	}
	return subs
}
