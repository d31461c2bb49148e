package offline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerTransitions(t *testing.T) {
	tracker := NewConnectivityTracker(true)

	var calls []bool
	unsubscribe := tracker.Subscribe(func(online bool) {
		calls = append(calls, online)
	})
	defer unsubscribe()

	tracker.SetOnline()
	assert.Empty(t, calls, "no notification without a transition")

	tracker.SetOffline()
	tracker.SetOffline()
	require.Equal(t, []bool{false}, calls, "repeated offline must notify once")

	tracker.SetOnline()
	assert.Equal(t, []bool{false, true}, calls)
	assert.True(t, tracker.IsOnline())
}

func TestTrackerLastOnlineAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("starts unset when initially offline", func(t *testing.T) {
		tracker := NewConnectivityTracker(false, WithTrackerClock(clock))
		_, ok := tracker.LastOnlineAt()
		assert.False(t, ok)
	})

	t.Run("only moves on confirmed connectivity", func(t *testing.T) {
		tracker := NewConnectivityTracker(true, WithTrackerClock(clock))
		at, ok := tracker.LastOnlineAt()
		require.True(t, ok)
		assert.Equal(t, now, at)

		now = now.Add(2 * time.Hour)
		tracker.SetOffline()
		at, _ = tracker.LastOnlineAt()
		assert.NotEqual(t, now, at, "going offline must not touch the timestamp")

		tracker.SetOnline()
		at, _ = tracker.LastOnlineAt()
		assert.Equal(t, now, at)
	})
}

func TestTrackerUnsubscribe(t *testing.T) {
	tracker := NewConnectivityTracker(true)
	calls := 0
	unsubscribe := tracker.Subscribe(func(bool) { calls++ })

	tracker.SetOffline()
	unsubscribe()
	tracker.SetOnline()

	assert.Equal(t, 1, calls)
}

func TestFormatLastOnline(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	now := base
	tracker := NewConnectivityTracker(true, WithTrackerClock(func() time.Time { return now }))

	cases := []struct {
		name    string
		elapsed time.Duration
		want    string
	}{
		{"under a minute", 30 * time.Second, "Just now"},
		{"minutes", 45 * time.Minute, "45 minutes ago"},
		{"hours", 5 * time.Hour, "5 hours ago"},
		{"yesterday", 30 * time.Hour, "Yesterday"},
		{"days", 96 * time.Hour, "4 days ago"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now = base.Add(tc.elapsed)
			assert.Equal(t, tc.want, tracker.FormatLastOnline())
		})
	}
}

func TestFormatLastOnlineNever(t *testing.T) {
	tracker := NewConnectivityTracker(false)
	assert.Equal(t, "Never", tracker.FormatLastOnline())
}

func TestBanner(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tracker := NewConnectivityTracker(true, WithTrackerClock(func() time.Time { return now }))

	assert.Equal(t, BannerHidden, tracker.Banner())

	tracker.SetOffline()
	assert.Equal(t, BannerOffline, tracker.Banner())

	now = now.Add(3 * time.Hour)
	assert.Equal(t, BannerOffline, tracker.Banner(), "offline banner is sticky")

	tracker.SetOnline()
	assert.Equal(t, BannerReconnected, tracker.Banner())

	now = now.Add(3 * time.Hour).Add(6 * time.Second)
	assert.Equal(t, BannerHidden, tracker.Banner(), "reconnected banner dismisses itself")
}
