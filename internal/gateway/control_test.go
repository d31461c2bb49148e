package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseControlMessage(t *testing.T) {
	t.Run("accepts known types", func(t *testing.T) {
		msg, err := ParseControlMessage([]byte(`{"type":"skip_waiting"}`))
		require.NoError(t, err)
		assert.Equal(t, MessageSkipWaiting, msg.Type)

		msg, err = ParseControlMessage([]byte(`{"type":"activated","version":"v4"}`))
		require.NoError(t, err)
		assert.Equal(t, "v4", msg.Version)
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		_, err := ParseControlMessage([]byte(`{"type":"self_destruct"}`))
		assert.Error(t, err)
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		_, err := ParseControlMessage([]byte(`not json`))
		assert.Error(t, err)
	})
}

func newTestController(t *testing.T) (*Controller, *MemoryStore, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstreamURL, err := url.Parse(server.URL)
	require.NoError(t, err)
	store := NewMemoryStore()
	manager := NewLifecycleManager(store, upstreamURL, "v4", nil)
	return NewController(manager, NewMemoryCooldownLock(), nil), store, server.Close
}

func TestSkipWaitingActivatesAndBroadcasts(t *testing.T) {
	controller, store, closeUpstream := newTestController(t)
	defer closeUpstream()

	ctx := context.Background()
	require.NoError(t, store.Open("static-v3").Put(ctx, "/x", &Entry{Status: 200}))
	require.NoError(t, store.Open("static-v4").Put(ctx, "/x", &Entry{Status: 200}))

	ch, unsubscribe := controller.Subscribe()
	defer unsubscribe()

	require.NoError(t, controller.Handle(ctx, ControlMessage{Type: MessageSkipWaiting}))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"static-v4"}, names)

	select {
	case msg := <-ch:
		assert.Equal(t, MessageActivated, msg.Type)
		assert.Equal(t, "v4", msg.Version)
	default:
		t.Fatal("expected an activated broadcast")
	}
}

func TestReloadCooldown(t *testing.T) {
	controller, _, closeUpstream := newTestController(t)
	defer closeUpstream()

	ch, unsubscribe := controller.Subscribe()
	defer unsubscribe()

	ctx := context.Background()
	require.NoError(t, controller.RequestReload(ctx))
	require.NoError(t, controller.RequestReload(ctx))
	require.NoError(t, controller.RequestReload(ctx))

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 1, received, "cooldown must collapse repeated reloads into one broadcast")
}

func TestControllerRejectsOutboundInbound(t *testing.T) {
	controller, _, closeUpstream := newTestController(t)
	defer closeUpstream()

	err := controller.Handle(context.Background(), ControlMessage{Type: MessageActivated})
	assert.Error(t, err)
}
