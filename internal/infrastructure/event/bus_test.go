package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidboard/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []string
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event.EventType())
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "rfp", uuid.New())
	return &e
}

func TestInMemoryEventBus(t *testing.T) {
	t.Run("delivers to typed subscribers", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		opened := &recordingHandler{types: []string{"rfp.opened"}}
		awarded := &recordingHandler{types: []string{"rfp.awarded"}}
		bus.Subscribe(opened)
		bus.Subscribe(awarded)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("rfp.opened")))

		assert.Equal(t, []string{"rfp.opened"}, opened.received)
		assert.Empty(t, awarded.received)
	})

	t.Run("wildcard handler sees everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		all := &recordingHandler{}
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(context.Background(),
			newTestEvent("rfp.opened"), newTestEvent("bid.submitted")))

		assert.Equal(t, []string{"rfp.opened", "bid.submitted"}, all.received)
	})

	t.Run("a failing handler does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		failing := &recordingHandler{types: []string{"rfp.opened"}, err: errors.New("boom")}
		healthy := &recordingHandler{types: []string{"rfp.opened"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("rfp.opened")))
		assert.Equal(t, []string{"rfp.opened"}, healthy.received)
	})

	t.Run("a panicking handler does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		panicking := &recordingHandler{types: []string{"rfp.opened"}, panics: true}
		healthy := &recordingHandler{types: []string{"rfp.opened"}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("rfp.opened")))
		assert.Equal(t, []string{"rfp.opened"}, healthy.received)
	})

	t.Run("unsubscribe removes the handler everywhere", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		h := &recordingHandler{types: []string{"rfp.opened", "rfp.awarded"}}
		bus.Subscribe(h)
		bus.Unsubscribe(h)

		require.NoError(t, bus.Publish(context.Background(),
			newTestEvent("rfp.opened"), newTestEvent("rfp.awarded")))
		assert.Empty(t, h.received)
	})
}
