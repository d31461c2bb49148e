package shared

import "context"

// EventPublisher is the side of the bus handed to application services.
// Services publish the events their aggregates recorded; they never
// subscribe.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler consumes domain events. EventTypes names the types the
// handler wants delivered; an empty slice subscribes it to every event.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventBus is the full bus: publishing, subscription management and
// lifecycle. Subscribe with no explicit types falls back to the handler's
// own EventTypes.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
