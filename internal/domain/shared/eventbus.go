package shared

import "context"

// EventHandler reacts to domain events, like sending the supplier SMS when
// a payment completes.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes names the event types this handler wants. Empty means
	// every event.
	EventTypes() []string
}

// EventPublisher publishes domain events to registered handlers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler registration
type EventSubscriber interface {
	// Subscribe registers a handler, optionally narrowed to the given
	// event types
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is the in-process publish side plus handler registration and a
// start/stop lifecycle for its dispatch workers
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// TransactionManager runs a function within a single database transaction.
// Repositories called with the context passed to fn participate in that
// transaction, which is how the payment workflow keeps the balance read,
// the record upsert, the advance mutations and the ledger inserts atomic.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
