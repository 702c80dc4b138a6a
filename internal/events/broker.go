package events

import "context"

// Handler receives one delivery. Implementations must not retain data past
// the call without copying.
type Handler func(topic string, data []byte)

// Subscription is a cancellable pattern subscription.
type Subscription interface {
	// Close stops delivery and releases the subscription.
	Close() error
}

// Broker is the pub/sub capability the pipeline is built on. Durability
// comes from the outbox, not from the broker; implementations are free to
// drop messages with no subscriber. Delivery to a single subscriber follows
// publish order per topic.
type Broker interface {
	// Publish fans data out to every subscriber whose pattern matches topic.
	Publish(ctx context.Context, topic string, data []byte) error

	// Subscribe registers handler for every topic matching pattern, where
	// `*` is a single-segment wildcard.
	Subscribe(ctx context.Context, pattern string, handler Handler) (Subscription, error)
}
