package ws

import (
	"context"

	"go.uber.org/zap"

	"tasksphere/internal/events"
	"tasksphere/internal/metrics"
)

// Bridge forwards broker deliveries to the hub. It treats every message as
// opaque envelope bytes; payload schema changes cannot take the transport
// down.
type Bridge struct {
	broker events.Broker
	hub    *Hub
	subs   []events.Subscription
	logger *zap.Logger
}

func NewBridge(broker events.Broker, hub *Hub) *Bridge {
	return &Bridge{
		broker: broker,
		hub:    hub,
		logger: zap.L().With(zap.String("component", "bridge")),
	}
}

// Start registers the pattern subscriptions.
func (b *Bridge) Start(ctx context.Context) error {
	for _, pattern := range events.SubscribedPatterns {
		sub, err := b.broker.Subscribe(ctx, pattern, b.forward)
		if err != nil {
			b.Stop()
			return err
		}
		b.subs = append(b.subs, sub)
	}
	return nil
}

// Stop cancels the subscriptions.
func (b *Bridge) Stop() {
	for _, sub := range b.subs {
		if err := sub.Close(); err != nil {
			b.logger.Warn("failed to close subscription", zap.Error(err))
		}
	}
	b.subs = nil
}

func (b *Bridge) forward(topic string, data []byte) {
	b.hub.Deliver(TopicPrefix+topic, data)
	metrics.EventsDelivered.Inc()
}
