package events

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker implements Broker on Redis pub/sub. Pattern subscriptions map
// onto PSUBSCRIBE; the dotted single.segment patterns used by the tracker
// ("project.*" etc.) behave identically under Redis glob rules because ids
// never contain dots.
type RedisBroker struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{
		client: client,
		logger: zap.L().With(zap.String("component", "redis_broker")),
	}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string, data []byte) error {
	return b.client.Publish(ctx, topic, data).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, pattern string, handler Handler) (Subscription, error) {
	pubsub := b.client.PSubscribe(ctx, pattern)

	// Force the subscription onto the wire before returning so callers can
	// rely on deliveries for messages published after Subscribe.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	go func() {
		ch := pubsub.Channel()
		for msg := range ch {
			handler(msg.Channel, []byte(msg.Payload))
		}
	}()

	return &redisSubscription{pubsub: pubsub}, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
