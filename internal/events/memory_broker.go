package events

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process Broker with the same semantics as the Redis
// implementation. It backs single-node deployments and tests. Each
// subscriber is drained by its own goroutine, so a slow handler delays only
// its own deliveries; per-subscriber order still follows publish order.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[int]*memorySubscription
	nextID int
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[int]*memorySubscription)}
}

type delivery struct {
	topic string
	data  []byte
}

type memorySubscription struct {
	broker  *MemoryBroker
	id      int
	pattern string
	handler Handler
	queue   chan delivery
	done    chan struct{}
	once    sync.Once
}

func (b *MemoryBroker) Publish(ctx context.Context, topic string, data []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !MatchTopic(sub.pattern, topic) {
			continue
		}
		// Copy so a subscriber cannot observe later mutation of the
		// publisher's buffer.
		buf := make([]byte, len(data))
		copy(buf, data)
		select {
		case sub.queue <- delivery{topic: topic, data: buf}:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, pattern string, handler Handler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &memorySubscription{
		broker:  b,
		id:      b.nextID,
		pattern: pattern,
		handler: handler,
		queue:   make(chan delivery, 1024),
		done:    make(chan struct{}),
	}
	b.nextID++
	b.subs[sub.id] = sub

	go sub.run()
	return sub, nil
}

func (s *memorySubscription) run() {
	for {
		select {
		case d := <-s.queue:
			s.handler(d.topic, d.data)
		case <-s.done:
			return
		}
	}
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.subs, s.id)
		s.broker.mu.Unlock()
		close(s.done)
	})
	return nil
}
