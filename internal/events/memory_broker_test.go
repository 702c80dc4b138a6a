package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	topics []string
	bodies []string
}

func (r *recorder) handle(topic string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.bodies = append(r.bodies, string(data))
}

func (r *recorder) wait(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		got := len(r.topics)
		r.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d deliveries", n)
}

func TestMemoryBrokerPatternFilter(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	var rec recorder
	sub, err := b.Subscribe(ctx, "project.*", rec.handle)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.Publish(ctx, "project.7", []byte("a")))
	require.NoError(t, b.Publish(ctx, "issue.7", []byte("b")))
	require.NoError(t, b.Publish(ctx, "project.8", []byte("c")))

	rec.wait(t, 2)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"project.7", "project.8"}, rec.topics)
	assert.Equal(t, []string{"a", "c"}, rec.bodies)
}

func TestMemoryBrokerPerSubscriberOrder(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	var rec recorder
	sub, err := b.Subscribe(ctx, "issue.*", rec.handle)
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 20; i++ {
		require.NoError(t, b.Publish(ctx, "issue.1", []byte{byte('a' + i)}))
	}

	rec.wait(t, 20)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i, body := range rec.bodies {
		assert.Equal(t, string(rune('a'+i)), body, "delivery %d out of order", i)
	}
}

func TestMemoryBrokerPublisherBufferIsolation(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	var rec recorder
	sub, err := b.Subscribe(ctx, "project.*", rec.handle)
	require.NoError(t, err)
	defer sub.Close()

	buf := []byte("before")
	require.NoError(t, b.Publish(ctx, "project.1", buf))
	copy(buf, "XXXXXX")

	rec.wait(t, 1)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, "before", rec.bodies[0])
}

func TestMemoryBrokerPublishHonorsContextDeadline(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	// Park the drain goroutine so the queue fills up and publishes block.
	blocked := make(chan struct{})
	sub, err := b.Subscribe(ctx, "project.*", func(string, []byte) {
		<-blocked
	})
	require.NoError(t, err)
	defer sub.Close()
	defer close(blocked)

	deadline, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	errs := make(chan error, 1)
	go func() {
		for i := 0; i < 1100; i++ {
			if err := b.Publish(deadline, "project.1", []byte("x")); err != nil {
				errs <- err
				return
			}
		}
		errs <- nil
	}()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("publish ignored the context deadline")
	}
}

func TestMemoryBrokerClosedSubscriptionStopsDelivering(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	var rec recorder
	sub, err := b.Subscribe(ctx, "project.*", rec.handle)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "project.1", []byte("a")))
	rec.wait(t, 1)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close(), "close is idempotent")

	require.NoError(t, b.Publish(ctx, "project.1", []byte("b")))
	time.Sleep(20 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"a"}, rec.bodies)
}
