package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksphere/internal/domain/outbox"
	"tasksphere/internal/events"
	"tasksphere/internal/repository"
)

type fakeOutbox struct {
	mu   sync.Mutex
	rows []outbox.Event
	next int64

	markErr error
}

func (f *fakeOutbox) Append(_ context.Context, _ repository.DBTX, eventType, channel, payload string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	id := fmt.Sprintf("evt-%d", f.next)
	f.rows = append(f.rows, outbox.Event{
		ID:        f.next,
		EventID:   id,
		Type:      eventType,
		Channel:   channel,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	return id, nil
}

func (f *fakeOutbox) ScanUnpublished(_ context.Context, limit int) ([]outbox.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []outbox.Event
	for _, row := range f.rows {
		if row.Published {
			continue
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, eventIDs []string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		for _, id := range eventIDs {
			if f.rows[i].EventID == id {
				f.rows[i].Published = true
			}
		}
	}
	return nil
}

func (f *fakeOutbox) Depth(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if !row.Published {
			n++
		}
	}
	return n, nil
}

func (f *fakeOutbox) DeletePublishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []outbox.Event
	var removed int64
	for _, row := range f.rows {
		if row.Published && row.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	return removed, nil
}

// failingBroker rejects publishes on a chosen topic.
type failingBroker struct {
	inner    events.Broker
	failOn   string
	failures int
}

func (b *failingBroker) Publish(ctx context.Context, topic string, data []byte) error {
	if topic == b.failOn {
		b.failures++
		return errors.New("broker unavailable")
	}
	return b.inner.Publish(ctx, topic, data)
}

func (b *failingBroker) Subscribe(ctx context.Context, pattern string, handler events.Handler) (events.Subscription, error) {
	return b.inner.Subscribe(ctx, pattern, handler)
}

func collectEnvelopes(t *testing.T, broker events.Broker, pattern string) (*sync.Mutex, *[]events.Envelope) {
	t.Helper()
	var mu sync.Mutex
	var got []events.Envelope
	_, err := broker.Subscribe(context.Background(), pattern, func(_ string, data []byte) {
		e, err := events.Decode(data)
		if err != nil {
			t.Errorf("undecodable envelope: %v", err)
			return
		}
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	require.NoError(t, err)
	return &mu, &got
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	repo := &fakeOutbox{}
	broker := events.NewMemoryBroker()
	mu, got := collectEnvelopes(t, broker, "project.*")

	ctx := context.Background()
	repo.Append(ctx, nil, events.TypeProjectCreated, "project.1", `{"projectId":1}`)
	repo.Append(ctx, nil, events.TypeIssueCreated, "project.1", `{"issueId":2}`)

	r := New(repo, broker, Config{})
	r.ProcessBatch(ctx)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*got) == 2
	})

	mu.Lock()
	assert.Equal(t, events.TypeProjectCreated, (*got)[0].Type)
	assert.Equal(t, events.TypeIssueCreated, (*got)[1].Type)
	mu.Unlock()

	depth, err := repo.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth, "published rows are marked")
}

func TestProcessBatchIsolatesFailingRow(t *testing.T) {
	repo := &fakeOutbox{}
	inner := events.NewMemoryBroker()
	broker := &failingBroker{inner: inner, failOn: "project.13"}
	mu, got := collectEnvelopes(t, inner, "project.*")

	ctx := context.Background()
	repo.Append(ctx, nil, events.TypeProjectCreated, "project.1", `{}`)
	repo.Append(ctx, nil, events.TypeProjectCreated, "project.13", `{}`)
	repo.Append(ctx, nil, events.TypeProjectCreated, "project.2", `{}`)

	r := New(repo, broker, Config{})
	r.ProcessBatch(ctx)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*got) == 2
	})

	assert.Equal(t, 1, broker.failures)
	depth, _ := repo.Depth(ctx)
	assert.Equal(t, int64(1), depth, "failed row stays unpublished")

	// Next tick retries only the failed row.
	broker.failOn = ""
	r.ProcessBatch(ctx)
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*got) == 3
	})
	depth, _ = repo.Depth(ctx)
	assert.Zero(t, depth)
}

func TestProcessBatchRedeliversWhenMarkFails(t *testing.T) {
	repo := &fakeOutbox{markErr: errors.New("db down")}
	broker := events.NewMemoryBroker()
	mu, got := collectEnvelopes(t, broker, "project.*")

	ctx := context.Background()
	repo.Append(ctx, nil, events.TypeProjectCreated, "project.1", `{}`)

	r := New(repo, broker, Config{})
	r.ProcessBatch(ctx)
	repo.markErr = nil
	r.ProcessBatch(ctx)

	// The row is published twice; subscribers dedupe by event id.
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*got) == 2
	})
	mu.Lock()
	assert.Equal(t, (*got)[0].EventID, (*got)[1].EventID)
	mu.Unlock()

	depth, _ := repo.Depth(ctx)
	assert.Zero(t, depth)
}

func TestProcessBatchRespectsBatchSize(t *testing.T) {
	repo := &fakeOutbox{}
	broker := events.NewMemoryBroker()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		repo.Append(ctx, nil, events.TypeIssueUpdated, "project.1", `{}`)
	}

	r := New(repo, broker, Config{BatchSize: 2})
	r.ProcessBatch(ctx)

	depth, _ := repo.Depth(ctx)
	assert.Equal(t, int64(3), depth)
}

func TestRelayStartStop(t *testing.T) {
	repo := &fakeOutbox{}
	broker := events.NewMemoryBroker()
	mu, got := collectEnvelopes(t, broker, "project.*")

	repo.Append(context.Background(), nil, events.TypeProjectCreated, "project.1", `{}`)

	r := New(repo, broker, Config{Interval: 10 * time.Millisecond})
	r.Start()
	defer r.Stop()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*got) == 1
	})
}
