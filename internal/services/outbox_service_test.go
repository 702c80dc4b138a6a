package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksphere/internal/domain/outbox"
	"tasksphere/internal/events"
	"tasksphere/internal/repository"
)

type stagedEvent struct {
	eventID string
	typ     string
	channel string
	payload string
}

type fakeOutboxRepo struct {
	staged []stagedEvent
	next   int
}

func (f *fakeOutboxRepo) Append(_ context.Context, _ repository.DBTX, eventType, channel, payload string) (string, error) {
	f.next++
	id := fmt.Sprintf("evt-%d", f.next)
	f.staged = append(f.staged, stagedEvent{eventID: id, typ: eventType, channel: channel, payload: payload})
	return id, nil
}

func (f *fakeOutboxRepo) ScanUnpublished(context.Context, int) ([]outbox.Event, error) {
	return nil, nil
}
func (f *fakeOutboxRepo) MarkPublished(context.Context, []string) error { return nil }
func (f *fakeOutboxRepo) Depth(context.Context) (int64, error)          { return 0, nil }
func (f *fakeOutboxRepo) DeletePublishedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestPublishReturnsFreshEventID(t *testing.T) {
	repo := &fakeOutboxRepo{}
	s := NewOutboxService(repo)

	id1, err := s.Publish(context.Background(), nil, events.TypeProjectCreated, "project.1", `{}`)
	require.NoError(t, err)
	id2, err := s.Publish(context.Background(), nil, events.TypeProjectCreated, "project.1", `{}`)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}

func TestPublishIssueEventFansOut(t *testing.T) {
	repo := &fakeOutboxRepo{}
	s := NewOutboxService(repo)

	err := s.PublishIssueEvent(context.Background(), nil, 7, 42, events.TypeIssueCreated, `{"issueId":42}`)
	require.NoError(t, err)

	require.Len(t, repo.staged, 2)
	assert.Equal(t, "project.7", repo.staged[0].channel)
	assert.Equal(t, "issue.42", repo.staged[1].channel)
	assert.NotEqual(t, repo.staged[0].eventID, repo.staged[1].eventID,
		"each target carries its own envelope")
	for _, e := range repo.staged {
		assert.Equal(t, events.TypeIssueCreated, e.typ)
		assert.Equal(t, `{"issueId":42}`, e.payload)
	}
}

func TestPublishSprintEventFansOut(t *testing.T) {
	repo := &fakeOutboxRepo{}
	s := NewOutboxService(repo)

	err := s.PublishSprintEvent(context.Background(), nil, 7, 3, events.TypeSprintClosed, `{}`)
	require.NoError(t, err)

	require.Len(t, repo.staged, 2)
	assert.Equal(t, "project.7", repo.staged[0].channel)
	assert.Equal(t, "sprint.3", repo.staged[1].channel)
}
