package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowAll struct{}

func (allowAll) Authorize(context.Context, Principal, string) bool { return true }

func addSession(h *Hub, s *Session) {
	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
}

func TestHubDeliverReachesMatchingSessionsOnly(t *testing.T) {
	h := NewHub(allowAll{}, HubConfig{})

	watcher := testSession(8, 64, Principal{ID: 1})
	watcher.id = "watcher"
	watcher.subscribe("sub-1", "/topic/project.7")

	bystander := testSession(8, 64, Principal{ID: 2})
	bystander.id = "bystander"
	bystander.subscribe("sub-1", "/topic/project.8")

	addSession(h, watcher)
	addSession(h, bystander)

	h.Deliver("/topic/project.7", []byte(`{"event_id":"e-1"}`))

	require.Len(t, watcher.send, 1)
	assert.Empty(t, bystander.send)

	frame, err := ParseFrame(<-watcher.send)
	require.NoError(t, err)
	assert.Equal(t, CommandMessage, frame.Command)
	assert.Equal(t, "/topic/project.7", frame.Headers["destination"])
	assert.JSONEq(t, `{"event_id":"e-1"}`, string(frame.Body))
}

func TestHubDeliverUserDestination(t *testing.T) {
	h := NewHub(allowAll{}, HubConfig{})

	alice := testSession(8, 64, Principal{ID: 1})
	alice.id = "alice"
	alice.subscribe("sub-1", "/user/1/notifications")

	mallory := testSession(8, 64, Principal{ID: 2})
	mallory.id = "mallory"
	// Even a recorded subscription to another principal's inbox must not
	// receive deliveries.
	mallory.subscribe("sub-1", "/user/1/notifications")

	addSession(h, alice)
	addSession(h, mallory)

	h.Deliver(UserDestination(1, "notifications"), []byte("hi"))

	assert.Len(t, alice.send, 1)
	assert.Empty(t, mallory.send)
}

func TestHubSlowSessionDoesNotBlockOthers(t *testing.T) {
	h := NewHub(allowAll{}, HubConfig{})

	slow := testSession(1, 1000, Principal{ID: 1})
	slow.id = "slow"
	slow.subscribe("sub-1", "/topic/project.*")

	fast := testSession(64, 64, Principal{ID: 2})
	fast.id = "fast"
	fast.subscribe("sub-1", "/topic/project.*")

	addSession(h, slow)
	addSession(h, fast)

	for i := 0; i < 10; i++ {
		h.Deliver("/topic/project.7", []byte("evt"))
	}

	assert.Len(t, fast.send, 10, "fast session receives everything")
	assert.Len(t, slow.send, 1, "slow session keeps only the newest")
	assert.Equal(t, int64(9), slow.Drops())
}

func TestHubSessionCount(t *testing.T) {
	h := NewHub(allowAll{}, HubConfig{})
	assert.Equal(t, 0, h.SessionCount())

	addSession(h, testSession(1, 1, Principal{ID: 1}))
	assert.Equal(t, 1, h.SessionCount())
}
