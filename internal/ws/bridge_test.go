package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksphere/internal/events"
)

// The bridge ties the broker to the hub: an envelope published on a
// channel must arrive as a MESSAGE frame on the matching /topic/
// destination, and nowhere else.
func TestBridgeForwardsBrokerEventsToSubscribers(t *testing.T) {
	broker := events.NewMemoryBroker()
	hub := NewHub(allowAll{}, HubConfig{})
	bridge := NewBridge(broker, hub)
	require.NoError(t, bridge.Start(context.Background()))
	defer bridge.Stop()

	watcher := testSession(8, 64, Principal{ID: 1})
	watcher.id = "watcher"
	watcher.subscribe("sub-1", "/topic/project.7")

	bystander := testSession(8, 64, Principal{ID: 2})
	bystander.id = "bystander"
	bystander.subscribe("sub-1", "/topic/project.8")

	addSession(hub, watcher)
	addSession(hub, bystander)

	envelope := events.Envelope{
		EventID:   "e-1",
		Type:      events.TypeIssueCreated,
		Channel:   "project.7",
		Payload:   json.RawMessage(`{"issueId":42}`),
		CreatedAt: time.Now().UTC(),
	}
	data, err := envelope.Encode()
	require.NoError(t, err)
	require.NoError(t, broker.Publish(context.Background(), envelope.Channel, data))

	select {
	case raw := <-watcher.send:
		frame, err := ParseFrame(raw)
		require.NoError(t, err)
		assert.Equal(t, CommandMessage, frame.Command)
		assert.Equal(t, "/topic/project.7", frame.Headers["destination"])

		got, err := events.Decode(frame.Body)
		require.NoError(t, err)
		assert.Equal(t, "e-1", got.EventID)
		assert.JSONEq(t, `{"issueId":42}`, string(got.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never received the event")
	}

	assert.Empty(t, bystander.send)
}

func TestBridgeStopCancelsSubscriptions(t *testing.T) {
	broker := events.NewMemoryBroker()
	hub := NewHub(allowAll{}, HubConfig{})
	bridge := NewBridge(broker, hub)
	require.NoError(t, bridge.Start(context.Background()))

	watcher := testSession(8, 64, Principal{ID: 1})
	watcher.subscribe("sub-1", "/topic/project.7")
	addSession(hub, watcher)

	bridge.Stop()

	envelope := events.Envelope{EventID: "e-1", Type: events.TypeIssueCreated, Channel: "project.7"}
	data, err := envelope.Encode()
	require.NoError(t, err)
	require.NoError(t, broker.Publish(context.Background(), envelope.Channel, data))

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, watcher.send)
}
