package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	in := Envelope{
		EventID:   "e-1",
		Type:      TypeIssueCreated,
		Channel:   "project.7",
		Payload:   json.RawMessage(`{"issueId":42,"projectId":7}`),
		CreatedAt: created,
	}

	data, err := in.Encode()
	require.NoError(t, err)

	out, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, in.EventID, out.EventID)
	assert.Equal(t, in.Type, out.Type)
	assert.Equal(t, in.Channel, out.Channel)
	assert.JSONEq(t, string(in.Payload), string(out.Payload))
	assert.True(t, created.Equal(out.CreatedAt))
}

func TestEnvelopeEncodeRequiresIdentity(t *testing.T) {
	cases := []Envelope{
		{Type: TypeIssueCreated, Channel: "project.7"},
		{EventID: "e-1", Channel: "project.7"},
		{EventID: "e-1", Type: TypeIssueCreated},
	}
	for _, e := range cases {
		_, err := e.Encode()
		assert.Error(t, err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"payload":{}}`))
	assert.Error(t, err, "identity fields must be present")
}
