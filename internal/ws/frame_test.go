package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameMarshalIsDeterministic(t *testing.T) {
	f := NewFrame(CommandMessage, map[string]string{
		"destination":  "/topic/project.7",
		"content-type": "application/json",
	}, []byte(`{"x":1}`))

	want := "MESSAGE\ncontent-type:application/json\ndestination:/topic/project.7\n\n{\"x\":1}"
	assert.Equal(t, want, string(f.Marshal()))
	assert.Equal(t, string(f.Marshal()), string(f.Marshal()))
}

func TestFrameRoundTrip(t *testing.T) {
	in := NewFrame(CommandSubscribe, map[string]string{
		"id":          "sub-1",
		"destination": "/topic/issue.42",
		"receipt":     "r-9",
	}, nil)

	out, err := ParseFrame(in.Marshal())
	require.NoError(t, err)
	assert.Equal(t, CommandSubscribe, out.Command)
	assert.Equal(t, "sub-1", out.Headers["id"])
	assert.Equal(t, "/topic/issue.42", out.Headers["destination"])
	assert.Equal(t, "r-9", out.Headers["receipt"])
	assert.Empty(t, out.Body)
}

func TestParseFrameWithoutBodySeparator(t *testing.T) {
	f, err := ParseFrame([]byte("DISCONNECT\n"))
	require.NoError(t, err)
	assert.Equal(t, CommandDisconnect, f.Command)
	assert.Empty(t, f.Headers)
}

func TestParseFrameBodyPassesThroughUntouched(t *testing.T) {
	body := `{"event_id":"e-1","payload":{"nested":"a\nb"}}`
	f, err := ParseFrame([]byte("MESSAGE\ndestination:/topic/project.1\n\n" + body))
	require.NoError(t, err)
	assert.Equal(t, body, string(f.Body))
}

func TestParseFrameRejectsMalformed(t *testing.T) {
	_, err := ParseFrame([]byte(""))
	assert.Error(t, err)

	_, err = ParseFrame([]byte("SUBSCRIBE\nno-colon-here\n\n"))
	assert.Error(t, err)
}
