package ws

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Client commands
const (
	CommandConnect     = "CONNECT"
	CommandSubscribe   = "SUBSCRIBE"
	CommandUnsubscribe = "UNSUBSCRIBE"
	CommandDisconnect  = "DISCONNECT"
)

// Server commands
const (
	CommandConnected = "CONNECTED"
	CommandMessage   = "MESSAGE"
	CommandError     = "ERROR"
	CommandReceipt   = "RECEIPT"
)

// Frame is one STOMP-style message: a command line, header lines, a blank
// line, then the body. The body is opaque bytes; envelope payloads pass
// through it untouched.
type Frame struct {
	Command string
	Headers map[string]string
	Body    []byte
}

func NewFrame(command string, headers map[string]string, body []byte) Frame {
	if headers == nil {
		headers = map[string]string{}
	}
	return Frame{Command: command, Headers: headers, Body: body}
}

// Marshal renders the wire form. Headers are sorted so the encoding is
// deterministic.
func (f Frame) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString(f.Command)
	buf.WriteByte('\n')

	keys := make([]string, 0, len(f.Headers))
	for k := range f.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte(':')
		buf.WriteString(f.Headers[k])
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(f.Body)
	return buf.Bytes()
}

// ParseFrame decodes one frame from its wire form.
func ParseFrame(data []byte) (Frame, error) {
	head, body, found := bytes.Cut(data, []byte("\n\n"))
	if !found {
		// A frame without a body separator is still valid when it is all
		// headers, e.g. a bare "DISCONNECT\n".
		head = bytes.TrimRight(data, "\n")
		body = nil
	}

	lines := strings.Split(string(head), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return Frame{}, fmt.Errorf("empty frame")
	}

	f := Frame{
		Command: strings.TrimSpace(lines[0]),
		Headers: make(map[string]string, len(lines)-1),
		Body:    body,
	}
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return Frame{}, fmt.Errorf("malformed header %q", line)
		}
		f.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return f, nil
}
