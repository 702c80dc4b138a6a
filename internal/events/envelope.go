package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the immutable record carrying one event from the producer's
// transaction to end subscribers. EventID is the deduplication key; Payload
// is opaque to the pipeline and round-trips byte-exact.
type Envelope struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	Channel   string          `json:"channel"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Encode renders the canonical JSON wire form.
func (e Envelope) Encode() ([]byte, error) {
	if e.EventID == "" || e.Type == "" || e.Channel == "" {
		return nil, fmt.Errorf("envelope missing identity: event_id=%q type=%q channel=%q", e.EventID, e.Type, e.Channel)
	}
	return json.Marshal(e)
}

// Decode parses an envelope from its wire form.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if e.EventID == "" || e.Type == "" || e.Channel == "" {
		return Envelope{}, fmt.Errorf("envelope missing identity fields")
	}
	return e, nil
}
