package outbox

import "time"

// Event is one durable row of the transactional outbox. Rows are written
// inside the producer's database transaction and drained by the relay.
type Event struct {
	ID        int64
	EventID   string
	Type      string
	Channel   string
	Payload   string
	Published bool
	CreatedAt time.Time
}

// TableName returns the database table name
func (Event) TableName() string {
	return "outbox_events"
}
