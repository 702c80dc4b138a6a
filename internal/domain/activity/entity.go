package activity

import (
	"database/sql"
	"time"
)

// Log is one append-only audit row recorded alongside a mutation. Clients
// that need to catch up after a disconnect read this table keyed by the
// event ids they have already seen.
type Log struct {
	ID        int64
	ProjectID int64
	IssueID   sql.NullInt64
	Actor     string
	Action    string
	Detail    sql.NullString
	CreatedAt time.Time
}
