package sprint

import "time"

// Sprint states
const (
	StateActive = "ACTIVE"
	StateClosed = "CLOSED"
)

// Sprint represents the sprints table
type Sprint struct {
	ID        int64
	ProjectID int64
	Name      string
	State     string
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
}
