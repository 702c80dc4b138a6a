package issue

import (
	"database/sql"
	"time"
)

// Issue types
const (
	TypeStory = "STORY"
	TypeBug   = "BUG"
	TypeTask  = "TASK"
)

// Issue statuses
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusInReview   = "IN_REVIEW"
	StatusDone       = "DONE"
)

// Issue represents the issues table
type Issue struct {
	ID          int64
	ProjectID   int64
	SprintID    sql.NullInt64
	Type        string
	Status      string
	Priority    string
	Summary     string
	Description sql.NullString
	ReporterID  int64
	AssigneeID  sql.NullInt64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidTransition reports whether an issue may move between two statuses.
// The board allows one step forward, or back to TODO from anywhere.
func ValidTransition(from, to string) bool {
	switch from {
	case StatusTodo:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusInReview || to == StatusTodo
	case StatusInReview:
		return to == StatusDone || to == StatusInProgress || to == StatusTodo
	case StatusDone:
		return to == StatusTodo
	}
	return false
}
