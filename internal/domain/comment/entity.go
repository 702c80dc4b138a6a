package comment

import "time"

// Comment represents the comments table
type Comment struct {
	ID        int64
	IssueID   int64
	AuthorID  int64
	Text      string
	CreatedAt time.Time
}
