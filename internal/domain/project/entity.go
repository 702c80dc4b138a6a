package project

import (
	"database/sql"
	"time"
)

// Project represents the projects table
type Project struct {
	ID          int64
	Key         string
	Name        string
	Description sql.NullString
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
