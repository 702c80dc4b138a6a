package repository

import (
	"context"
	"time"

	"tasksphere/internal/domain/activity"
	"tasksphere/internal/domain/attachment"
	"tasksphere/internal/domain/comment"
	"tasksphere/internal/domain/issue"
	"tasksphere/internal/domain/outbox"
	"tasksphere/internal/domain/project"
	"tasksphere/internal/domain/sprint"
	"tasksphere/internal/domain/user"
)

// OutboxRepository is the durable staging area for the event pipeline.
// Append participates in the caller's transaction; the relay is the only
// consumer of the other methods.
type OutboxRepository interface {
	// Append inserts one row with a fresh event id and returns that id.
	// When tx is nil the repository's own pool is used.
	Append(ctx context.Context, tx DBTX, eventType, channel, payload string) (string, error)

	// ScanUnpublished returns up to limit unpublished rows in
	// (created_at, id) order. Readers never block writers.
	ScanUnpublished(ctx context.Context, limit int) ([]outbox.Event, error)

	// MarkPublished flips the named events to published. Idempotent; rows
	// already published are left untouched.
	MarkPublished(ctx context.Context, eventIDs []string) error

	// Depth counts unpublished rows, sampled for the backlog gauge.
	Depth(ctx context.Context) (int64, error)

	// DeletePublishedBefore removes published rows older than the cutoff
	// and returns how many were removed.
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, tx DBTX, p *project.Project) error
	GetByID(ctx context.Context, id int64) (project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
	Delete(ctx context.Context, tx DBTX, id int64) error
	IsOwner(ctx context.Context, projectID, userID int64) (bool, error)
}

type IssueRepository interface {
	Create(ctx context.Context, tx DBTX, i *issue.Issue) error
	GetByID(ctx context.Context, id int64) (issue.Issue, error)
	ListByProject(ctx context.Context, projectID int64, status string) ([]issue.Issue, error)
	Update(ctx context.Context, tx DBTX, i issue.Issue) error
}

type SprintRepository interface {
	Create(ctx context.Context, tx DBTX, s *sprint.Sprint) error
	GetByID(ctx context.Context, id int64) (sprint.Sprint, error)
	GetActive(ctx context.Context, projectID int64) (sprint.Sprint, error)
	SetState(ctx context.Context, tx DBTX, id int64, state string) error
}

type CommentRepository interface {
	Create(ctx context.Context, tx DBTX, c *comment.Comment) error
	ListByIssue(ctx context.Context, issueID int64) ([]comment.Comment, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, tx DBTX, l *activity.Log) error
	ListByProject(ctx context.Context, projectID int64, limit int) ([]activity.Log, error)
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *attachment.Attachment) error
	GetByID(ctx context.Context, id int64) (attachment.Attachment, error)
	ListByIssue(ctx context.Context, issueID int64) ([]attachment.Attachment, error)
}
