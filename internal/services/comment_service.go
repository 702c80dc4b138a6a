package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tasksphere/internal/domain/activity"
	"tasksphere/internal/domain/comment"
	"tasksphere/internal/domain/user"
	"tasksphere/internal/events"
	"tasksphere/internal/repository"
	tasksphere_errors "tasksphere/pkg/errors"
)

const maxCommentLength = 4000

type CommentService struct {
	pool         *pgxpool.Pool
	comments     repository.CommentRepository
	issues       repository.IssueRepository
	activityRepo repository.ActivityRepository
	outbox       *OutboxService
	logger       *zap.Logger
}

func NewCommentService(
	pool *pgxpool.Pool,
	comments repository.CommentRepository,
	issues repository.IssueRepository,
	activityRepo repository.ActivityRepository,
	outbox *OutboxService,
) *CommentService {
	return &CommentService{
		pool:         pool,
		comments:     comments,
		issues:       issues,
		activityRepo: activityRepo,
		outbox:       outbox,
		logger:       zap.L().With(zap.String("component", "comment_service")),
	}
}

type CommentView struct {
	ID        int64     `json:"id"`
	IssueID   int64     `json:"issue_id"`
	AuthorID  int64     `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Add records a comment and announces it on the issue's project stream.
func (s *CommentService) Add(ctx context.Context, actor user.User, issueID int64, text string) (CommentView, error) {
	if text == "" || len(text) > maxCommentLength {
		return CommentView{}, tasksphere_errors.ErrInvalidInput
	}
	i, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return CommentView{}, err
	}

	c := comment.Comment{
		IssueID:  i.ID,
		AuthorID: actor.ID,
		Text:     text,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return CommentView{}, err
	}
	defer tx.Rollback(ctx)

	if err := s.comments.Create(ctx, tx, &c); err != nil {
		return CommentView{}, err
	}

	payload, _ := json.Marshal(map[string]any{
		"commentId": c.ID,
		"issueId":   i.ID,
		"projectId": i.ProjectID,
		"actor":     actor.Email,
	})
	if err := s.outbox.PublishIssueEvent(ctx, tx, i.ProjectID, i.ID, events.TypeCommentAdded, string(payload)); err != nil {
		return CommentView{}, err
	}
	if err := s.activityRepo.Create(ctx, tx, &activity.Log{
		ProjectID: i.ProjectID,
		IssueID:   sql.NullInt64{Int64: i.ID, Valid: true},
		Actor:     actor.Email,
		Action:    events.TypeCommentAdded,
	}); err != nil {
		return CommentView{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return CommentView{}, err
	}
	return toCommentView(c), nil
}

func (s *CommentService) List(ctx context.Context, issueID int64) ([]CommentView, error) {
	comments, err := s.comments.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, toCommentView(c))
	}
	return views, nil
}

func toCommentView(c comment.Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		IssueID:   c.IssueID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}
