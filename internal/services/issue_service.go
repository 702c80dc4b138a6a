package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tasksphere/internal/domain/activity"
	"tasksphere/internal/domain/issue"
	"tasksphere/internal/domain/user"
	"tasksphere/internal/events"
	"tasksphere/internal/repository"
	tasksphere_errors "tasksphere/pkg/errors"
)

type IssueService struct {
	pool         *pgxpool.Pool
	issues       repository.IssueRepository
	projects     repository.ProjectRepository
	activityRepo repository.ActivityRepository
	outbox       *OutboxService
	logger       *zap.Logger
}

func NewIssueService(
	pool *pgxpool.Pool,
	issues repository.IssueRepository,
	projects repository.ProjectRepository,
	activityRepo repository.ActivityRepository,
	outbox *OutboxService,
) *IssueService {
	return &IssueService{
		pool:         pool,
		issues:       issues,
		projects:     projects,
		activityRepo: activityRepo,
		outbox:       outbox,
		logger:       zap.L().With(zap.String("component", "issue_service")),
	}
}

type CreateIssueInput struct {
	ProjectID   int64
	SprintID    *int64
	Type        string
	Priority    string
	Summary     string
	Description string
	AssigneeID  *int64
}

type UpdateIssueInput struct {
	Status     *string
	Priority   *string
	Summary    *string
	AssigneeID *int64
	SprintID   *int64
}

type IssueView struct {
	ID         int64  `json:"id"`
	ProjectID  int64  `json:"project_id"`
	SprintID   *int64 `json:"sprint_id,omitempty"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	Summary    string `json:"summary"`
	ReporterID int64  `json:"reporter_id"`
	AssigneeID *int64 `json:"assignee_id,omitempty"`
}

func (s *IssueService) Create(ctx context.Context, actor user.User, in CreateIssueInput) (IssueView, error) {
	if in.Summary == "" || in.ProjectID == 0 {
		return IssueView{}, tasksphere_errors.ErrInvalidInput
	}
	if in.Type == "" {
		in.Type = issue.TypeTask
	}
	if in.Priority == "" {
		in.Priority = "MEDIUM"
	}
	if _, err := s.projects.GetByID(ctx, in.ProjectID); err != nil {
		return IssueView{}, err
	}

	i := issue.Issue{
		ProjectID:  in.ProjectID,
		Type:       in.Type,
		Status:     issue.StatusTodo,
		Priority:   in.Priority,
		Summary:    in.Summary,
		ReporterID: actor.ID,
	}
	if in.Description != "" {
		i.Description = sql.NullString{String: in.Description, Valid: true}
	}
	if in.SprintID != nil {
		i.SprintID = sql.NullInt64{Int64: *in.SprintID, Valid: true}
	}
	if in.AssigneeID != nil {
		i.AssigneeID = sql.NullInt64{Int64: *in.AssigneeID, Valid: true}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return IssueView{}, err
	}
	defer tx.Rollback(ctx)

	if err := s.issues.Create(ctx, tx, &i); err != nil {
		return IssueView{}, err
	}

	payload, _ := json.Marshal(map[string]any{
		"issueId":   i.ID,
		"projectId": i.ProjectID,
		"summary":   i.Summary,
		"status":    i.Status,
		"actor":     actor.Email,
	})
	if err := s.outbox.PublishIssueEvent(ctx, tx, i.ProjectID, i.ID, events.TypeIssueCreated, string(payload)); err != nil {
		return IssueView{}, err
	}
	if err := s.activityRepo.Create(ctx, tx, &activity.Log{
		ProjectID: i.ProjectID,
		IssueID:   sql.NullInt64{Int64: i.ID, Valid: true},
		Actor:     actor.Email,
		Action:    events.TypeIssueCreated,
	}); err != nil {
		return IssueView{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return IssueView{}, err
	}
	return toIssueView(i), nil
}

func (s *IssueService) Update(ctx context.Context, actor user.User, issueID int64, in UpdateIssueInput) (IssueView, error) {
	i, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return IssueView{}, err
	}

	changed := false
	if in.Status != nil && *in.Status != i.Status {
		if !issue.ValidTransition(i.Status, *in.Status) {
			return IssueView{}, fmt.Errorf("%w: %s -> %s", tasksphere_errors.ErrInvalidTransition, i.Status, *in.Status)
		}
		i.Status = *in.Status
		changed = true
	}
	if in.Priority != nil && *in.Priority != i.Priority {
		i.Priority = *in.Priority
		changed = true
	}
	if in.Summary != nil && *in.Summary != i.Summary {
		i.Summary = *in.Summary
		changed = true
	}
	if in.AssigneeID != nil {
		i.AssigneeID = sql.NullInt64{Int64: *in.AssigneeID, Valid: *in.AssigneeID != 0}
		changed = true
	}
	if in.SprintID != nil {
		i.SprintID = sql.NullInt64{Int64: *in.SprintID, Valid: *in.SprintID != 0}
		changed = true
	}
	if !changed {
		return toIssueView(i), nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return IssueView{}, err
	}
	defer tx.Rollback(ctx)

	if err := s.issues.Update(ctx, tx, i); err != nil {
		return IssueView{}, err
	}

	payload, _ := json.Marshal(map[string]any{
		"issueId":   i.ID,
		"projectId": i.ProjectID,
		"status":    i.Status,
		"summary":   i.Summary,
		"actor":     actor.Email,
	})
	if err := s.outbox.PublishIssueEvent(ctx, tx, i.ProjectID, i.ID, events.TypeIssueUpdated, string(payload)); err != nil {
		return IssueView{}, err
	}
	if err := s.activityRepo.Create(ctx, tx, &activity.Log{
		ProjectID: i.ProjectID,
		IssueID:   sql.NullInt64{Int64: i.ID, Valid: true},
		Actor:     actor.Email,
		Action:    events.TypeIssueUpdated,
	}); err != nil {
		return IssueView{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return IssueView{}, err
	}
	return toIssueView(i), nil
}

func (s *IssueService) Get(ctx context.Context, id int64) (IssueView, error) {
	i, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return IssueView{}, err
	}
	return toIssueView(i), nil
}

func (s *IssueService) List(ctx context.Context, projectID int64, status string) ([]IssueView, error) {
	issues, err := s.issues.ListByProject(ctx, projectID, status)
	if err != nil {
		return nil, err
	}
	views := make([]IssueView, 0, len(issues))
	for _, i := range issues {
		views = append(views, toIssueView(i))
	}
	return views, nil
}

func toIssueView(i issue.Issue) IssueView {
	view := IssueView{
		ID:         i.ID,
		ProjectID:  i.ProjectID,
		Type:       i.Type,
		Status:     i.Status,
		Priority:   i.Priority,
		Summary:    i.Summary,
		ReporterID: i.ReporterID,
	}
	if i.SprintID.Valid {
		view.SprintID = &i.SprintID.Int64
	}
	if i.AssigneeID.Valid {
		view.AssigneeID = &i.AssigneeID.Int64
	}
	return view
}
