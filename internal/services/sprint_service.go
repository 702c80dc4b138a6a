package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tasksphere/internal/domain/activity"
	"tasksphere/internal/domain/sprint"
	"tasksphere/internal/domain/user"
	"tasksphere/internal/events"
	"tasksphere/internal/repository"
	tasksphere_errors "tasksphere/pkg/errors"
)

type SprintService struct {
	pool         *pgxpool.Pool
	sprints      repository.SprintRepository
	projects     repository.ProjectRepository
	activityRepo repository.ActivityRepository
	outbox       *OutboxService
	logger       *zap.Logger
}

func NewSprintService(
	pool *pgxpool.Pool,
	sprints repository.SprintRepository,
	projects repository.ProjectRepository,
	activityRepo repository.ActivityRepository,
	outbox *OutboxService,
) *SprintService {
	return &SprintService{
		pool:         pool,
		sprints:      sprints,
		projects:     projects,
		activityRepo: activityRepo,
		outbox:       outbox,
		logger:       zap.L().With(zap.String("component", "sprint_service")),
	}
}

type CreateSprintInput struct {
	ProjectID int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

type SprintView struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Create opens a new sprint. Only one sprint per project may be ACTIVE, so
// creation fails while another is still open.
func (s *SprintService) Create(ctx context.Context, actor user.User, in CreateSprintInput) (SprintView, error) {
	if in.Name == "" || in.ProjectID == 0 {
		return SprintView{}, tasksphere_errors.ErrInvalidInput
	}
	if !in.EndDate.After(in.StartDate) {
		return SprintView{}, tasksphere_errors.ErrInvalidInput
	}
	if _, err := s.projects.GetByID(ctx, in.ProjectID); err != nil {
		return SprintView{}, err
	}
	if _, err := s.sprints.GetActive(ctx, in.ProjectID); err == nil {
		return SprintView{}, tasksphere_errors.ErrConflict
	}

	sp := sprint.Sprint{
		ProjectID: in.ProjectID,
		Name:      in.Name,
		State:     sprint.StateActive,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return SprintView{}, err
	}
	defer tx.Rollback(ctx)

	if err := s.sprints.Create(ctx, tx, &sp); err != nil {
		return SprintView{}, err
	}

	payload, _ := json.Marshal(map[string]any{
		"sprintId":  sp.ID,
		"projectId": sp.ProjectID,
		"name":      sp.Name,
		"actor":     actor.Email,
	})
	if err := s.outbox.PublishSprintEvent(ctx, tx, sp.ProjectID, sp.ID, events.TypeSprintCreated, string(payload)); err != nil {
		return SprintView{}, err
	}
	if err := s.activityRepo.Create(ctx, tx, &activity.Log{
		ProjectID: sp.ProjectID,
		Actor:     actor.Email,
		Action:    events.TypeSprintCreated,
		Detail:    sql.NullString{String: sp.Name, Valid: true},
	}); err != nil {
		return SprintView{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return SprintView{}, err
	}
	return toSprintView(sp), nil
}

// Close moves the sprint to CLOSED. Closing twice is a conflict.
func (s *SprintService) Close(ctx context.Context, actor user.User, sprintID int64) (SprintView, error) {
	sp, err := s.sprints.GetByID(ctx, sprintID)
	if err != nil {
		return SprintView{}, err
	}
	if sp.State == sprint.StateClosed {
		return SprintView{}, tasksphere_errors.ErrConflict
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return SprintView{}, err
	}
	defer tx.Rollback(ctx)

	if err := s.sprints.SetState(ctx, tx, sp.ID, sprint.StateClosed); err != nil {
		return SprintView{}, err
	}
	sp.State = sprint.StateClosed

	payload, _ := json.Marshal(map[string]any{
		"sprintId":  sp.ID,
		"projectId": sp.ProjectID,
		"name":      sp.Name,
		"actor":     actor.Email,
	})
	if err := s.outbox.PublishSprintEvent(ctx, tx, sp.ProjectID, sp.ID, events.TypeSprintClosed, string(payload)); err != nil {
		return SprintView{}, err
	}
	if err := s.activityRepo.Create(ctx, tx, &activity.Log{
		ProjectID: sp.ProjectID,
		Actor:     actor.Email,
		Action:    events.TypeSprintClosed,
		Detail:    sql.NullString{String: sp.Name, Valid: true},
	}); err != nil {
		return SprintView{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return SprintView{}, err
	}
	return toSprintView(sp), nil
}

func (s *SprintService) GetActive(ctx context.Context, projectID int64) (SprintView, error) {
	sp, err := s.sprints.GetActive(ctx, projectID)
	if err != nil {
		return SprintView{}, err
	}
	return toSprintView(sp), nil
}

func toSprintView(sp sprint.Sprint) SprintView {
	return SprintView{
		ID:        sp.ID,
		ProjectID: sp.ProjectID,
		Name:      sp.Name,
		State:     sp.State,
		StartDate: sp.StartDate,
		EndDate:   sp.EndDate,
	}
}
