package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tasksphere/internal/domain/activity"
	"tasksphere/internal/domain/project"
	"tasksphere/internal/domain/user"
	"tasksphere/internal/events"
	"tasksphere/internal/redis"
	"tasksphere/internal/repository"
	tasksphere_errors "tasksphere/pkg/errors"
)

type ProjectService struct {
	pool         *pgxpool.Pool
	projects     repository.ProjectRepository
	activityRepo repository.ActivityRepository
	outbox       *OutboxService
	cache        *redis.Cache
	logger       *zap.Logger
}

func NewProjectService(
	pool *pgxpool.Pool,
	projects repository.ProjectRepository,
	activityRepo repository.ActivityRepository,
	outbox *OutboxService,
	cache *redis.Cache,
) *ProjectService {
	return &ProjectService{
		pool:         pool,
		projects:     projects,
		activityRepo: activityRepo,
		outbox:       outbox,
		cache:        cache,
		logger:       zap.L().With(zap.String("component", "project_service")),
	}
}

type CreateProjectInput struct {
	Key         string
	Name        string
	Description string
}

type ProjectView struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     int64  `json:"owner_id"`
}

func (s *ProjectService) Create(ctx context.Context, actor user.User, in CreateProjectInput) (ProjectView, error) {
	if in.Key == "" || in.Name == "" {
		return ProjectView{}, tasksphere_errors.ErrInvalidInput
	}

	p := project.Project{
		Key:     in.Key,
		Name:    in.Name,
		OwnerID: actor.ID,
	}
	if in.Description != "" {
		p.Description.String = in.Description
		p.Description.Valid = true
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ProjectView{}, err
	}
	defer tx.Rollback(ctx)

	if err := s.projects.Create(ctx, tx, &p); err != nil {
		return ProjectView{}, err
	}

	payload, _ := json.Marshal(map[string]any{
		"projectId": p.ID,
		"key":       p.Key,
		"name":      p.Name,
	})
	if err := s.outbox.PublishProjectEvent(ctx, tx, p.ID, events.TypeProjectCreated, string(payload)); err != nil {
		return ProjectView{}, err
	}
	if err := s.activityRepo.Create(ctx, tx, &activity.Log{
		ProjectID: p.ID,
		Actor:     actor.Email,
		Action:    events.TypeProjectCreated,
	}); err != nil {
		return ProjectView{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ProjectView{}, err
	}
	return toProjectView(p), nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (ProjectView, error) {
	if s.cache != nil {
		var cached ProjectView
		if err := s.cache.GetProject(ctx, id, &cached); err == nil {
			return cached, nil
		}
	}

	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return ProjectView{}, err
	}
	view := toProjectView(p)

	if s.cache != nil {
		if err := s.cache.SetProject(ctx, id, view); err != nil {
			s.logger.Warn("project cache write failed", zap.Int64("project_id", id), zap.Error(err))
		}
	}
	return view, nil
}

func (s *ProjectService) List(ctx context.Context) ([]ProjectView, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, toProjectView(p))
	}
	return views, nil
}

func (s *ProjectService) Delete(ctx context.Context, actor user.User, id int64) error {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && p.OwnerID != actor.ID {
		return tasksphere_errors.ErrForbidden
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	payload := fmt.Sprintf(`{"projectId":%d,"key":%q}`, p.ID, p.Key)
	if err := s.outbox.PublishProjectEvent(ctx, tx, p.ID, events.TypeProjectDeleted, payload); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateProject(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("project cache invalidation failed", zap.Int64("project_id", id), zap.Error(err))
		}
	}
	return nil
}

func toProjectView(p project.Project) ProjectView {
	view := ProjectView{
		ID:      p.ID,
		Key:     p.Key,
		Name:    p.Name,
		OwnerID: p.OwnerID,
	}
	if p.Description.Valid {
		view.Description = p.Description.String
	}
	return view
}
