package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"tasksphere/internal/domain/sprint"
	tasksphere_errors "tasksphere/pkg/errors"
)

type sprintRepository struct {
	db DBTX
}

func NewSprintRepository(db DBTX) SprintRepository {
	return &sprintRepository{db: db}
}

func (r *sprintRepository) Create(ctx context.Context, tx DBTX, s *sprint.Sprint) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	return execDB.QueryRow(ctx, `
        INSERT INTO sprints (project_id, name, state, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `, s.ProjectID, s.Name, s.State, s.StartDate, s.EndDate).Scan(&s.ID, &s.CreatedAt)
}

func (r *sprintRepository) GetByID(ctx context.Context, id int64) (sprint.Sprint, error) {
	var s sprint.Sprint
	err := r.db.QueryRow(ctx, `
        SELECT id, project_id, name, state, start_date, end_date, created_at
        FROM sprints
        WHERE id = $1
    `, id).Scan(&s.ID, &s.ProjectID, &s.Name, &s.State, &s.StartDate, &s.EndDate, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return sprint.Sprint{}, tasksphere_errors.ErrNotFound
	}
	return s, err
}

func (r *sprintRepository) GetActive(ctx context.Context, projectID int64) (sprint.Sprint, error) {
	var s sprint.Sprint
	err := r.db.QueryRow(ctx, `
        SELECT id, project_id, name, state, start_date, end_date, created_at
        FROM sprints
        WHERE project_id = $1 AND state = $2
        ORDER BY start_date DESC
        LIMIT 1
    `, projectID, sprint.StateActive).Scan(&s.ID, &s.ProjectID, &s.Name, &s.State, &s.StartDate, &s.EndDate, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return sprint.Sprint{}, tasksphere_errors.ErrNoActiveSprint
	}
	return s, err
}

func (r *sprintRepository) SetState(ctx context.Context, tx DBTX, id int64, state string) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	tag, err := execDB.Exec(ctx, `
        UPDATE sprints SET state = $2 WHERE id = $1
    `, id, state)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tasksphere_errors.ErrNotFound
	}
	return nil
}
