package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"tasksphere/internal/domain/project"
	tasksphere_errors "tasksphere/pkg/errors"
)

type projectRepository struct {
	db DBTX
}

func NewProjectRepository(db DBTX) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, tx DBTX, p *project.Project) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	return execDB.QueryRow(ctx, `
        INSERT INTO projects (key, name, description, owner_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at
    `, p.Key, p.Name, p.Description, p.OwnerID).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (project.Project, error) {
	var p project.Project
	err := r.db.QueryRow(ctx, `
        SELECT id, key, name, description, owner_id, created_at, updated_at
        FROM projects
        WHERE id = $1
    `, id).Scan(&p.ID, &p.Key, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return project.Project{}, tasksphere_errors.ErrNotFound
	}
	return p, err
}

func (r *projectRepository) List(ctx context.Context) ([]project.Project, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, key, name, description, owner_id, created_at, updated_at
        FROM projects
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		var p project.Project
		if err := rows.Scan(&p.ID, &p.Key, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectRepository) Delete(ctx context.Context, tx DBTX, id int64) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	tag, err := execDB.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tasksphere_errors.ErrNotFound
	}
	return nil
}

func (r *projectRepository) IsOwner(ctx context.Context, projectID, userID int64) (bool, error) {
	var owner bool
	err := r.db.QueryRow(ctx, `
        SELECT owner_id = $2 FROM projects WHERE id = $1
    `, projectID, userID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, tasksphere_errors.ErrNotFound
	}
	return owner, err
}
