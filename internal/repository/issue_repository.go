package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"tasksphere/internal/domain/issue"
	tasksphere_errors "tasksphere/pkg/errors"
)

type issueRepository struct {
	db DBTX
}

func NewIssueRepository(db DBTX) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) Create(ctx context.Context, tx DBTX, i *issue.Issue) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	return execDB.QueryRow(ctx, `
        INSERT INTO issues (project_id, sprint_id, type, status, priority, summary, description, reporter_id, assignee_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at
    `,
		i.ProjectID,
		i.SprintID,
		i.Type,
		i.Status,
		i.Priority,
		i.Summary,
		i.Description,
		i.ReporterID,
		i.AssigneeID,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

func (r *issueRepository) GetByID(ctx context.Context, id int64) (issue.Issue, error) {
	var i issue.Issue
	err := r.db.QueryRow(ctx, `
        SELECT id, project_id, sprint_id, type, status, priority, summary, description, reporter_id, assignee_id, created_at, updated_at
        FROM issues
        WHERE id = $1
    `, id).Scan(
		&i.ID, &i.ProjectID, &i.SprintID, &i.Type, &i.Status, &i.Priority,
		&i.Summary, &i.Description, &i.ReporterID, &i.AssigneeID, &i.CreatedAt, &i.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return issue.Issue{}, tasksphere_errors.ErrNotFound
	}
	return i, err
}

func (r *issueRepository) ListByProject(ctx context.Context, projectID int64, status string) ([]issue.Issue, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, project_id, sprint_id, type, status, priority, summary, description, reporter_id, assignee_id, created_at, updated_at
        FROM issues
        WHERE project_id = $1 AND ($2 = '' OR status = $2)
        ORDER BY created_at DESC
    `, projectID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []issue.Issue
	for rows.Next() {
		var i issue.Issue
		if err := rows.Scan(
			&i.ID, &i.ProjectID, &i.SprintID, &i.Type, &i.Status, &i.Priority,
			&i.Summary, &i.Description, &i.ReporterID, &i.AssigneeID, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

func (r *issueRepository) Update(ctx context.Context, tx DBTX, i issue.Issue) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	tag, err := execDB.Exec(ctx, `
        UPDATE issues
        SET sprint_id = $2, status = $3, priority = $4, summary = $5, description = $6, assignee_id = $7, updated_at = now()
        WHERE id = $1
    `, i.ID, i.SprintID, i.Status, i.Priority, i.Summary, i.Description, i.AssigneeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tasksphere_errors.ErrNotFound
	}
	return nil
}
