package repository

import (
	"context"

	"tasksphere/internal/domain/activity"
)

type activityRepository struct {
	db DBTX
}

func NewActivityRepository(db DBTX) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, tx DBTX, l *activity.Log) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	return execDB.QueryRow(ctx, `
        INSERT INTO activity_logs (project_id, issue_id, actor, action, detail)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `, l.ProjectID, l.IssueID, l.Actor, l.Action, l.Detail).Scan(&l.ID, &l.CreatedAt)
}

func (r *activityRepository) ListByProject(ctx context.Context, projectID int64, limit int) ([]activity.Log, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, project_id, issue_id, actor, action, detail, created_at
        FROM activity_logs
        WHERE project_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []activity.Log
	for rows.Next() {
		var l activity.Log
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.IssueID, &l.Actor, &l.Action, &l.Detail, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
