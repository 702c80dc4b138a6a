package services

import (
	"context"
	"time"

	"tasksphere/internal/repository"
)

const defaultActivityLimit = 50

type ActivityService struct {
	activityRepo repository.ActivityRepository
}

func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

type ActivityView struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	IssueID   *int64    `json:"issue_id,omitempty"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListByProject returns the newest activity rows for a project.
func (s *ActivityService) ListByProject(ctx context.Context, projectID int64, limit int) ([]ActivityView, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultActivityLimit
	}
	logs, err := s.activityRepo.ListByProject(ctx, projectID, limit)
	if err != nil {
		return nil, err
	}
	views := make([]ActivityView, 0, len(logs))
	for _, l := range logs {
		v := ActivityView{
			ID:        l.ID,
			ProjectID: l.ProjectID,
			Actor:     l.Actor,
			Action:    l.Action,
			CreatedAt: l.CreatedAt,
		}
		if l.IssueID.Valid {
			v.IssueID = &l.IssueID.Int64
		}
		if l.Detail.Valid {
			v.Detail = l.Detail.String
		}
		views = append(views, v)
	}
	return views, nil
}
