package httpdto

// CreateSprintRequest is used for POST /v1/projects/:id/sprints
type CreateSprintRequest struct {
	Name      string `json:"name" binding:"required"`
	StartDate string `json:"start_date" binding:"required"` // RFC 3339 date
	EndDate   string `json:"end_date" binding:"required"`
}
