package httpdto

// CreateIssueRequest is used for POST /v1/projects/:id/issues
type CreateIssueRequest struct {
	SprintID    *int64 `json:"sprint_id,omitempty"`
	Type        string `json:"type,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Summary     string `json:"summary" binding:"required"`
	Description string `json:"description,omitempty"`
	AssigneeID  *int64 `json:"assignee_id,omitempty"`
}

// UpdateIssueRequest is used for PATCH /v1/issues/:id. Absent fields are
// left unchanged.
type UpdateIssueRequest struct {
	Status     *string `json:"status,omitempty"`
	Priority   *string `json:"priority,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	AssigneeID *int64  `json:"assignee_id,omitempty"`
	SprintID   *int64  `json:"sprint_id,omitempty"`
}
