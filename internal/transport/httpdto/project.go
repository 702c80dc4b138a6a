package httpdto

// CreateProjectRequest is used for POST /v1/projects
type CreateProjectRequest struct {
	Key         string `json:"key" binding:"required,max=10"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}
