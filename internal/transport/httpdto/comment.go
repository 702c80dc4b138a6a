package httpdto

// AddCommentRequest is used for POST /v1/issues/:id/comments
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}
