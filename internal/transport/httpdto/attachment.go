package httpdto

// PresignUploadRequest is used for POST /v1/issues/:id/attachments
type PresignUploadRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required,gt=0"`
}

// PresignDownloadResponse is returned from GET /v1/attachments/:id/url
type PresignDownloadResponse struct {
	DownloadURL string `json:"download_url"`
}
