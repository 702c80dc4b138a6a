package attachment

import "time"

// Attachment represents the attachments table. The object itself lives in
// S3; rows only track the key and upload metadata.
type Attachment struct {
	ID          int64
	IssueID     int64
	UploaderID  int64
	FileName    string
	ContentType string
	SizeBytes   int64
	StorageKey  string
	CreatedAt   time.Time
}
