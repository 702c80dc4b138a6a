package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"tasksphere/internal/domain/attachment"
	tasksphere_errors "tasksphere/pkg/errors"
)

type attachmentRepository struct {
	db DBTX
}

func NewAttachmentRepository(db DBTX) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, a *attachment.Attachment) error {
	return r.db.QueryRow(ctx, `
        INSERT INTO attachments (issue_id, uploader_id, file_name, content_type, size_bytes, storage_key)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `, a.IssueID, a.UploaderID, a.FileName, a.ContentType, a.SizeBytes, a.StorageKey).Scan(&a.ID, &a.CreatedAt)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id int64) (attachment.Attachment, error) {
	var a attachment.Attachment
	err := r.db.QueryRow(ctx, `
        SELECT id, issue_id, uploader_id, file_name, content_type, size_bytes, storage_key, created_at
        FROM attachments
        WHERE id = $1
    `, id).Scan(&a.ID, &a.IssueID, &a.UploaderID, &a.FileName, &a.ContentType, &a.SizeBytes, &a.StorageKey, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return attachment.Attachment{}, tasksphere_errors.ErrNotFound
	}
	return a, err
}

func (r *attachmentRepository) ListByIssue(ctx context.Context, issueID int64) ([]attachment.Attachment, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, issue_id, uploader_id, file_name, content_type, size_bytes, storage_key, created_at
        FROM attachments
        WHERE issue_id = $1
        ORDER BY created_at ASC
    `, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []attachment.Attachment
	for rows.Next() {
		var a attachment.Attachment
		if err := rows.Scan(&a.ID, &a.IssueID, &a.UploaderID, &a.FileName, &a.ContentType, &a.SizeBytes, &a.StorageKey, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}
