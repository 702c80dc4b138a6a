package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasksphere/internal/domain/attachment"
	"tasksphere/internal/domain/user"
	"tasksphere/internal/repository"
	"tasksphere/internal/storage"
	tasksphere_errors "tasksphere/pkg/errors"
)

const maxAttachmentBytes = 25 << 20

type AttachmentService struct {
	attachments repository.AttachmentRepository
	issues      repository.IssueRepository
	store       *storage.Client
	logger      *zap.Logger
}

func NewAttachmentService(
	attachments repository.AttachmentRepository,
	issues repository.IssueRepository,
	store *storage.Client,
) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		issues:      issues,
		store:       store,
		logger:      zap.L().With(zap.String("component", "attachment_service")),
	}
}

type PresignUploadInput struct {
	IssueID     int64
	FileName    string
	ContentType string
	SizeBytes   int64
}

type PresignUploadResult struct {
	AttachmentID int64             `json:"attachment_id"`
	UploadURL    string            `json:"upload_url"`
	Headers      map[string]string `json:"headers"`
	StorageKey   string            `json:"storage_key"`
}

type AttachmentView struct {
	ID          int64     `json:"id"`
	IssueID     int64     `json:"issue_id"`
	UploaderID  int64     `json:"uploader_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// PresignUpload reserves an attachment row and hands back a time-limited
// PUT URL. The object key is random so uploads cannot collide or guess
// each other's names.
func (s *AttachmentService) PresignUpload(ctx context.Context, actor user.User, in PresignUploadInput) (PresignUploadResult, error) {
	if in.FileName == "" || in.ContentType == "" || in.SizeBytes <= 0 {
		return PresignUploadResult{}, tasksphere_errors.ErrInvalidInput
	}
	if in.SizeBytes > maxAttachmentBytes {
		return PresignUploadResult{}, tasksphere_errors.ErrTooLarge
	}
	i, err := s.issues.GetByID(ctx, in.IssueID)
	if err != nil {
		return PresignUploadResult{}, err
	}

	key := fmt.Sprintf("attachments/%d/%s%s", i.ID, uuid.New().String(), path.Ext(in.FileName))

	url, headers, err := s.store.PresignPut(ctx, key, in.ContentType, in.SizeBytes)
	if err != nil {
		return PresignUploadResult{}, err
	}

	a := attachment.Attachment{
		IssueID:     i.ID,
		UploaderID:  actor.ID,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
		StorageKey:  key,
	}
	if err := s.attachments.Create(ctx, &a); err != nil {
		return PresignUploadResult{}, err
	}

	s.logger.Info("upload presigned",
		zap.Int64("attachment_id", a.ID),
		zap.Int64("issue_id", i.ID),
		zap.Int64("size_bytes", in.SizeBytes))

	return PresignUploadResult{
		AttachmentID: a.ID,
		UploadURL:    url,
		Headers:      headers,
		StorageKey:   key,
	}, nil
}

// PresignDownload returns a time-limited GET URL for a stored attachment.
func (s *AttachmentService) PresignDownload(ctx context.Context, id int64) (string, error) {
	a, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, a.StorageKey)
}

func (s *AttachmentService) ListByIssue(ctx context.Context, issueID int64) ([]AttachmentView, error) {
	attachments, err := s.attachments.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	views := make([]AttachmentView, 0, len(attachments))
	for _, a := range attachments {
		views = append(views, AttachmentView{
			ID:          a.ID,
			IssueID:     a.IssueID,
			UploaderID:  a.UploaderID,
			FileName:    a.FileName,
			ContentType: a.ContentType,
			SizeBytes:   a.SizeBytes,
			CreatedAt:   a.CreatedAt,
		})
	}
	return views, nil
}
