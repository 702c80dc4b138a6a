package services

import (
	"context"

	"go.uber.org/zap"

	"tasksphere/internal/events"
	"tasksphere/internal/repository"
)

// OutboxService is the only way events enter the pipeline. Every Publish
// runs against the caller's transaction, so an envelope commits or rolls
// back together with the business write that produced it.
type OutboxService struct {
	repo   repository.OutboxRepository
	logger *zap.Logger
}

func NewOutboxService(repo repository.OutboxRepository) *OutboxService {
	return &OutboxService{
		repo:   repo,
		logger: zap.L().With(zap.String("component", "outbox")),
	}
}

// Publish appends one envelope on the given channel within tx.
func (s *OutboxService) Publish(ctx context.Context, tx repository.DBTX, eventType, channel, payload string) (string, error) {
	eventID, err := s.repo.Append(ctx, tx, eventType, channel, payload)
	if err != nil {
		return "", err
	}
	s.logger.Debug("event staged",
		zap.String("event_id", eventID),
		zap.String("type", eventType),
		zap.String("channel", channel))
	return eventID, nil
}

// PublishProjectEvent targets the project stream.
func (s *OutboxService) PublishProjectEvent(ctx context.Context, tx repository.DBTX, projectID int64, eventType, payload string) error {
	_, err := s.Publish(ctx, tx, eventType, events.ProjectChannel(projectID), payload)
	return err
}

// PublishIssueEvent fans out to both the project and issue streams. Each
// target gets its own envelope with a distinct event id.
func (s *OutboxService) PublishIssueEvent(ctx context.Context, tx repository.DBTX, projectID, issueID int64, eventType, payload string) error {
	if _, err := s.Publish(ctx, tx, eventType, events.ProjectChannel(projectID), payload); err != nil {
		return err
	}
	_, err := s.Publish(ctx, tx, eventType, events.IssueChannel(issueID), payload)
	return err
}

// PublishSprintEvent fans out to both the project and sprint streams.
func (s *OutboxService) PublishSprintEvent(ctx context.Context, tx repository.DBTX, projectID, sprintID int64, eventType, payload string) error {
	if _, err := s.Publish(ctx, tx, eventType, events.ProjectChannel(projectID), payload); err != nil {
		return err
	}
	_, err := s.Publish(ctx, tx, eventType, events.SprintChannel(sprintID), payload)
	return err
}
