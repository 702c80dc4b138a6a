package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tasksphere/internal/domain/user"
	"tasksphere/internal/repository"
)

// AuthzService is the authorization oracle shared by the REST guards and
// the websocket SUBSCRIBE check. The policy is ownership-based: a project
// and everything scoped under it (issues, sprints) is visible to its owner
// and to admins.
type AuthzService struct {
	projects repository.ProjectRepository
	issues   repository.IssueRepository
	sprints  repository.SprintRepository
	logger   *zap.Logger
}

func NewAuthzService(projects repository.ProjectRepository, issues repository.IssueRepository, sprints repository.SprintRepository) *AuthzService {
	return &AuthzService{
		projects: projects,
		issues:   issues,
		sprints:  sprints,
		logger:   zap.L().With(zap.String("component", "authz")),
	}
}

// CanManageProject reports whether the user may mutate a project.
func (s *AuthzService) CanManageProject(ctx context.Context, u user.User, projectID int64) bool {
	if u.IsAdmin() {
		return true
	}
	owner, err := s.projects.IsOwner(ctx, projectID, u.ID)
	if err != nil {
		return false
	}
	return owner
}

// CanSubscribe decides whether a principal may subscribe to a channel like
// "project.7", "issue.42" or "sprint.3". Wildcard segments are reserved
// for admins: a member cannot watch every project at once.
func (s *AuthzService) CanSubscribe(ctx context.Context, userID int64, role, channel string) bool {
	kind, idPart, ok := strings.Cut(channel, ".")
	if !ok {
		return false
	}
	if strings.Contains(channel, "*") {
		return role == user.RoleAdmin
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return false
	}

	projectID, err := s.resolveProjectID(ctx, kind, id)
	if err != nil {
		s.logger.Debug("subscription target not found",
			zap.String("channel", channel),
			zap.Error(err))
		return false
	}
	if role == user.RoleAdmin {
		return true
	}
	owner, err := s.projects.IsOwner(ctx, projectID, userID)
	if err != nil {
		return false
	}
	return owner
}

func (s *AuthzService) resolveProjectID(ctx context.Context, kind string, id int64) (int64, error) {
	switch kind {
	case "project":
		p, err := s.projects.GetByID(ctx, id)
		return p.ID, err
	case "issue":
		i, err := s.issues.GetByID(ctx, id)
		return i.ProjectID, err
	case "sprint":
		sp, err := s.sprints.GetByID(ctx, id)
		return sp.ProjectID, err
	}
	return 0, ErrUnknownChannelKind
}

// ErrUnknownChannelKind marks a channel whose first segment is not a
// tracker aggregate.
var ErrUnknownChannelKind = errors.New("unknown channel kind")
