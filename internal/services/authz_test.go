package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"tasksphere/internal/domain/issue"
	"tasksphere/internal/domain/project"
	"tasksphere/internal/domain/sprint"
	"tasksphere/internal/domain/user"
	"tasksphere/internal/repository"
	tasksphere_errors "tasksphere/pkg/errors"
)

type fakeProjectRepo struct {
	projects map[int64]project.Project
}

func (f *fakeProjectRepo) Create(_ context.Context, _ repository.DBTX, p *project.Project) error {
	f.projects[p.ID] = *p
	return nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id int64) (project.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return project.Project{}, tasksphere_errors.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjectRepo) List(context.Context) ([]project.Project, error) { return nil, nil }

func (f *fakeProjectRepo) Delete(_ context.Context, _ repository.DBTX, id int64) error {
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectRepo) IsOwner(_ context.Context, projectID, userID int64) (bool, error) {
	p, ok := f.projects[projectID]
	if !ok {
		return false, tasksphere_errors.ErrNotFound
	}
	return p.OwnerID == userID, nil
}

type fakeIssueRepo struct {
	issues map[int64]issue.Issue
}

func (f *fakeIssueRepo) Create(_ context.Context, _ repository.DBTX, i *issue.Issue) error {
	f.issues[i.ID] = *i
	return nil
}

func (f *fakeIssueRepo) GetByID(_ context.Context, id int64) (issue.Issue, error) {
	i, ok := f.issues[id]
	if !ok {
		return issue.Issue{}, tasksphere_errors.ErrNotFound
	}
	return i, nil
}

func (f *fakeIssueRepo) ListByProject(context.Context, int64, string) ([]issue.Issue, error) {
	return nil, nil
}

func (f *fakeIssueRepo) Update(_ context.Context, _ repository.DBTX, i issue.Issue) error {
	f.issues[i.ID] = i
	return nil
}

type fakeSprintRepo struct {
	sprints map[int64]sprint.Sprint
}

func (f *fakeSprintRepo) Create(_ context.Context, _ repository.DBTX, s *sprint.Sprint) error {
	f.sprints[s.ID] = *s
	return nil
}

func (f *fakeSprintRepo) GetByID(_ context.Context, id int64) (sprint.Sprint, error) {
	s, ok := f.sprints[id]
	if !ok {
		return sprint.Sprint{}, tasksphere_errors.ErrNotFound
	}
	return s, nil
}

func (f *fakeSprintRepo) GetActive(_ context.Context, projectID int64) (sprint.Sprint, error) {
	for _, s := range f.sprints {
		if s.ProjectID == projectID && s.State == sprint.StateActive {
			return s, nil
		}
	}
	return sprint.Sprint{}, tasksphere_errors.ErrNoActiveSprint
}

func (f *fakeSprintRepo) SetState(_ context.Context, _ repository.DBTX, id int64, state string) error {
	s := f.sprints[id]
	s.State = state
	f.sprints[id] = s
	return nil
}

func newTestAuthz() *AuthzService {
	projects := &fakeProjectRepo{projects: map[int64]project.Project{
		7: {ID: 7, Key: "CORE", OwnerID: 1},
	}}
	issues := &fakeIssueRepo{issues: map[int64]issue.Issue{
		42: {ID: 42, ProjectID: 7},
	}}
	sprints := &fakeSprintRepo{sprints: map[int64]sprint.Sprint{
		3: {ID: 3, ProjectID: 7, State: sprint.StateActive},
	}}
	return NewAuthzService(projects, issues, sprints)
}

func TestCanSubscribeOwnership(t *testing.T) {
	authz := newTestAuthz()
	ctx := context.Background()

	assert.True(t, authz.CanSubscribe(ctx, 1, user.RoleMember, "project.7"), "owner")
	assert.False(t, authz.CanSubscribe(ctx, 2, user.RoleMember, "project.7"), "non-owner")
	assert.True(t, authz.CanSubscribe(ctx, 2, user.RoleAdmin, "project.7"), "admin")
}

func TestCanSubscribeResolvesScopedChannels(t *testing.T) {
	authz := newTestAuthz()
	ctx := context.Background()

	assert.True(t, authz.CanSubscribe(ctx, 1, user.RoleMember, "issue.42"),
		"issue inherits its project's policy")
	assert.False(t, authz.CanSubscribe(ctx, 2, user.RoleMember, "issue.42"))
	assert.True(t, authz.CanSubscribe(ctx, 1, user.RoleMember, "sprint.3"))
	assert.False(t, authz.CanSubscribe(ctx, 2, user.RoleMember, "sprint.3"))
}

func TestCanSubscribeWildcardIsAdminOnly(t *testing.T) {
	authz := newTestAuthz()
	ctx := context.Background()

	assert.True(t, authz.CanSubscribe(ctx, 2, user.RoleAdmin, "project.*"))
	assert.False(t, authz.CanSubscribe(ctx, 1, user.RoleMember, "project.*"),
		"owner of one project cannot watch all projects")
}

func TestCanSubscribeRejectsMalformedChannels(t *testing.T) {
	authz := newTestAuthz()
	ctx := context.Background()

	assert.False(t, authz.CanSubscribe(ctx, 1, user.RoleAdmin, "project"))
	assert.False(t, authz.CanSubscribe(ctx, 1, user.RoleAdmin, "project.notanumber"))
	assert.False(t, authz.CanSubscribe(ctx, 1, user.RoleAdmin, "widget.7"))
	assert.False(t, authz.CanSubscribe(ctx, 1, user.RoleAdmin, "project.999"), "missing target")
}

func TestCanManageProject(t *testing.T) {
	authz := newTestAuthz()
	ctx := context.Background()

	owner := user.User{ID: 1, Role: user.RoleMember}
	member := user.User{ID: 2, Role: user.RoleMember}
	admin := user.User{ID: 3, Role: user.RoleAdmin}

	assert.True(t, authz.CanManageProject(ctx, owner, 7))
	assert.False(t, authz.CanManageProject(ctx, member, 7))
	assert.True(t, authz.CanManageProject(ctx, admin, 7))
}
