package invitation

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/uniedit/invite-server/internal/model"
)

// Mock implementations

type mockInvitationDB struct {
	mock.Mock
}

func (m *mockInvitationDB) Create(ctx context.Context, invitation *model.Invitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *mockInvitationDB) FindByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *mockInvitationDB) FindByToken(ctx context.Context, token string) (*model.Invitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *mockInvitationDB) FindPendingForUser(ctx context.Context, kind model.TargetKind, targetID, userID uuid.UUID) (*model.Invitation, error) {
	args := m.Called(ctx, kind, targetID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *mockInvitationDB) FindOpenForEmail(ctx context.Context, kind model.TargetKind, targetID uuid.UUID, email string) (*model.Invitation, error) {
	args := m.Called(ctx, kind, targetID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *mockInvitationDB) FindByTarget(ctx context.Context, kind model.TargetKind, targetID uuid.UUID, status *model.InvitationStatus, limit, offset int) ([]*model.Invitation, error) {
	args := m.Called(ctx, kind, targetID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Invitation), args.Error(1)
}

func (m *mockInvitationDB) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.InvitationStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

type mockMemberDB struct {
	mock.Mock
}

func (m *mockMemberDB) FindOrganizationMember(ctx context.Context, organizationID, userID uuid.UUID) (*model.OrganizationMember, error) {
	args := m.Called(ctx, organizationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrganizationMember), args.Error(1)
}

func (m *mockMemberDB) AddOrganizationMember(ctx context.Context, member *model.OrganizationMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *mockMemberDB) FindProjectMember(ctx context.Context, projectID, userID uuid.UUID) (*model.ProjectMember, error) {
	args := m.Called(ctx, projectID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProjectMember), args.Error(1)
}

func (m *mockMemberDB) AddProjectMember(ctx context.Context, member *model.ProjectMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

type mockTargetDB struct {
	mock.Mock
}

func (m *mockTargetDB) FindProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *mockTargetDB) FindOrganization(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

type mockUserDirectory struct {
	mock.Mock
}

func (m *mockUserDirectory) FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*model.User, error) {
	args := m.Called(ctx, usernameOrEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserDirectory) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type mockTransaction struct {
	mock.Mock
}

func (m *mockTransaction) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, job *model.NotificationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) RecordInvitationCreated(kind model.TargetKind, notified bool) {
	m.Called(kind, notified)
}

func (m *mockMetrics) RecordValidationFailure(reason string) {
	m.Called(reason)
}

func (m *mockMetrics) RecordInvitationAccepted(kind model.TargetKind) {
	m.Called(kind)
}

func (m *mockMetrics) RecordNotification(kind model.NotificationKind, status string) {
	m.Called(kind, status)
}

// Test helper

type testDeps struct {
	invitationDB *mockInvitationDB
	memberDB     *mockMemberDB
	targetDB     *mockTargetDB
	users        *mockUserDirectory
	dispatcher   *mockDispatcher
}

func setupDomain() (*Domain, *testDeps) {
	deps := &testDeps{
		invitationDB: new(mockInvitationDB),
		memberDB:     new(mockMemberDB),
		targetDB:     new(mockTargetDB),
		users:        new(mockUserDirectory),
		dispatcher:   new(mockDispatcher),
	}

	domain := NewDomain(
		deps.invitationDB,
		deps.memberDB,
		deps.targetDB,
		deps.users,
		new(mockTransaction),
		deps.dispatcher,
		nil,
		&Config{BaseURL: "https://app.example.com"},
		nil,
	)

	return domain, deps
}
