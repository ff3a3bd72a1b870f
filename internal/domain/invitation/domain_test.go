package invitation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/inbound"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

type fixture struct {
	org     *model.Organization
	project *model.Project
	inviter *model.User
	bob     *model.User
}

func newFixture() *fixture {
	org := &model.Organization{ID: uuid.New(), Permalink: "acme", Name: "Acme"}
	return &fixture{
		org:     org,
		project: &model.Project{ID: uuid.New(), OrganizationID: org.ID, Permalink: "launch-video", Name: "Launch Video"},
		inviter: &model.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", Name: "Alice"},
		bob:     &model.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com"},
	}
}

// expectProjectAdmin sets up the lookups that make user an admin of the fixture project.
func (f *fixture) expectProjectAdmin(deps *testDeps, user *model.User) {
	deps.targetDB.On("FindProject", mock.Anything, f.project.ID).Return(f.project, nil)
	deps.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	deps.memberDB.On("FindProjectMember", mock.Anything, f.project.ID, user.ID).
		Return(&model.ProjectMember{ProjectID: f.project.ID, UserID: user.ID, Role: model.ProjectRoleAdmin}, nil)
}

func projectInput(f *fixture, userOrEmail string) *inbound.CreateInvitationInput {
	return &inbound.CreateInvitationInput{
		TargetKind:  model.TargetKindProject,
		TargetID:    f.project.ID,
		UserOrEmail: userOrEmail,
	}
}

func TestDomain_CreateInvitation(t *testing.T) {
	t.Run("email_invitation", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()
		role := model.ProjectRoleParticipant

		f.expectProjectAdmin(deps, f.inviter)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "bob@example.com").Return(nil, nil)
		deps.invitationDB.On("FindOpenForEmail", mock.Anything, model.TargetKindProject, f.project.ID, "bob@example.com").Return(nil, nil)

		var created *model.Invitation
		deps.invitationDB.On("Create", mock.Anything, mock.AnythingOfType("*model.Invitation")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*model.Invitation) }).
			Return(nil)
		deps.dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(job *model.NotificationJob) bool {
			return job.Kind == model.NotificationSignupInvitation && job.Email == "bob@example.com"
		})).Return(nil).Once()

		input := projectInput(f, "bob@example.com")
		input.Role = &role
		out, err := domain.CreateInvitation(ctx, f.inviter.ID, input)
		require.NoError(t, err)

		require.NotNil(t, created)
		assert.Equal(t, "bob@example.com", created.Email)
		assert.Nil(t, created.InvitedUserID)
		assert.Regexp(t, hexToken, created.Token)
		assert.Equal(t, model.InvitationStatusPending, created.Status)
		assert.Equal(t, &role, created.Role)

		assert.Equal(t, created.ID, out.ID)
		assert.Equal(t, f.inviter.ID, out.UserID)
		assert.Equal(t, "bob@example.com", out.UserOrEmail)
		require.NotNil(t, out.Project)
		assert.Equal(t, "launch-video", out.Project.Permalink)
		assert.Equal(t, "Launch Video", out.Project.Name)
		deps.dispatcher.AssertExpectations(t)
	})

	t.Run("known_user_gets_email_backfilled", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()

		f.expectProjectAdmin(deps, f.inviter)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "bob").Return(f.bob, nil)
		deps.memberDB.On("FindProjectMember", mock.Anything, f.project.ID, f.bob.ID).Return(nil, nil)
		deps.invitationDB.On("FindPendingForUser", mock.Anything, model.TargetKindProject, f.project.ID, f.bob.ID).Return(nil, nil)

		var created *model.Invitation
		deps.invitationDB.On("Create", mock.Anything, mock.AnythingOfType("*model.Invitation")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*model.Invitation) }).
			Return(nil)
		deps.dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(job *model.NotificationJob) bool {
			return job.Kind == model.NotificationProjectInvitation &&
				job.Email == "bob@example.com" &&
				job.InviterName == "Alice" &&
				job.TargetName == "Launch Video" &&
				job.AcceptURL == "https://app.example.com/invitations/"+created.Token
		})).Return(nil).Once()

		out, err := domain.CreateInvitation(ctx, f.inviter.ID, projectInput(f, "bob"))
		require.NoError(t, err)

		require.NotNil(t, created.InvitedUserID)
		assert.Equal(t, f.bob.ID, *created.InvitedUserID)
		assert.Equal(t, "bob@example.com", created.Email)
		assert.Equal(t, "bob", out.UserOrEmail)
		deps.dispatcher.AssertExpectations(t)
	})

	t.Run("silent_skips_notification", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()

		f.expectProjectAdmin(deps, f.inviter)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "bob@example.com").Return(nil, nil)
		deps.invitationDB.On("FindOpenForEmail", mock.Anything, model.TargetKindProject, f.project.ID, "bob@example.com").Return(nil, nil)
		deps.invitationDB.On("Create", mock.Anything, mock.Anything).Return(nil)

		input := projectInput(f, "bob@example.com")
		input.Silent = true
		_, err := domain.CreateInvitation(ctx, f.inviter.ID, input)
		require.NoError(t, err)

		deps.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})

	t.Run("dispatch_failure_does_not_fail_creation", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()
		metrics := new(mockMetrics)
		domain.metrics = metrics

		f.expectProjectAdmin(deps, f.inviter)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "bob@example.com").Return(nil, nil)
		deps.invitationDB.On("FindOpenForEmail", mock.Anything, model.TargetKindProject, f.project.ID, "bob@example.com").Return(nil, nil)
		deps.invitationDB.On("Create", mock.Anything, mock.Anything).Return(nil)
		deps.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(errors.New("queue down"))
		metrics.On("RecordNotification", model.NotificationSignupInvitation, "dispatch_failed").Return().Once()
		metrics.On("RecordInvitationCreated", model.TargetKindProject, false).Return().Once()

		out, err := domain.CreateInvitation(ctx, f.inviter.ID, projectInput(f, "bob@example.com"))
		require.NoError(t, err)
		assert.NotNil(t, out)
		metrics.AssertExpectations(t)
	})

	t.Run("already_member", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()

		f.expectProjectAdmin(deps, f.inviter)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "bob").Return(f.bob, nil)
		deps.memberDB.On("FindProjectMember", mock.Anything, f.project.ID, f.bob.ID).
			Return(&model.ProjectMember{ProjectID: f.project.ID, UserID: f.bob.ID, Role: model.ProjectRoleMember}, nil)

		_, err := domain.CreateInvitation(ctx, f.inviter.ID, projectInput(f, "bob"))

		assert.ErrorIs(t, err, ErrAlreadyMember)
		deps.invitationDB.AssertNotCalled(t, "FindPendingForUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		deps.invitationDB.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate_pending_for_user", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()

		f.expectProjectAdmin(deps, f.inviter)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "bob").Return(f.bob, nil)
		deps.memberDB.On("FindProjectMember", mock.Anything, f.project.ID, f.bob.ID).Return(nil, nil)
		deps.invitationDB.On("FindPendingForUser", mock.Anything, model.TargetKindProject, f.project.ID, f.bob.ID).
			Return(&model.Invitation{ID: uuid.New(), Status: model.InvitationStatusPending}, nil)

		_, err := domain.CreateInvitation(ctx, f.inviter.ID, projectInput(f, "bob"))

		assert.ErrorIs(t, err, ErrDuplicateInvitation)
		deps.invitationDB.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("accepted_email_invitation_blocks_new_one", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()

		f.expectProjectAdmin(deps, f.inviter)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "carol@example.com").Return(nil, nil)
		deps.invitationDB.On("FindOpenForEmail", mock.Anything, model.TargetKindProject, f.project.ID, "carol@example.com").
			Return(&model.Invitation{ID: uuid.New(), Email: "carol@example.com", Status: model.InvitationStatusAccepted}, nil)

		_, err := domain.CreateInvitation(ctx, f.inviter.ID, projectInput(f, "carol@example.com"))

		var verr *ValidationErrors
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ErrDuplicateInvitation, verr.Result.UserOrEmail)
		deps.invitationDB.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate_rejected_by_storage", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()

		f.expectProjectAdmin(deps, f.inviter)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "bob").Return(f.bob, nil)
		deps.memberDB.On("FindProjectMember", mock.Anything, f.project.ID, f.bob.ID).Return(nil, nil)
		deps.invitationDB.On("FindPendingForUser", mock.Anything, model.TargetKindProject, f.project.ID, f.bob.ID).Return(nil, nil)
		deps.invitationDB.On("Create", mock.Anything, mock.Anything).Return(outbound.ErrDuplicate)

		_, err := domain.CreateInvitation(ctx, f.inviter.ID, projectInput(f, "bob"))

		var verr *ValidationErrors
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ErrDuplicateInvitation, verr.Result.UserOrEmail)
		deps.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})

	t.Run("non_admin_inviter", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()
		stranger := &model.User{ID: uuid.New(), Username: "mallory", Email: "mallory@example.com"}

		deps.targetDB.On("FindProject", mock.Anything, f.project.ID).Return(f.project, nil)
		deps.users.On("FindByID", mock.Anything, stranger.ID).Return(stranger, nil)
		deps.memberDB.On("FindProjectMember", mock.Anything, f.project.ID, stranger.ID).Return(nil, nil)
		deps.memberDB.On("FindOrganizationMember", mock.Anything, f.org.ID, stranger.ID).Return(nil, nil)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "bob@example.com").Return(nil, nil)
		deps.invitationDB.On("FindOpenForEmail", mock.Anything, model.TargetKindProject, f.project.ID, "bob@example.com").Return(nil, nil)

		_, err := domain.CreateInvitation(ctx, stranger.ID, projectInput(f, "bob@example.com"))

		var verr *ValidationErrors
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ErrUnauthorizedInviter, verr.Result.Inviter)
		assert.Nil(t, verr.Result.UserOrEmail)
		deps.invitationDB.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("organization_admin_may_invite_to_project", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()

		deps.targetDB.On("FindProject", mock.Anything, f.project.ID).Return(f.project, nil)
		deps.users.On("FindByID", mock.Anything, f.inviter.ID).Return(f.inviter, nil)
		deps.memberDB.On("FindProjectMember", mock.Anything, f.project.ID, f.inviter.ID).Return(nil, nil)
		deps.memberDB.On("FindOrganizationMember", mock.Anything, f.org.ID, f.inviter.ID).
			Return(&model.OrganizationMember{OrganizationID: f.org.ID, UserID: f.inviter.ID, Role: model.OrganizationRoleAdmin}, nil)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "bob@example.com").Return(nil, nil)
		deps.invitationDB.On("FindOpenForEmail", mock.Anything, model.TargetKindProject, f.project.ID, "bob@example.com").Return(nil, nil)
		deps.invitationDB.On("Create", mock.Anything, mock.Anything).Return(nil)
		deps.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

		_, err := domain.CreateInvitation(ctx, f.inviter.ID, projectInput(f, "bob@example.com"))
		assert.NoError(t, err)
	})

	t.Run("invalid_identifier", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()

		f.expectProjectAdmin(deps, f.inviter)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "nobody").Return(nil, nil)

		_, err := domain.CreateInvitation(ctx, f.inviter.ID, projectInput(f, "nobody"))

		assert.ErrorIs(t, err, ErrInvalidIdentifier)
		deps.invitationDB.AssertNotCalled(t, "FindOpenForEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing_target_stops_validation", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()

		deps.targetDB.On("FindProject", mock.Anything, f.project.ID).Return(nil, nil)
		deps.users.On("FindByUsernameOrEmail", mock.Anything, "bob@example.com").Return(nil, nil)

		_, err := domain.CreateInvitation(ctx, f.inviter.ID, projectInput(f, "bob@example.com"))

		var verr *ValidationErrors
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ErrMissingTarget, verr.Result.Target)
		assert.Nil(t, verr.Result.Inviter)
		assert.Nil(t, verr.Result.UserOrEmail)
		deps.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("invalid_target_kind", func(t *testing.T) {
		domain, _ := setupDomain()

		_, err := domain.CreateInvitation(context.Background(), uuid.New(), &inbound.CreateInvitationInput{
			TargetKind:  "team",
			TargetID:    uuid.New(),
			UserOrEmail: "bob@example.com",
		})
		assert.ErrorIs(t, err, ErrInvalidTargetKind)
	})

	t.Run("invalid_role", func(t *testing.T) {
		domain, _ := setupDomain()
		f := newFixture()
		role := model.ProjectRole(9)

		input := projectInput(f, "bob@example.com")
		input.Role = &role
		_, err := domain.CreateInvitation(context.Background(), f.inviter.ID, input)
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestDomain_AcceptInvitation(t *testing.T) {
	pendingFor := func(f *fixture) *model.Invitation {
		bobID := f.bob.ID
		return &model.Invitation{
			ID:            uuid.New(),
			InviterID:     f.inviter.ID,
			InvitedUserID: &bobID,
			Email:         f.bob.Email,
			TargetKind:    model.TargetKindProject,
			TargetID:      f.project.ID,
			Token:         "0123456789abcdef0123456789abcdef01234567",
			Status:        model.InvitationStatusPending,
		}
	}

	t.Run("success", func(t *testing.T) {
		domain, deps := setupDomain()
		ctx := context.Background()
		f := newFixture()
		inv := pendingFor(f)

		deps.invitationDB.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		deps.users.On("FindByID", mock.Anything, f.bob.ID).Return(f.bob, nil)
		deps.targetDB.On("FindProject", mock.Anything, f.project.ID).Return(f.project, nil)
		deps.invitationDB.On("TransitionStatus", mock.Anything, inv.ID, model.InvitationStatusPending, model.InvitationStatusAccepted).Return(true, nil).Once()
		deps.memberDB.On("FindOrganizationMember", mock.Anything, f.org.ID, f.bob.ID).Return(nil, nil)
		deps.memberDB.On("AddOrganizationMember", mock.Anything, mock.Anything).Return(nil).Once()
		deps.memberDB.On("FindProjectMember", mock.Anything, f.project.ID, f.bob.ID).Return(nil, nil)
		deps.memberDB.On("AddProjectMember", mock.Anything, mock.Anything).Return(nil).Once()

		out, err := domain.AcceptInvitation(ctx, inv.ID, f.bob.ID)
		require.NoError(t, err)

		assert.Equal(t, model.InvitationStatusAccepted, out.Invitation.Status)
		assert.NotNil(t, out.Invitation.AcceptedAt)
		require.NotNil(t, out.ProjectMember)
		assert.Equal(t, model.DefaultProjectRole, out.ProjectMember.Role)
		require.NotNil(t, out.OrganizationMember)
		assert.Equal(t, f.org.ID, out.OrganizationMember.OrganizationID)
		deps.memberDB.AssertExpectations(t)
	})

	t.Run("already_accepted", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()
		inv := pendingFor(f)
		inv.Status = model.InvitationStatusAccepted

		deps.invitationDB.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		deps.users.On("FindByID", mock.Anything, f.bob.ID).Return(f.bob, nil)

		_, err := domain.AcceptInvitation(context.Background(), inv.ID, f.bob.ID)

		assert.ErrorIs(t, err, ErrInvitationNotPending)
		deps.memberDB.AssertNotCalled(t, "AddProjectMember", mock.Anything, mock.Anything)
	})

	t.Run("concurrent_acceptance_loses", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()
		inv := pendingFor(f)

		deps.invitationDB.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		deps.users.On("FindByID", mock.Anything, f.bob.ID).Return(f.bob, nil)
		deps.targetDB.On("FindProject", mock.Anything, f.project.ID).Return(f.project, nil)
		deps.invitationDB.On("TransitionStatus", mock.Anything, inv.ID, model.InvitationStatusPending, model.InvitationStatusAccepted).Return(false, nil)

		_, err := domain.AcceptInvitation(context.Background(), inv.ID, f.bob.ID)

		assert.ErrorIs(t, err, ErrInvitationNotPending)
		deps.memberDB.AssertNotCalled(t, "AddOrganizationMember", mock.Anything, mock.Anything)
	})

	t.Run("other_user", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()
		inv := pendingFor(f)
		carol := &model.User{ID: uuid.New(), Username: "carol", Email: "carol@example.com"}

		deps.invitationDB.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		deps.users.On("FindByID", mock.Anything, carol.ID).Return(carol, nil)

		_, err := domain.AcceptInvitation(context.Background(), inv.ID, carol.ID)
		assert.ErrorIs(t, err, ErrInvitationNotForYou)
	})

	t.Run("email_invitation_matches_account_email", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()
		inv := &model.Invitation{
			ID:         uuid.New(),
			InviterID:  f.inviter.ID,
			Email:      "Bob@Example.com",
			TargetKind: model.TargetKindOrganization,
			TargetID:   f.org.ID,
			Status:     model.InvitationStatusPending,
		}

		deps.invitationDB.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		deps.users.On("FindByID", mock.Anything, f.bob.ID).Return(f.bob, nil)
		deps.targetDB.On("FindOrganization", mock.Anything, f.org.ID).Return(f.org, nil)
		deps.invitationDB.On("TransitionStatus", mock.Anything, inv.ID, model.InvitationStatusPending, model.InvitationStatusAccepted).Return(true, nil)
		deps.memberDB.On("FindOrganizationMember", mock.Anything, f.org.ID, f.bob.ID).Return(nil, nil)
		deps.memberDB.On("AddOrganizationMember", mock.Anything, mock.Anything).Return(nil)

		out, err := domain.AcceptInvitation(context.Background(), inv.ID, f.bob.ID)
		require.NoError(t, err)

		assert.NotNil(t, out.OrganizationMember)
		assert.Nil(t, out.ProjectMember)
		require.NotNil(t, out.Invitation.Organization)
		assert.Equal(t, "acme", out.Invitation.Organization.Permalink)
	})

	t.Run("deleted_user", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()
		inv := pendingFor(f)
		now := f.bob.CreatedAt
		f.bob.DeletedAt = &now

		deps.invitationDB.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		deps.users.On("FindByID", mock.Anything, f.bob.ID).Return(f.bob, nil)

		_, err := domain.AcceptInvitation(context.Background(), inv.ID, f.bob.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("not_found", func(t *testing.T) {
		domain, deps := setupDomain()
		id := uuid.New()

		deps.invitationDB.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := domain.AcceptInvitation(context.Background(), id, uuid.New())
		assert.ErrorIs(t, err, ErrInvitationNotFound)
	})

	t.Run("target_removed", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()
		inv := pendingFor(f)

		deps.invitationDB.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		deps.users.On("FindByID", mock.Anything, f.bob.ID).Return(f.bob, nil)
		deps.targetDB.On("FindProject", mock.Anything, f.project.ID).Return(nil, nil)

		_, err := domain.AcceptInvitation(context.Background(), inv.ID, f.bob.ID)
		assert.ErrorIs(t, err, ErrTargetNotFound)
	})
}

func TestDomain_AcceptInvitationByToken(t *testing.T) {
	t.Run("known_user_invitation_rejects_other_token_holder", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()
		bobID := f.bob.ID
		inv := &model.Invitation{ID: uuid.New(), InvitedUserID: &bobID, Token: "tok", Status: model.InvitationStatusPending}
		carol := &model.User{ID: uuid.New(), Username: "carol", Email: "carol@example.com"}

		deps.invitationDB.On("FindByToken", mock.Anything, "tok").Return(inv, nil)
		deps.users.On("FindByID", mock.Anything, carol.ID).Return(carol, nil)

		_, err := domain.AcceptInvitationByToken(context.Background(), "tok", carol.ID)
		assert.ErrorIs(t, err, ErrInvitationNotForYou)
	})

	t.Run("unknown_token", func(t *testing.T) {
		domain, deps := setupDomain()

		deps.invitationDB.On("FindByToken", mock.Anything, "missing").Return(nil, nil)

		_, err := domain.AcceptInvitationByToken(context.Background(), "missing", uuid.New())
		assert.ErrorIs(t, err, ErrInvitationNotFound)
	})

	t.Run("blank_token", func(t *testing.T) {
		domain, deps := setupDomain()

		_, err := domain.AcceptInvitationByToken(context.Background(), " ", uuid.New())
		assert.ErrorIs(t, err, ErrInvitationNotFound)
		deps.invitationDB.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
	})
}

// Inviter A, admin of project P in organization O, invites bob@example.com
// with role 2. Bob registers later and accepts with the emailed token.
func TestDomain_EmailInvitationScenario(t *testing.T) {
	domain, deps := setupDomain()
	ctx := context.Background()
	f := newFixture()
	role := model.ProjectRoleParticipant

	f.expectProjectAdmin(deps, f.inviter)
	deps.users.On("FindByUsernameOrEmail", mock.Anything, "bob@example.com").Return(nil, nil)
	deps.invitationDB.On("FindOpenForEmail", mock.Anything, model.TargetKindProject, f.project.ID, "bob@example.com").Return(nil, nil)

	var created *model.Invitation
	deps.invitationDB.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.Invitation) }).
		Return(nil)
	deps.dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(job *model.NotificationJob) bool {
		return job.Kind == model.NotificationSignupInvitation
	})).Return(nil).Once()

	input := projectInput(f, "bob@example.com")
	input.Role = &role
	_, err := domain.CreateInvitation(ctx, f.inviter.ID, input)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "bob@example.com", created.Email)
	assert.Nil(t, created.InvitedUserID)
	assert.Regexp(t, hexToken, created.Token)
	deps.dispatcher.AssertNumberOfCalls(t, "Dispatch", 1)

	// Bob signs up.
	deps.invitationDB.On("FindByToken", mock.Anything, created.Token).Return(created, nil)
	deps.users.On("FindByID", mock.Anything, f.bob.ID).Return(f.bob, nil)
	deps.invitationDB.On("TransitionStatus", mock.Anything, created.ID, model.InvitationStatusPending, model.InvitationStatusAccepted).Return(true, nil)
	deps.memberDB.On("FindOrganizationMember", mock.Anything, f.org.ID, f.bob.ID).Return(nil, nil)
	deps.memberDB.On("AddOrganizationMember", mock.Anything, mock.MatchedBy(func(m *model.OrganizationMember) bool {
		return m.OrganizationID == f.org.ID && m.UserID == f.bob.ID
	})).Return(nil).Once()
	deps.memberDB.On("FindProjectMember", mock.Anything, f.project.ID, f.bob.ID).Return(nil, nil)
	deps.memberDB.On("AddProjectMember", mock.Anything, mock.MatchedBy(func(m *model.ProjectMember) bool {
		return m.ProjectID == f.project.ID && m.UserID == f.bob.ID && m.Role == model.ProjectRoleParticipant
	})).Return(nil).Once()

	out, err := domain.AcceptInvitationByToken(ctx, created.Token, f.bob.ID)
	require.NoError(t, err)

	assert.Equal(t, model.ProjectRoleParticipant, out.ProjectMember.Role)
	assert.Equal(t, f.inviter.ID, *out.ProjectMember.SourceUserID)
	deps.memberDB.AssertExpectations(t)
}

func TestDomain_ListInvitations(t *testing.T) {
	t.Run("admin_lists", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()
		invitations := []*model.Invitation{
			{ID: uuid.New(), InviterID: f.inviter.ID, Email: "a@example.com", Status: model.InvitationStatusPending},
			{ID: uuid.New(), InviterID: f.inviter.ID, Email: "b@example.com", Status: model.InvitationStatusPending},
		}
		status := model.InvitationStatusPending

		f.expectProjectAdmin(deps, f.inviter)
		deps.invitationDB.On("FindByTarget", mock.Anything, model.TargetKindProject, f.project.ID, &status, 100, 0).Return(invitations, nil)

		page, err := domain.ListInvitations(context.Background(), model.TargetKindProject, f.project.ID, f.inviter.ID, &status, 500, -1)
		require.NoError(t, err)

		require.Len(t, page.Items, 2)
		assert.Equal(t, "launch-video", page.Items[0].Project.Permalink)
		assert.Equal(t, 100, page.Limit)
		assert.Equal(t, 0, page.Offset)
	})

	t.Run("default_page_size", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()

		f.expectProjectAdmin(deps, f.inviter)
		deps.invitationDB.On("FindByTarget", mock.Anything, model.TargetKindProject, f.project.ID, (*model.InvitationStatus)(nil), 20, 0).
			Return([]*model.Invitation{}, nil)

		page, err := domain.ListInvitations(context.Background(), model.TargetKindProject, f.project.ID, f.inviter.ID, nil, 0, 0)
		require.NoError(t, err)

		assert.Empty(t, page.Items)
		assert.Equal(t, 20, page.Limit)
	})

	t.Run("non_admin_forbidden", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()

		deps.targetDB.On("FindOrganization", mock.Anything, f.org.ID).Return(f.org, nil)
		deps.memberDB.On("FindOrganizationMember", mock.Anything, f.org.ID, f.bob.ID).
			Return(&model.OrganizationMember{OrganizationID: f.org.ID, UserID: f.bob.ID, Role: model.OrganizationRoleParticipant}, nil)

		_, err := domain.ListInvitations(context.Background(), model.TargetKindOrganization, f.org.ID, f.bob.ID, nil, 0, 0)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown_target", func(t *testing.T) {
		domain, deps := setupDomain()
		id := uuid.New()

		deps.targetDB.On("FindProject", mock.Anything, id).Return(nil, nil)

		_, err := domain.ListInvitations(context.Background(), model.TargetKindProject, id, uuid.New(), nil, 0, 0)
		assert.ErrorIs(t, err, ErrTargetNotFound)
	})
}

func TestDomain_RevokeInvitation(t *testing.T) {
	t.Run("inviter_revokes", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()
		inv := &model.Invitation{ID: uuid.New(), InviterID: f.inviter.ID, TargetKind: model.TargetKindOrganization, TargetID: f.org.ID, Status: model.InvitationStatusPending}

		deps.invitationDB.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		deps.targetDB.On("FindOrganization", mock.Anything, f.org.ID).Return(f.org, nil)
		deps.memberDB.On("FindOrganizationMember", mock.Anything, f.org.ID, f.inviter.ID).Return(nil, nil)
		deps.invitationDB.On("TransitionStatus", mock.Anything, inv.ID, model.InvitationStatusPending, model.InvitationStatusRevoked).Return(true, nil).Once()

		require.NoError(t, domain.RevokeInvitation(context.Background(), inv.ID, f.inviter.ID))
		deps.invitationDB.AssertExpectations(t)
	})

	t.Run("unrelated_user_forbidden", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()
		inv := &model.Invitation{ID: uuid.New(), InviterID: f.inviter.ID, TargetKind: model.TargetKindOrganization, TargetID: f.org.ID, Status: model.InvitationStatusPending}

		deps.invitationDB.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		deps.targetDB.On("FindOrganization", mock.Anything, f.org.ID).Return(f.org, nil)
		deps.memberDB.On("FindOrganizationMember", mock.Anything, f.org.ID, f.bob.ID).Return(nil, nil)

		err := domain.RevokeInvitation(context.Background(), inv.ID, f.bob.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("accepted_cannot_be_revoked", func(t *testing.T) {
		domain, deps := setupDomain()
		f := newFixture()
		inv := &model.Invitation{ID: uuid.New(), InviterID: f.inviter.ID, TargetKind: model.TargetKindOrganization, TargetID: f.org.ID, Status: model.InvitationStatusAccepted}

		deps.invitationDB.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		deps.targetDB.On("FindOrganization", mock.Anything, f.org.ID).Return(f.org, nil)
		deps.memberDB.On("FindOrganizationMember", mock.Anything, f.org.ID, f.inviter.ID).Return(nil, nil)

		err := domain.RevokeInvitation(context.Background(), inv.ID, f.inviter.ID)
		assert.ErrorIs(t, err, ErrInvitationNotPending)
	})
}

func TestDomain_CanEdit(t *testing.T) {
	domain, deps := setupDomain()
	ctx := context.Background()
	f := newFixture()
	bobID := f.bob.ID
	inv := &model.Invitation{ID: uuid.New(), InviterID: f.inviter.ID, InvitedUserID: &bobID, TargetKind: model.TargetKindProject, TargetID: f.project.ID}
	admin := &model.User{ID: uuid.New(), Username: "root", Email: "root@example.com"}
	stranger := uuid.New()

	deps.invitationDB.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	deps.targetDB.On("FindProject", mock.Anything, f.project.ID).Return(f.project, nil)
	deps.memberDB.On("FindProjectMember", mock.Anything, f.project.ID, admin.ID).
		Return(&model.ProjectMember{ProjectID: f.project.ID, UserID: admin.ID, Role: model.ProjectRoleAdmin}, nil)
	for _, id := range []uuid.UUID{f.inviter.ID, f.bob.ID, stranger} {
		deps.memberDB.On("FindProjectMember", mock.Anything, f.project.ID, id).Return(nil, nil)
		deps.memberDB.On("FindOrganizationMember", mock.Anything, f.org.ID, id).Return(nil, nil)
	}

	tests := []struct {
		name   string
		userID uuid.UUID
		want   bool
	}{
		{"target_admin", admin.ID, true},
		{"inviter", f.inviter.ID, true},
		{"invited_user", f.bob.ID, true},
		{"unrelated_user", stranger, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := domain.CanEdit(ctx, inv.ID, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}
