package outbound

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/uniedit/invite-server/internal/model"
)

// ErrDuplicate is returned by storage adapters when a uniqueness constraint rejects a write.
var ErrDuplicate = errors.New("duplicate record")

// InvitationDatabasePort defines invitation persistence operations.
type InvitationDatabasePort interface {
	// Create persists a new invitation. Returns ErrDuplicate when a pending
	// invitation for the same target and invitee already exists.
	Create(ctx context.Context, invitation *model.Invitation) error

	// FindByID retrieves an invitation by ID. Returns nil, nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error)

	// FindByToken retrieves an invitation by token. Returns nil, nil when absent.
	FindByToken(ctx context.Context, token string) (*model.Invitation, error)

	// FindPendingForUser retrieves the pending invitation of a known user to a target.
	FindPendingForUser(ctx context.Context, kind model.TargetKind, targetID, userID uuid.UUID) (*model.Invitation, error)

	// FindOpenForEmail retrieves the pending or accepted invitation of an email address to a target.
	FindOpenForEmail(ctx context.Context, kind model.TargetKind, targetID uuid.UUID, email string) (*model.Invitation, error)

	// FindByTarget lists invitations for a target.
	FindByTarget(ctx context.Context, kind model.TargetKind, targetID uuid.UUID, status *model.InvitationStatus, limit, offset int) ([]*model.Invitation, error)

	// TransitionStatus moves an invitation from one status to another.
	// Returns false when the invitation was not in the expected status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.InvitationStatus) (bool, error)
}

// MembershipDatabasePort defines group membership persistence operations.
type MembershipDatabasePort interface {
	// FindOrganizationMember returns nil, nil when the user is not a member.
	FindOrganizationMember(ctx context.Context, organizationID, userID uuid.UUID) (*model.OrganizationMember, error)

	// AddOrganizationMember inserts a membership, ignoring an existing one.
	AddOrganizationMember(ctx context.Context, member *model.OrganizationMember) error

	// FindProjectMember returns nil, nil when the user is not a member.
	FindProjectMember(ctx context.Context, projectID, userID uuid.UUID) (*model.ProjectMember, error)

	// AddProjectMember inserts a membership, ignoring an existing one.
	AddProjectMember(ctx context.Context, member *model.ProjectMember) error
}

// TargetDatabasePort defines lookups of invitation targets.
type TargetDatabasePort interface {
	// FindProject returns nil, nil when the project does not exist.
	FindProject(ctx context.Context, id uuid.UUID) (*model.Project, error)

	// FindOrganization returns nil, nil when the organization does not exist.
	FindOrganization(ctx context.Context, id uuid.UUID) (*model.Organization, error)
}

// UserDirectoryPort defines user lookups.
type UserDirectoryPort interface {
	// FindByUsernameOrEmail matches the input against usernames and emails.
	// Returns nil, nil when no user matches.
	FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*model.User, error)

	// FindByID retrieves a user by ID, including soft deleted users.
	// Returns nil, nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// TransactionPort defines transaction support.
type TransactionPort interface {
	// RunInTransaction executes the given function within a transaction.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
