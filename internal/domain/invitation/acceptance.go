package invitation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

// Acceptance lists the memberships an accepted invitation ensured.
type Acceptance struct {
	OrganizationMember *model.OrganizationMember
	ProjectMember      *model.ProjectMember
}

// Engine converts an accepted invitation into memberships.
type Engine struct {
	memberDB outbound.MembershipDatabasePort
	now      func() time.Time
	logger   *zap.Logger
}

// NewEngine creates a new acceptance engine.
func NewEngine(memberDB outbound.MembershipDatabasePort, logger *zap.Logger) *Engine {
	return &Engine{
		memberDB: memberDB,
		now:      time.Now,
		logger:   logger,
	}
}

// Accept grants user the memberships the invitation offers on target.
// Memberships that already exist are returned unchanged.
func (e *Engine) Accept(ctx context.Context, inv *model.Invitation, target *model.Target, user *model.User) (*Acceptance, error) {
	switch target.Kind {
	case model.TargetKindProject:
		orgMember, err := e.ensureOrganizationMember(ctx, target.Project.OrganizationID, user.ID, inv.Membership)
		if err != nil {
			return nil, err
		}
		inviterID := inv.InviterID
		projectMember, err := e.ensureProjectMember(ctx, target.Project.ID, user.ID, inv.ProjectRoleOrDefault(), &inviterID)
		if err != nil {
			return nil, err
		}
		return &Acceptance{OrganizationMember: orgMember, ProjectMember: projectMember}, nil

	case model.TargetKindOrganization:
		orgMember, err := e.ensureOrganizationMember(ctx, target.Organization.ID, user.ID, inv.Membership)
		if err != nil {
			return nil, err
		}
		return &Acceptance{OrganizationMember: orgMember}, nil

	default:
		e.logger.Warn("invitation target kind not acceptable",
			zap.String("invitation_id", inv.ID.String()),
			zap.String("target_kind", string(target.Kind)),
		)
		return &Acceptance{}, nil
	}
}

func (e *Engine) ensureOrganizationMember(ctx context.Context, orgID, userID uuid.UUID, params model.MembershipParams) (*model.OrganizationMember, error) {
	existing, err := e.memberDB.FindOrganizationMember(ctx, orgID, userID)
	if err != nil {
		return nil, fmt.Errorf("find organization member: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := e.now()
	member := &model.OrganizationMember{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           params.OrganizationRoleOrDefault(),
		JoinedAt:       now,
		UpdatedAt:      now,
	}
	if err := e.memberDB.AddOrganizationMember(ctx, member); err != nil {
		return nil, fmt.Errorf("add organization member: %w", err)
	}
	return member, nil
}

func (e *Engine) ensureProjectMember(ctx context.Context, projectID, userID uuid.UUID, role model.ProjectRole, sourceUserID *uuid.UUID) (*model.ProjectMember, error) {
	existing, err := e.memberDB.FindProjectMember(ctx, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("find project member: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := e.now()
	member := &model.ProjectMember{
		ProjectID:    projectID,
		UserID:       userID,
		Role:         role,
		SourceUserID: sourceUserID,
		JoinedAt:     now,
		UpdatedAt:    now,
	}
	if err := e.memberDB.AddProjectMember(ctx, member); err != nil {
		return nil, fmt.Errorf("add project member: %w", err)
	}
	return member, nil
}
