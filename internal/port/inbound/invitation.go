package inbound

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/uniedit/invite-server/internal/model"
)

// --- Request/Response Types ---

// CreateInvitationInput is the creation request for an invitation.
// UserOrEmail and Silent are request-only values and are never persisted.
type CreateInvitationInput struct {
	TargetKind       model.TargetKind        `json:"-"`
	TargetID         uuid.UUID               `json:"-"`
	UserOrEmail      string                  `json:"user_or_email" binding:"max=255"`
	Role             *model.ProjectRole      `json:"role" binding:"omitempty,min=0,max=4"`
	OrganizationRole *model.OrganizationRole `json:"organization_role" binding:"omitempty,oneof=10 20 30"`
	Silent           bool                    `json:"silent"`
}

// TargetSummary describes the group an invitation points at.
type TargetSummary struct {
	Permalink string `json:"permalink"`
	Name      string `json:"name"`
}

// InvitationOutput represents an invitation in API responses.
type InvitationOutput struct {
	ID            uuid.UUID              `json:"id"`
	UserID        uuid.UUID              `json:"user_id"`
	InvitedUserID *uuid.UUID             `json:"invited_user_id"`
	Role          *model.ProjectRole     `json:"role"`
	Project       *TargetSummary         `json:"project,omitempty"`
	Organization  *TargetSummary         `json:"organization,omitempty"`
	Email         string                 `json:"email,omitempty"`
	Status        model.InvitationStatus `json:"status"`
	UserOrEmail   string                 `json:"user_or_email,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	AcceptedAt    *time.Time             `json:"accepted_at,omitempty"`
}

// AcceptanceOutput describes the memberships produced by accepting an invitation.
type AcceptanceOutput struct {
	Invitation         *InvitationOutput         `json:"invitation"`
	OrganizationMember *model.OrganizationMember `json:"organization_member,omitempty"`
	ProjectMember      *model.ProjectMember      `json:"project_member,omitempty"`
}

// InvitationPage is one page of a target's invitations.
// Limit and Offset are the values applied after clamping.
type InvitationPage struct {
	Items  []*InvitationOutput
	Limit  int
	Offset int
}

// --- Domain Interface ---

// InvitationDomain defines the invitation domain service interface.
type InvitationDomain interface {
	CreateInvitation(ctx context.Context, inviterID uuid.UUID, input *CreateInvitationInput) (*InvitationOutput, error)
	GetInvitation(ctx context.Context, invitationID, requesterID uuid.UUID) (*InvitationOutput, error)
	ListInvitations(ctx context.Context, kind model.TargetKind, targetID, requesterID uuid.UUID, status *model.InvitationStatus, limit, offset int) (*InvitationPage, error)
	AcceptInvitation(ctx context.Context, invitationID, userID uuid.UUID) (*AcceptanceOutput, error)
	AcceptInvitationByToken(ctx context.Context, token string, userID uuid.UUID) (*AcceptanceOutput, error)
	RevokeInvitation(ctx context.Context, invitationID, requesterID uuid.UUID) error
	CanEdit(ctx context.Context, invitationID, userID uuid.UUID) (bool, error)
}

// --- HTTP Port Interfaces ---

// InvitationHttpPort defines invitation HTTP handlers.
type InvitationHttpPort interface {
	// RegisterRoutes registers invitation routes on an authenticated group.
	RegisterRoutes(r *gin.RouterGroup)

	// CreateInvitation handles sending an invitation.
	CreateInvitation(c *gin.Context)

	// ListInvitations handles listing a target's invitations.
	ListInvitations(c *gin.Context)

	// GetInvitation handles getting an invitation.
	GetInvitation(c *gin.Context)

	// AcceptInvitation handles accepting an invitation by ID.
	AcceptInvitation(c *gin.Context)

	// AcceptInvitationByToken handles accepting an invitation by token.
	AcceptInvitationByToken(c *gin.Context)

	// RevokeInvitation handles revoking an invitation.
	RevokeInvitation(c *gin.Context)
}
