package model

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus represents the lifecycle status of an invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRevoked  InvitationStatus = "revoked"
)

// IsValid checks if the status is a valid invitation status.
func (s InvitationStatus) IsValid() bool {
	switch s {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusRevoked:
		return true
	default:
		return false
	}
}

// MembershipParams are passed through to organization membership creation on acceptance.
type MembershipParams struct {
	Role OrganizationRole `json:"role,omitempty"`
}

// OrganizationRoleOrDefault returns the requested organization role, or participant.
func (p MembershipParams) OrganizationRoleOrDefault() OrganizationRole {
	if p.Role.IsValid() {
		return p.Role
	}
	return OrganizationRoleParticipant
}

// Invitation is an offer from an existing member to join a project or organization.
type Invitation struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InviterID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	InvitedUserID *uuid.UUID `json:"invited_user_id,omitempty" gorm:"type:uuid;index"`
	Email         string     `json:"email,omitempty"`

	// Target
	TargetKind TargetKind       `json:"target_type" gorm:"not null"`
	TargetID   uuid.UUID        `json:"target_id" gorm:"type:uuid;not null"`
	Role       *ProjectRole     `json:"role,omitempty"`
	Membership MembershipParams `json:"membership" gorm:"type:jsonb;serializer:json"`

	// Lifecycle
	Token      string           `json:"-" gorm:"uniqueIndex;not null"`
	Status     InvitationStatus `json:"status" gorm:"not null;default:pending"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	AcceptedAt *time.Time       `json:"accepted_at,omitempty"`
}

// TableName returns the database table name.
func (Invitation) TableName() string {
	return "invitations"
}

// IsPending returns true if the invitation can still be accepted.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}

// ProjectRoleOrDefault returns the role granted on project acceptance.
func (i *Invitation) ProjectRoleOrDefault() ProjectRole {
	if i.Role != nil {
		return *i.Role
	}
	return DefaultProjectRole
}

// NotificationKind selects the notification template.
type NotificationKind string

const (
	// NotificationProjectInvitation is sent to invitees who already have an account.
	NotificationProjectInvitation NotificationKind = "project_invitation"
	// NotificationSignupInvitation is sent to email-only invitees.
	NotificationSignupInvitation NotificationKind = "signup_invitation"
)

// NotificationJob is one scheduled invitation notification.
type NotificationJob struct {
	InvitationID uuid.UUID        `json:"invitation_id"`
	Kind         NotificationKind `json:"kind"`
	Email        string           `json:"email"`
	InviterName  string           `json:"inviter_name"`
	TargetKind   TargetKind       `json:"target_kind"`
	TargetName   string           `json:"target_name"`
	AcceptURL    string           `json:"accept_url"`
	Attempts     int              `json:"attempts"`
	EnqueuedAt   time.Time        `json:"enqueued_at"`
}
