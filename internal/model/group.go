package model

import (
	"time"

	"github.com/google/uuid"
)

// TargetKind identifies the kind of group an invitation grants access to.
type TargetKind string

const (
	TargetKindProject      TargetKind = "project"
	TargetKindOrganization TargetKind = "organization"
)

// IsValid checks if the kind is a known target kind.
func (k TargetKind) IsValid() bool {
	switch k {
	case TargetKindProject, TargetKindOrganization:
		return true
	default:
		return false
	}
}

// ProjectRole is the numeric role code of a project member.
type ProjectRole int

const (
	ProjectRoleObserver    ProjectRole = 0
	ProjectRoleCommenter   ProjectRole = 1
	ProjectRoleParticipant ProjectRole = 2
	ProjectRoleMember      ProjectRole = 3
	ProjectRoleAdmin       ProjectRole = 4
)

// DefaultProjectRole is granted when an invitation carries no role.
const DefaultProjectRole = ProjectRoleMember

// IsValid checks if the role code is known.
func (r ProjectRole) IsValid() bool {
	return r >= ProjectRoleObserver && r <= ProjectRoleAdmin
}

// OrganizationRole is the numeric role code of an organization member.
type OrganizationRole int

const (
	OrganizationRoleExternal    OrganizationRole = 10
	OrganizationRoleParticipant OrganizationRole = 20
	OrganizationRoleAdmin       OrganizationRole = 30
)

// IsValid checks if the role code is known.
func (r OrganizationRole) IsValid() bool {
	switch r {
	case OrganizationRoleExternal, OrganizationRoleParticipant, OrganizationRoleAdmin:
		return true
	default:
		return false
	}
}

// Organization groups users and projects.
type Organization struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Permalink string    `json:"permalink" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Organization) TableName() string {
	return "organizations"
}

// Project belongs to exactly one organization.
type Project struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	Permalink      string    `json:"permalink" gorm:"not null"`
	Name           string    `json:"name" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Project) TableName() string {
	return "projects"
}

// OrganizationMember links a user to an organization.
type OrganizationMember struct {
	OrganizationID uuid.UUID        `json:"organization_id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID        `json:"user_id" gorm:"type:uuid;primaryKey"`
	Role           OrganizationRole `json:"role" gorm:"not null;default:20"`
	JoinedAt       time.Time        `json:"joined_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// TableName returns the database table name.
func (OrganizationMember) TableName() string {
	return "organization_members"
}

// IsAdmin returns true if the member administers the organization.
func (m *OrganizationMember) IsAdmin() bool {
	return m.Role == OrganizationRoleAdmin
}

// ProjectMember links a user to a project.
type ProjectMember struct {
	ProjectID    uuid.UUID   `json:"project_id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID   `json:"user_id" gorm:"type:uuid;primaryKey"`
	Role         ProjectRole `json:"role" gorm:"not null;default:3"`
	SourceUserID *uuid.UUID  `json:"source_user_id,omitempty" gorm:"type:uuid"`
	JoinedAt     time.Time   `json:"joined_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName returns the database table name.
func (ProjectMember) TableName() string {
	return "project_members"
}

// IsAdmin returns true if the member administers the project.
func (m *ProjectMember) IsAdmin() bool {
	return m.Role == ProjectRoleAdmin
}

// Target is the group an invitation points at.
// Exactly one of Project or Organization is set, matching Kind.
type Target struct {
	Kind         TargetKind
	Project      *Project
	Organization *Organization
}

// ProjectTarget wraps a project as an invitation target.
func ProjectTarget(p *Project) *Target {
	return &Target{Kind: TargetKindProject, Project: p}
}

// OrganizationTarget wraps an organization as an invitation target.
func OrganizationTarget(o *Organization) *Target {
	return &Target{Kind: TargetKindOrganization, Organization: o}
}

// ID returns the identifier of the wrapped group.
func (t *Target) ID() uuid.UUID {
	switch t.Kind {
	case TargetKindProject:
		if t.Project != nil {
			return t.Project.ID
		}
	case TargetKindOrganization:
		if t.Organization != nil {
			return t.Organization.ID
		}
	}
	return uuid.Nil
}

// Permalink returns the permalink of the wrapped group.
func (t *Target) Permalink() string {
	switch t.Kind {
	case TargetKindProject:
		if t.Project != nil {
			return t.Project.Permalink
		}
	case TargetKindOrganization:
		if t.Organization != nil {
			return t.Organization.Permalink
		}
	}
	return ""
}

// Name returns the display name of the wrapped group.
func (t *Target) Name() string {
	switch t.Kind {
	case TargetKindProject:
		if t.Project != nil {
			return t.Project.Name
		}
	case TargetKindOrganization:
		if t.Organization != nil {
			return t.Organization.Name
		}
	}
	return ""
}
