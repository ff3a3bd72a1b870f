package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

// membershipAdapter implements outbound.MembershipDatabasePort.
type membershipAdapter struct {
	db *gorm.DB
}

// NewMembershipAdapter creates a new membership database adapter.
func NewMembershipAdapter(db *gorm.DB) outbound.MembershipDatabasePort {
	return &membershipAdapter{db: db}
}

func (a *membershipAdapter) FindOrganizationMember(ctx context.Context, organizationID, userID uuid.UUID) (*model.OrganizationMember, error) {
	var member model.OrganizationMember
	err := dbFromContext(ctx, a.db).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (a *membershipAdapter) AddOrganizationMember(ctx context.Context, member *model.OrganizationMember) error {
	return dbFromContext(ctx, a.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member).Error
}

func (a *membershipAdapter) FindProjectMember(ctx context.Context, projectID, userID uuid.UUID) (*model.ProjectMember, error) {
	var member model.ProjectMember
	err := dbFromContext(ctx, a.db).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (a *membershipAdapter) AddProjectMember(ctx context.Context, member *model.ProjectMember) error {
	return dbFromContext(ctx, a.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member).Error
}
