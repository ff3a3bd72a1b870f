package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

// targetAdapter implements outbound.TargetDatabasePort.
type targetAdapter struct {
	db *gorm.DB
}

// NewTargetAdapter creates a new target database adapter.
func NewTargetAdapter(db *gorm.DB) outbound.TargetDatabasePort {
	return &targetAdapter{db: db}
}

func (a *targetAdapter) FindProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := dbFromContext(ctx, a.db).Where("id = ?", id).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (a *targetAdapter) FindOrganization(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	err := dbFromContext(ctx, a.db).Where("id = ?", id).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}
