package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

// userDirectoryAdapter implements outbound.UserDirectoryPort.
type userDirectoryAdapter struct {
	db *gorm.DB
}

// NewUserDirectoryAdapter creates a new user directory adapter.
func NewUserDirectoryAdapter(db *gorm.DB) outbound.UserDirectoryPort {
	return &userDirectoryAdapter{db: db}
}

// FindByUsernameOrEmail prefers a username match over an email match.
func (a *userDirectoryAdapter) FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*model.User, error) {
	lookup := strings.ToLower(strings.TrimSpace(usernameOrEmail))
	if lookup == "" {
		return nil, nil
	}

	u, err := a.findActive(ctx, "lower(username) = ?", lookup)
	if err != nil || u != nil {
		return u, err
	}
	return a.findActive(ctx, "lower(email) = ?", lookup)
}

func (a *userDirectoryAdapter) findActive(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var u model.User
	err := dbFromContext(ctx, a.db).
		Where("deleted_at IS NULL").
		Where(query, args...).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (a *userDirectoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := dbFromContext(ctx, a.db).
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
