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

// invitationAdapter implements outbound.InvitationDatabasePort.
type invitationAdapter struct {
	db *gorm.DB
}

// NewInvitationAdapter creates a new invitation database adapter.
func NewInvitationAdapter(db *gorm.DB) outbound.InvitationDatabasePort {
	return &invitationAdapter{db: db}
}

func (a *invitationAdapter) Create(ctx context.Context, invitation *model.Invitation) error {
	err := dbFromContext(ctx, a.db).Create(invitation).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return outbound.ErrDuplicate
	}
	return err
}

func (a *invitationAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error) {
	return a.first(ctx, "id = ?", id)
}

func (a *invitationAdapter) FindByToken(ctx context.Context, token string) (*model.Invitation, error) {
	return a.first(ctx, "token = ?", token)
}

func (a *invitationAdapter) FindPendingForUser(ctx context.Context, kind model.TargetKind, targetID, userID uuid.UUID) (*model.Invitation, error) {
	return a.first(ctx,
		"target_kind = ? AND target_id = ? AND invited_user_id = ? AND status = ?",
		kind, targetID, userID, model.InvitationStatusPending,
	)
}

func (a *invitationAdapter) FindOpenForEmail(ctx context.Context, kind model.TargetKind, targetID uuid.UUID, email string) (*model.Invitation, error) {
	return a.first(ctx,
		"target_kind = ? AND target_id = ? AND invited_user_id IS NULL AND lower(email) = ? AND status <> ?",
		kind, targetID, strings.ToLower(strings.TrimSpace(email)), model.InvitationStatusRevoked,
	)
}

func (a *invitationAdapter) FindByTarget(ctx context.Context, kind model.TargetKind, targetID uuid.UUID, status *model.InvitationStatus, limit, offset int) ([]*model.Invitation, error) {
	if limit <= 0 {
		limit = 20
	}

	query := dbFromContext(ctx, a.db).
		Where("target_kind = ? AND target_id = ?", kind, targetID)

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var invitations []*model.Invitation
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (a *invitationAdapter) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.InvitationStatus) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": gorm.Expr("NOW()"),
	}
	if to == model.InvitationStatusAccepted {
		updates["accepted_at"] = gorm.Expr("NOW()")
	}

	result := dbFromContext(ctx, a.db).
		Model(&model.Invitation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// first returns nil, nil when no row matches.
func (a *invitationAdapter) first(ctx context.Context, query string, args ...interface{}) (*model.Invitation, error) {
	var invitation model.Invitation
	err := dbFromContext(ctx, a.db).
		Where(query, args...).
		First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invitation, nil
}
