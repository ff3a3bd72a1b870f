package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/uniedit/invite-server/internal/model"
)

// pendingIndexes keep at most one pending invitation per target and user,
// and at most one non-revoked invitation per target and email.
var pendingIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_pending_user
		ON invitations (target_kind, target_id, invited_user_id)
		WHERE status = 'pending' AND invited_user_id IS NOT NULL`,
	`DROP INDEX IF EXISTS idx_invitations_pending_email`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_open_email
		ON invitations (target_kind, target_id, lower(email))
		WHERE status <> 'revoked' AND invited_user_id IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_invitations_target
		ON invitations (target_kind, target_id, created_at DESC)`,
}

// Migrate creates or updates the invitation schema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	err := db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.Project{},
		&model.OrganizationMember{},
		&model.ProjectMember{},
		&model.Invitation{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range pendingIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply index: %w", err)
		}
	}
	return nil
}
