package invitation

import (
	"github.com/google/uuid"

	"github.com/uniedit/invite-server/internal/model"
)

// CanEdit reports whether userID may view or change the invitation:
// target admins, the inviter and the invited user.
func CanEdit(inv *model.Invitation, userID uuid.UUID, isTargetAdmin bool) bool {
	if isTargetAdmin {
		return true
	}
	if userID == uuid.Nil {
		return false
	}
	if inv.InviterID == userID {
		return true
	}
	return inv.InvitedUserID != nil && *inv.InvitedUserID == userID
}
